package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"restaurant-frontend/internal/service/profile"
)

const (
	defaultProfileCookie = "rf_profile"
	profileCookieMaxAge  = 365 * 24 * 60 * 60
)

type ctxKey string

const profileCtxKey ctxKey = "profile"

// profileMiddleware identifies the browser profile by cookie, issuing a new
// id when the cookie is missing or malformed, and attaches its bundle.
func profileMiddleware(source ProfileSource, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, id, profileCookieMaxAge, "/", "", c.Request.TLS != nil, true)

		p := source.Get(c.Request.Context(), id)
		defer source.Release(p)
		ctx := context.WithValue(c.Request.Context(), profileCtxKey, p)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func profileFrom(c *gin.Context) *profile.Profile {
	p, _ := c.Request.Context().Value(profileCtxKey).(*profile.Profile)
	return p
}
