package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/service/profile"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProfileSource hands out the per-profile bundle for a profile id. Every Get
// is paired with a Release once the request is done.
type ProfileSource interface {
	Get(ctx context.Context, id string) *profile.Profile
	Release(p *profile.Profile)
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Profiles      ProfileSource
	Storage       Pinger
	TaxRate       decimal.Decimal
	ProfileCookie string
	CORSOrigins   []string
}

// buildRouter wires routes for the browser page.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Profiles == nil {
		return nil, errors.New("profile source is required")
	}
	if deps.ProfileCookie == "" {
		deps.ProfileCookie = defaultProfileCookie
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Storage))

	h := &handlers{logger: logger, taxRate: deps.TaxRate}
	api := router.Group("/api", profileMiddleware(deps.Profiles, deps.ProfileCookie))
	{
		api.GET("/menu", h.listMenu)

		api.GET("/cart", h.getCart)
		api.POST("/cart/items", h.addCartItem)
		api.PUT("/cart/items/:id", h.setCartQuantity)
		api.DELETE("/cart/items/:id", h.removeCartItem)
		api.DELETE("/cart", h.clearCart)

		api.GET("/session", h.getSession)
		api.POST("/session/login", h.login)
		api.POST("/session/logout", h.logout)

		api.POST("/checkout", h.checkout)
		api.GET("/orders", h.listOrders)
		api.GET("/notices", h.drainNotices)
	}

	return router, nil
}

type handlers struct {
	logger  *log.Logger
	taxRate decimal.Decimal
}
