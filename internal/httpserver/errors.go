package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"restaurant-frontend/internal/apiclient"
	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/service/checkout"
	"restaurant-frontend/internal/service/profile"
	"restaurant-frontend/internal/service/session"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps service and API errors onto statuses. Upstream 401/403
// notices are pushed by the profile's API observer, not here.
func (h *handlers) writeError(c *gin.Context, p *profile.Profile, err error) {
	var ve *checkout.ValidationError
	var se *checkout.StepError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
		return
	case errors.As(err, &se):
		h.logger.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		push(p, domain.NoticeError, domain.MsgCheckoutFailed)
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, session.ErrInvalidCredential),
		errors.Is(err, session.ErrCredentialExpired):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, apiclient.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: domain.MsgSessionExpired})
	case errors.Is(err, apiclient.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Error: domain.MsgPermissionDenied})
	case errors.Is(err, checkout.ErrCheckoutInProgress),
		errors.Is(err, session.ErrSuperseded):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case se != nil:
		c.JSON(http.StatusBadGateway, errorResponse{Error: domain.MsgCheckoutFailed})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		h.logger.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		push(p, domain.NoticeError, domain.MsgGenericFailure)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: domain.MsgGenericFailure})
	}
}

func push(p *profile.Profile, level domain.NoticeLevel, msg string) {
	if p != nil && p.Notices != nil {
		p.Notices.Push(domain.Notice{Level: level, Message: msg})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
