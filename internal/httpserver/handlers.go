package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"restaurant-frontend/internal/apiclient"
	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/service/cart"
	"restaurant-frontend/internal/service/checkout"
	"restaurant-frontend/internal/service/session"
)

type cartResponse struct {
	Items []domain.CartLine `json:"items"`
	cart.Summary
}

type addItemRequest struct {
	MenuItemID domain.ID `json:"menuItemId" binding:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type sessionResponse struct {
	State   session.State   `json:"state"`
	Session *domain.Session `json:"session,omitempty"`
}

func (h *handlers) listMenu(c *gin.Context) {
	p := profileFrom(c)
	items, err := p.Client.MenuItems(c.Request.Context())
	if err != nil {
		h.writeError(c, p, err)
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) cartBody(s *cart.Store) cartResponse {
	return cartResponse{Items: s.Lines(), Summary: s.Summary(h.taxRate)}
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartBody(profileFrom(c).Cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	p := profileFrom(c)
	ctx := c.Request.Context()
	if _, ok := p.Session.Current(ctx); !ok {
		h.writeError(c, p, domain.ErrNotAuthenticated)
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "menuItemId is required")
		return
	}
	item, err := p.Client.MenuItem(ctx, string(req.MenuItemID))
	if err != nil {
		h.writeError(c, p, err)
		return
	}
	p.Cart.AddItem(ctx, *item)
	c.JSON(http.StatusOK, h.cartBody(p.Cart))
}

func (h *handlers) setCartQuantity(c *gin.Context) {
	p := profileFrom(c)
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	p.Cart.SetQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, h.cartBody(p.Cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	p := profileFrom(c)
	p.Cart.RemoveItem(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, h.cartBody(p.Cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	p := profileFrom(c)
	p.Cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, h.cartBody(p.Cart))
}

func (h *handlers) getSession(c *gin.Context) {
	p := profileFrom(c)
	resp := sessionResponse{State: session.StateUnauthenticated}
	if s, ok := p.Session.Current(c.Request.Context()); ok {
		resp.Session = &s
	}
	resp.State = p.Session.State()
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) login(c *gin.Context) {
	p := profileFrom(c)
	ctx := c.Request.Context()
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid login payload")
		return
	}

	var (
		s   domain.Session
		err error
	)
	if token := strings.TrimSpace(req.Token); token != "" {
		s, err = p.Session.Login(ctx, token)
	} else {
		s, err = p.Session.LoginWithPassword(ctx, req.Email, req.Password)
	}
	if err != nil {
		if !errors.Is(err, session.ErrSuperseded) {
			push(p, domain.NoticeError, domain.MsgLoginFailed)
		}
		if rejectedLogin(err) {
			c.JSON(http.StatusUnauthorized, errorResponse{Error: domain.MsgLoginFailed})
			return
		}
		h.writeError(c, p, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{State: session.StateAuthenticated, Session: &s})
}

// rejectedLogin reports a login refused for bad credentials rather than an outage.
func rejectedLogin(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, apiclient.ErrUnauthorized) ||
		errors.Is(err, session.ErrInvalidCredential) ||
		errors.Is(err, session.ErrCredentialExpired)
}

func (h *handlers) logout(c *gin.Context) {
	p := profileFrom(c)
	p.Session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, sessionResponse{State: p.Session.State()})
}

func (h *handlers) checkout(c *gin.Context) {
	p := profileFrom(c)
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid checkout payload")
		return
	}
	res, err := p.Checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, p, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listOrders(c *gin.Context) {
	p := profileFrom(c)
	ctx := c.Request.Context()
	s, ok := p.Session.Current(ctx)
	if !ok {
		h.writeError(c, p, domain.ErrNotAuthenticated)
		return
	}
	orders, err := p.Client.OrdersByUser(ctx, string(s.UserID))
	if err != nil {
		h.writeError(c, p, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) drainNotices(c *gin.Context) {
	c.JSON(http.StatusOK, profileFrom(c).Notices.Drain())
}
