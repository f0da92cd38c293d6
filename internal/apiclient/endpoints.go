package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/domain"
)

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	var out struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out, requestOpts{skipObserver: true}); err != nil {
		return "", err
	}
	token := strings.TrimSpace(out.Token)
	if token == "" {
		token = strings.TrimSpace(out.AccessToken)
	}
	if token == "" {
		return "", errors.New("login response carried no token")
	}
	return token, nil
}

// UserByEmail resolves the full user record for email.
func (c *Client) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/users/email/"+url.PathEscape(email), nil, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// MenuItems lists the catalog.
func (c *Client) MenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu-items", nil, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return out, nil
}

// MenuItem fetches one catalog entry.
func (c *Client) MenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	var out domain.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu-items/"+url.PathEscape(id), nil, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrdersByUser lists the order history of userID.
func (c *Client) OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrderInput is the body of POST /orders.
type CreateOrderInput struct {
	Status                   string              `json:"status"`
	UserID                   domain.ID           `json:"userId"`
	MenuItemIDsAndQuantities map[string]int      `json:"menuItemIdsAndQuantities"`
	DeliveryInfo             domain.DeliveryInfo `json:"deliveryInfo"`
}

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", in, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBill creates the bill for orderID.
func (c *Client) CreateBill(ctx context.Context, orderID domain.ID) (*domain.Bill, error) {
	in := struct {
		OrderID domain.ID `json:"orderId"`
	}{OrderID: orderID}
	var out domain.Bill
	if err := c.do(ctx, http.MethodPost, "/bills", in, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTransactionInput is the body of POST /transactions.
type CreateTransactionInput struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	Method string          `json:"method"`
	BillID domain.ID       `json:"billId"`
}

// CreateTransaction records a payment against a bill.
func (c *Client) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", in, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return &out, nil
}
