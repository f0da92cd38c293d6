package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/repository/slot"
)

const validCheckout = `{"deliveryInfo":{"firstName":"Ana","lastName":"Lima","street":"Rua A","number":"12","phone":"912345678"},"paymentMethod":"cash"}`

func TestCart_AddRequiresSession(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestCart_Lifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec := e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"itemCount":1`, `"subtotal":10`, `"tax":2.4`, `"total":12.4`, `"category":"mains"`)

	rec = e.do(t, http.MethodPut, "/api/cart/items/burger", `{"quantity":3}`)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"quantity":3`, `"subtotal":30`)

	rec = e.do(t, http.MethodPut, "/api/cart/items/burger", `{}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = e.do(t, http.MethodDelete, "/api/cart/items/burger", "")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"items":[]`, `"itemCount":0`)

	rec = e.do(t, http.MethodDelete, "/api/cart/items/burger", "")
	expectStatus(t, rec, http.StatusOK)
}

func TestCart_UnknownMenuItem(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	rec := e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"missing"}`)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCart_PersistsToSlot(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`), http.StatusOK)

	raw, err := e.slots.Get(context.Background(), e.cookie.Value, slot.Cart)
	if err != nil {
		t.Fatalf("get cart slot: %v", err)
	}
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		t.Fatalf("decode cart slot: %v", err)
	}
	if len(lines) != 1 || lines[0].ItemID != "burger" || lines[0].Quantity != 1 {
		t.Fatalf("unexpected persisted cart %+v", lines)
	}
}

func TestSession_LoginAndLogout(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/session", "")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"state":"unauthenticated"`)

	e.login(t)
	rec = e.do(t, http.MethodGet, "/api/session", "")
	expectBody(t, rec, `"state":"authenticated"`, `"email":"ana@example.com"`, `"userId":"5"`, `"role":"customer"`)
	if _, err := e.slots.Get(context.Background(), e.cookie.Value, slot.Credential); err != nil {
		t.Fatalf("expected credential slot: %v", err)
	}

	expectStatus(t, e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`), http.StatusOK)

	rec = e.do(t, http.MethodPost, "/api/session/logout", "")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"state":"unauthenticated"`)

	rec = e.do(t, http.MethodGet, "/api/cart", "")
	expectBody(t, rec, `"itemCount":0`)
	if _, err := e.slots.Get(context.Background(), e.cookie.Value, slot.Credential); err == nil {
		t.Fatalf("expected credential slot cleared")
	}
}

func TestSession_PasswordLogin(t *testing.T) {
	e := newTestEnv(t)
	e.upstream.setToken(signToken(t))
	rec := e.do(t, http.MethodPost, "/api/session/login", `{"email":"ana@example.com","password":"pw"}`)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"state":"authenticated"`)
}

func TestSession_LoginFailurePushesNotice(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/session/login", `{"token":"garbage"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
	expectBody(t, rec, domain.MsgLoginFailed)

	e.upstream.fail("/auth/login", http.StatusUnauthorized)
	rec = e.do(t, http.MethodPost, "/api/session/login", `{"email":"ana@example.com","password":"bad"}`)
	expectStatus(t, rec, http.StatusUnauthorized)
	expectBody(t, rec, domain.MsgLoginFailed)
	if strings.Contains(rec.Body.String(), domain.MsgSessionExpired) {
		t.Fatalf("wrong password must not read as an expired session: %s", rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/api/notices", "")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, domain.MsgLoginFailed)
}

func TestUpstreamUnauthorizedExpiresSession(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	e.upstream.fail("/menu-items", http.StatusUnauthorized)

	rec := e.do(t, http.MethodGet, "/api/menu", "")
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = e.do(t, http.MethodGet, "/api/session", "")
	expectBody(t, rec, `"state":"unauthenticated"`)
	rec = e.do(t, http.MethodGet, "/api/notices", "")
	expectBody(t, rec, domain.MsgSessionExpired)
}

func TestUpstreamForbidden(t *testing.T) {
	e := newTestEnv(t)
	e.upstream.fail("/menu-items", http.StatusForbidden)
	rec := e.do(t, http.MethodGet, "/api/menu", "")
	expectStatus(t, rec, http.StatusForbidden)
	rec = e.do(t, http.MethodGet, "/api/notices", "")
	expectBody(t, rec, domain.MsgPermissionDenied)
}

func TestCheckout_CashConfirmation(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`), http.StatusOK)

	rec := e.do(t, http.MethodPost, "/api/checkout", validCheckout)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"confirmation"`, `"finalAmount":12.4`)

	rec = e.do(t, http.MethodGet, "/api/cart", "")
	expectBody(t, rec, `"itemCount":0`)
}

func TestCheckout_CardRedirect(t *testing.T) {
	e := newTestEnv(t)
	e.upstream.setStripeURL("https://pay.example.com/s/1")
	e.login(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`), http.StatusOK)

	body := `{"deliveryInfo":{"firstName":"Ana","lastName":"Lima","street":"Rua A","number":"12","phone":"912345678"},"paymentMethod":"Card"}`
	rec := e.do(t, http.MethodPost, "/api/checkout", body)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"redirectUrl":"https://pay.example.com/s/1"`)
}

func TestCheckout_ValidationError(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`), http.StatusOK)

	body := `{"deliveryInfo":{"firstName":"Ana","lastName":"Lima","street":"Rua A","number":"12","phone":"12"},"paymentMethod":"cash"}`
	rec := e.do(t, http.MethodPost, "/api/checkout", body)
	expectStatus(t, rec, http.StatusBadRequest)
	expectBody(t, rec, `"field":"phone"`)

	rec = e.do(t, http.MethodGet, "/api/cart", "")
	expectBody(t, rec, `"itemCount":1`)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	rec := e.do(t, http.MethodPost, "/api/checkout", validCheckout)
	expectStatus(t, rec, http.StatusBadRequest)
	expectBody(t, rec, `"field":"cart"`)
}

func TestCheckout_StepFailureKeepsCart(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	expectStatus(t, e.do(t, http.MethodPost, "/api/cart/items", `{"menuItemId":"burger"}`), http.StatusOK)
	e.upstream.fail("/bills", http.StatusInternalServerError)

	rec := e.do(t, http.MethodPost, "/api/checkout", validCheckout)
	expectStatus(t, rec, http.StatusBadGateway)

	rec = e.do(t, http.MethodGet, "/api/cart", "")
	expectBody(t, rec, `"itemCount":1`)
	rec = e.do(t, http.MethodGet, "/api/notices", "")
	expectBody(t, rec, domain.MsgCheckoutFailed)
}

func TestOrders(t *testing.T) {
	e := newTestEnv(t)
	expectStatus(t, e.do(t, http.MethodGet, "/api/orders", ""), http.StatusUnauthorized)

	e.login(t)
	rec := e.do(t, http.MethodGet, "/api/orders", "")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"status":"Pending"`)
}
