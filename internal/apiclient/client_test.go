package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/domain"
)

type recordingObserver struct {
	errs []*Error
}

func (r *recordingObserver) OnAPIError(_ context.Context, err *Error) {
	r.errs = append(r.errs, err)
}

func TestClient_SendsBearerAndDecodesUser(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":12,"email":"a+b@example.com","role":"CUSTOMER"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	c.SetToken("tok")
	u, err := c.UserByEmail(context.Background(), "a+b@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/users/email/a+b@example.com" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if u.ID != "12" || u.Email != "a+b@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestClient_ClearTokenDropsHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	c.SetToken("tok")
	c.ClearToken()
	if _, err := c.MenuItems(context.Background()); err != nil {
		t.Fatalf("MenuItems: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestClient_ErrorStatusesMatchSentinels(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := New(srv.URL, time.Second, nil)
	c.SetObserver(obs)

	_, err := c.MenuItems(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	status = http.StatusForbidden
	_, err = c.MenuItems(context.Background())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	status = http.StatusNotFound
	_, err = c.MenuItem(context.Background(), "x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if len(obs.errs) != 3 || obs.errs[0].Status != 401 || obs.errs[1].Status != 403 {
		t.Fatalf("observer did not see every error: %+v", obs.errs)
	}
}

func TestClient_LoginBypassesObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := New(srv.URL, time.Second, nil)
	c.SetObserver(obs)
	if _, err := c.Login(context.Background(), "a@example.com", "bad"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(obs.errs) != 0 {
		t.Fatalf("login failures must not reach the observer")
	}
}

func TestClient_LoginAcceptsAccessTokenField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@example.com" || body["password"] != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"accessToken":"jwt-here"}`))
	}))
	defer srv.Close()

	token, err := New(srv.URL, time.Second, nil).Login(context.Background(), "a@example.com", "pw")
	if err != nil || token != "jwt-here" {
		t.Fatalf("Login = %q, %v", token, err)
	}
}

func TestClient_MutationsCarryIdempotencyKey(t *testing.T) {
	var keys []string
	var txBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		switch r.URL.Path {
		case "/orders":
			_, _ = w.Write([]byte(`{"id":1,"status":"Pending","orderItems":[]}`))
		case "/bills":
			_, _ = w.Write([]byte(`{"id":2,"totalAmount":20,"tax":4.8,"finalAmount":24.8}`))
		case "/transactions":
			_ = json.NewDecoder(r.Body).Decode(&txBody)
			_, _ = w.Write([]byte(`{"id":3}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	ctx := WithIdempotencyKey(context.Background(), "attempt-1")

	order, err := c.CreateOrder(ctx, CreateOrderInput{Status: domain.OrderStatusPending, UserID: "9", MenuItemIDsAndQuantities: map[string]int{"burger": 2}})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	bill, err := c.CreateBill(ctx, order.ID)
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if _, err := c.CreateTransaction(ctx, CreateTransactionInput{Amount: bill.FinalAmount, Type: domain.TransactionTypePayment, Method: string(domain.PaymentCash), BillID: bill.ID}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	for _, k := range keys {
		if k != "attempt-1" {
			t.Fatalf("expected idempotency key on every call, got %v", keys)
		}
	}
	if txBody["amount"] != 24.8 || txBody["billId"] != "2" || txBody["type"] != "Payment" {
		t.Fatalf("unexpected transaction body %+v", txBody)
	}
	if !bill.FinalAmount.Equal(decimal.RequireFromString("24.8")) {
		t.Fatalf("unexpected bill %+v", bill)
	}
}
