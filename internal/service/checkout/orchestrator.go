package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"restaurant-frontend/internal/apiclient"
	"restaurant-frontend/internal/domain"
)

// ErrCheckoutInProgress is returned while another checkout of the same
// profile is still running.
var ErrCheckoutInProgress = errors.New("checkout already in progress")

var phonePattern = regexp.MustCompile(`^\d{8,11}$`)

// Step names reported by StepError.
const (
	StepResolveUser       = "resolve user"
	StepCreateOrder       = "create order"
	StepCreateBill        = "create bill"
	StepCreateTransaction = "create transaction"
)

// ValidationError rejects a request before any network call is made.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StepError reports which remote step aborted a checkout.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("checkout %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Request is what the checkout form submits.
type Request struct {
	Delivery domain.DeliveryInfo `json:"deliveryInfo"`
	Method   string              `json:"paymentMethod"`
}

// Confirmation is shown when no payment redirect is needed.
type Confirmation struct {
	Order       domain.Order       `json:"order"`
	Bill        domain.Bill        `json:"bill"`
	Transaction domain.Transaction `json:"transaction"`
}

// Result is either a payment redirect or a confirmation.
type Result struct {
	RedirectURL  string        `json:"redirectUrl,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
}

type api interface {
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateOrder(ctx context.Context, in apiclient.CreateOrderInput) (*domain.Order, error)
	CreateBill(ctx context.Context, orderID domain.ID) (*domain.Bill, error)
	CreateTransaction(ctx context.Context, in apiclient.CreateTransactionInput) (*domain.Transaction, error)
}

type cartStore interface {
	QuantityMap() map[string]int
	RemoveOrdered(ctx context.Context, ordered map[string]int)
}

type sessions interface {
	Current(ctx context.Context) (domain.Session, bool)
}

// Orchestrator places an order for one profile: order, bill, then
// transaction. The ordered lines leave the cart only after all three succeeded.
type Orchestrator struct {
	api      api
	cart     cartStore
	sessions sessions
	logger   *log.Logger
	newKey   func() string
	running  atomic.Bool
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(c api, cart cartStore, s sessions, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		api:      c,
		cart:     cart,
		sessions: s,
		logger:   logger,
		newKey:   func() string { return uuid.NewString() },
	}
}

// Checkout validates req, then creates the order, bill and transaction in
// sequence. Any failure aborts and leaves the cart as it was.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return Result{}, ErrCheckoutInProgress
	}
	defer o.running.Store(false)

	method, err := validate(&req)
	if err != nil {
		return Result{}, err
	}
	quantities := o.cart.QuantityMap()
	if len(quantities) == 0 {
		return Result{}, &ValidationError{Field: "cart", Message: "cart is empty", Err: domain.ErrEmptyCart}
	}
	sess, ok := o.sessions.Current(ctx)
	if !ok {
		return Result{}, domain.ErrNotAuthenticated
	}

	key := o.newKey()
	ctx = apiclient.WithIdempotencyKey(ctx, key)
	o.logger.Printf("checkout: start user=%s items=%d method=%s key=%s", sess.Email, len(quantities), method, key)

	user, err := o.api.UserByEmail(ctx, sess.Email)
	if err != nil {
		return Result{}, o.fail(StepResolveUser, err)
	}

	order, err := o.api.CreateOrder(ctx, apiclient.CreateOrderInput{
		Status:                   domain.OrderStatusPending,
		UserID:                   user.ID,
		MenuItemIDsAndQuantities: quantities,
		DeliveryInfo:             req.Delivery,
	})
	if err != nil {
		return Result{}, o.fail(StepCreateOrder, err)
	}

	bill, err := o.api.CreateBill(ctx, order.ID)
	if err != nil {
		return Result{}, o.fail(StepCreateBill, err)
	}

	tx, err := o.api.CreateTransaction(ctx, apiclient.CreateTransactionInput{
		Amount: bill.FinalAmount,
		Type:   domain.TransactionTypePayment,
		Method: string(method),
		BillID: bill.ID,
	})
	if err != nil {
		return Result{}, o.fail(StepCreateTransaction, err)
	}

	o.cart.RemoveOrdered(ctx, quantities)
	o.logger.Printf("checkout: done order=%s bill=%s transaction=%s", order.ID, bill.ID, tx.ID)

	if method == domain.PaymentCard && tx.StripeURL != "" {
		return Result{RedirectURL: tx.StripeURL}, nil
	}
	return Result{Confirmation: &Confirmation{Order: *order, Bill: *bill, Transaction: *tx}}, nil
}

func (o *Orchestrator) fail(step string, err error) error {
	o.logger.Printf("checkout: %s failed: %v", step, err)
	return &StepError{Step: step, Err: err}
}

func validate(req *Request) (domain.PaymentMethod, error) {
	d := &req.Delivery
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Street = strings.TrimSpace(d.Street)
	d.Number = strings.TrimSpace(d.Number)
	d.Floor = strings.TrimSpace(d.Floor)
	d.Phone = strings.TrimSpace(d.Phone)

	required := []struct{ field, value string }{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"street", d.Street},
		{"number", d.Number},
		{"phone", d.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			return "", &ValidationError{Field: r.field, Message: "required"}
		}
	}
	if !phonePattern.MatchString(d.Phone) {
		return "", &ValidationError{Field: "phone", Message: "must be 8 to 11 digits"}
	}
	method, ok := domain.ParsePaymentMethod(req.Method)
	if !ok {
		return "", &ValidationError{Field: "paymentMethod", Message: "must be Card or Cash"}
	}
	return method, nil
}
