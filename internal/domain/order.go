package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a transaction is settled.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "Card"
	PaymentCash PaymentMethod = "Cash"
)

// ParsePaymentMethod accepts any casing of the supported methods.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "card":
		return PaymentCard, true
	case "cash":
		return PaymentCash, true
	}
	return "", false
}

const (
	OrderStatusPending     = "Pending"
	TransactionTypePayment = "Payment"
)

// DeliveryInfo is where and to whom an order is delivered.
type DeliveryInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	Number    string `json:"number"`
	Floor     string `json:"floor,omitempty"`
	Phone     string `json:"phone"`
}

// OrderItem is one line of a server-side order.
type OrderItem struct {
	ID         ID              `json:"id,omitempty"`
	MenuItemID ID              `json:"menuItemId,omitempty"`
	Name       string          `json:"name,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// Order is the API's order DTO.
type Order struct {
	ID           ID            `json:"id"`
	Status       string        `json:"status"`
	UserID       ID            `json:"userId,omitempty"`
	OrderItems   []OrderItem   `json:"orderItems"`
	BillID       ID            `json:"billId,omitempty"`
	DeliveryInfo *DeliveryInfo `json:"deliveryInfo,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
}

// Bill is the API's bill DTO.
type Bill struct {
	ID          ID              `json:"id"`
	OrderID     ID              `json:"orderId,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Tax         decimal.Decimal `json:"tax"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
}

// Transaction is the API's transaction DTO.
type Transaction struct {
	ID           ID              `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type,omitempty"`
	Method       string          `json:"method,omitempty"`
	BillID       ID              `json:"billId,omitempty"`
	StripeURL    string          `json:"stripeUrl,omitempty"`
	StripeStatus string          `json:"stripeStatus,omitempty"`
}
