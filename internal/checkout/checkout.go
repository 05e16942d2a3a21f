// Package checkout runs the per-buyer redemption and order placement flow on
// top of the cart store, the point calculator and the order service.
package checkout

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/buyerapi"
	"github.com/wichananm65/eco-marketplace/internal/order"
)

type Phase int

const (
	Idle Phase = iota
	PointsEntered
	Validating
	Applied
	Rejected
	OrderSubmitting
	OrderPlaced
	OrderFailed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PointsEntered:
		return "points_entered"
	case Validating:
		return "validating"
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	case OrderSubmitting:
		return "order_submitting"
	case OrderPlaced:
		return "order_placed"
	case OrderFailed:
		return "order_failed"
	default:
		return "unknown"
	}
}

var (
	ErrRequestInFlight = errors.New("a checkout request is already in progress")
	ErrAlreadyApplied  = errors.New("credit points are already applied to this order")
	ErrEmptyCart       = errors.New("your cart is empty")
	ErrMissingSeller   = errors.New("sellerId is required")
	ErrMissingAddress  = errors.New("shippingAddress is required")
	ErrCartChanged     = errors.New("your cart changed while points were being applied, please apply them again")
)

// API is the part of the order service the checkout flow calls.
type API interface {
	ApplyCreditPoints(ctx context.Context, buyerID string, points int, token string) (buyerapi.ApplyResult, error)
	PlaceOrder(ctx context.Context, p order.Payload, idempotencyKey, token string) (buyerapi.OrderResult, error)
}

// OrderRequest carries the checkout form fields that are not in the cart.
type OrderRequest struct {
	SellerID        string `json:"sellerId"`
	ShippingAddress string `json:"shippingAddress"`
}

// View is a point-in-time copy of a session.
type View struct {
	SessionID            string
	BuyerID              string
	Phase                Phase
	InFlight             bool
	PointsToUse          int
	DiscountApplied      decimal.Decimal
	Subtotal             decimal.Decimal
	FinalTotal           decimal.Decimal
	MaxPointsForSubtotal int
	Message              string
	LastOrder            *order.Receipt
}
