package presenter

import (
	"github.com/wichananm65/eco-marketplace/internal/checkout"
	"github.com/wichananm65/eco-marketplace/internal/order"
)

type CheckoutResponse struct {
	SessionID            string         `json:"sessionId"`
	State                string         `json:"state"`
	InFlight             bool           `json:"inFlight"`
	PointsToUse          int            `json:"pointsToUse"`
	DiscountApplied      string         `json:"discountApplied"`
	Subtotal             string         `json:"subtotal"`
	FinalTotal           string         `json:"finalTotal"`
	FinalTotalDisplay    string         `json:"finalTotalDisplay"`
	MaxPointsForSubtotal int            `json:"maxPointsForSubtotal"`
	Message              string         `json:"message,omitempty"`
	LastOrder            *order.Receipt `json:"lastOrder,omitempty"`
}

func (p *CartPresenter) ToCheckout(v checkout.View) *CheckoutResponse {
	return &CheckoutResponse{
		SessionID:            v.SessionID,
		State:                v.Phase.String(),
		InFlight:             v.InFlight,
		PointsToUse:          v.PointsToUse,
		DiscountApplied:      Money(v.DiscountApplied),
		Subtotal:             Money(v.Subtotal),
		FinalTotal:           Money(v.FinalTotal),
		FinalTotalDisplay:    p.Display(v.FinalTotal),
		MaxPointsForSubtotal: v.MaxPointsForSubtotal,
		Message:              v.Message,
		LastOrder:            v.LastOrder,
	}
}
