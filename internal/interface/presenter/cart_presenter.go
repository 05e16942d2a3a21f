package presenter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

// CartPresenter shapes cart and wallet state for HTTP responses.
type CartPresenter struct {
	calc *discount.Calculator
}

func NewCartPresenter(calc *discount.Calculator) *CartPresenter {
	return &CartPresenter{calc: calc}
}

type ItemResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Unit          string `json:"unit"`
	Quantity      int    `json:"quantity"`
	ImageURL      string `json:"imageUrl,omitempty"`
	IsEcoFriendly bool   `json:"isEcoFriendly"`
	LineTotal     string `json:"lineTotal"`
}

type CartResponse struct {
	Items                    []ItemResponse `json:"items"`
	TotalItems               int            `json:"totalItems"`
	Subtotal                 string         `json:"subtotal"`
	SubtotalDisplay          string         `json:"subtotalDisplay"`
	EcoFriendlyItems         []ItemResponse `json:"ecoFriendlyItems"`
	TotalEcoFriendlyQuantity int            `json:"totalEcoFriendlyQuantity"`
	PointsEarnable           int            `json:"pointsEarnable"`
	Currency                 string         `json:"currency"`
}

type WalletResponse struct {
	Points      int    `json:"points"`
	TotalEarned int    `json:"totalEarned"`
	TotalUsed   int    `json:"totalUsed"`
	EcoPoints   int    `json:"ecoPoints"`
	PointValue  string `json:"pointValue"`
	Worth       string `json:"worth"`
	Stale       bool   `json:"stale"`
	FetchedAt   string `json:"fetchedAt,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Money renders an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Display renders an amount with the configured currency symbol.
func (p *CartPresenter) Display(d decimal.Decimal) string {
	return p.calc.Rules().CurrencySymbol + Money(d)
}

func (p *CartPresenter) ToItem(it cart.Item) ItemResponse {
	return ItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Price:         Money(it.UnitPrice),
		Unit:          it.Unit,
		Quantity:      it.Quantity,
		ImageURL:      it.ImageURL,
		IsEcoFriendly: it.IsEcoFriendly,
		LineTotal:     Money(it.LineTotal()),
	}
}

func (p *CartPresenter) toItems(items []cart.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, p.ToItem(it))
	}
	return out
}

func (p *CartPresenter) ToCart(s cart.State) *CartResponse {
	rules := p.calc.Rules()
	subtotal := s.Subtotal()
	ecoQty := s.TotalEcoFriendlyQuantity(rules.EcoPackSize)
	return &CartResponse{
		Items:                    p.toItems(s.Items),
		TotalItems:               s.TotalItems(),
		Subtotal:                 Money(subtotal),
		SubtotalDisplay:          p.Display(subtotal),
		EcoFriendlyItems:         p.toItems(s.EcoFriendlyItems()),
		TotalEcoFriendlyQuantity: ecoQty,
		PointsEarnable:           p.calc.PointsEarnable(ecoQty),
		Currency:                 rules.Currency,
	}
}

func (p *CartPresenter) ToWallet(s wallet.Snapshot) *WalletResponse {
	resp := &WalletResponse{
		Points:      s.CreditWallet.Points,
		TotalEarned: s.CreditWallet.TotalEarned,
		TotalUsed:   s.CreditWallet.TotalUsed,
		EcoPoints:   s.EcoPoints,
		PointValue:  Money(s.PointValue),
		Worth:       Money(s.Worth()),
		Stale:       s.Stale,
	}
	if !s.FetchedAt.IsZero() {
		resp.FetchedAt = s.FetchedAt.Format(time.RFC3339)
	}
	return resp
}
