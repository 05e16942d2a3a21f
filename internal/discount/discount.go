package discount

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/config"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

// Calculator holds the point conversion rules. It is stateless otherwise.
type Calculator struct {
	rules      config.Rules
	pointValue decimal.Decimal
}

func NewCalculator(rules config.Rules) *Calculator {
	return &Calculator{
		rules:      rules,
		pointValue: decimal.NewFromInt(rules.PointValue),
	}
}

func (c *Calculator) Rules() config.Rules {
	return c.rules
}

// ParsePoints reads a user-entered point count.
func ParsePoints(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, newError(InvalidInput, MsgInvalidPoints)
	}
	return n, nil
}

// MaxPointsForSubtotal is ceil(subtotal / point value): the most points an
// order of this subtotal can absorb.
func (c *Calculator) MaxPointsForSubtotal(subtotal decimal.Decimal) int {
	if !subtotal.IsPositive() {
		return 0
	}
	return int(subtotal.Div(c.pointValue).Ceil().IntPart())
}

// CheckPoints rejects a non-positive point count.
func CheckPoints(pointsToUse int) error {
	if pointsToUse <= 0 {
		return newError(InvalidInput, MsgInvalidPoints)
	}
	return nil
}

// Validate checks a redemption request. The first failing check wins.
func (c *Calculator) Validate(pointsToUse int, w wallet.CreditWallet, subtotal decimal.Decimal) error {
	if err := CheckPoints(pointsToUse); err != nil {
		return err
	}
	if pointsToUse > w.Points {
		return newError(InsufficientBalance, "You only have %d points available", w.Points)
	}
	limit := c.MaxPointsForSubtotal(subtotal)
	if pointsToUse > limit {
		return newError(ExceedsOrderValue, "You can only use up to %d points for this order (%s%s subtotal)",
			limit, c.rules.CurrencySymbol, subtotal.String())
	}
	return nil
}

// Estimate is the discount the points would buy at the configured rate. It is
// a preview only; the order service decides the applied amount.
func (c *Calculator) Estimate(points int) decimal.Decimal {
	return c.pointValue.Mul(decimal.NewFromInt(int64(points)))
}

// FinalTotal is subtotal minus discount, never below zero.
func FinalTotal(subtotal, discountApplied decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, subtotal.Sub(discountApplied))
}

// PointsEarnable is one point per PiecesPerPoint eco-friendly pieces.
func (c *Calculator) PointsEarnable(totalEcoQuantity int) int {
	if totalEcoQuantity <= 0 {
		return 0
	}
	return totalEcoQuantity / c.rules.PiecesPerPoint
}

// State is the per-checkout redemption state.
type State struct {
	PointsToUse     int             `json:"pointsToUse"`
	DiscountApplied decimal.Decimal `json:"discountApplied"`
}

func (s *State) Clear() {
	s.PointsToUse = 0
	s.DiscountApplied = decimal.Zero
}
