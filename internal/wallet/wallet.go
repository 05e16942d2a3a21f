package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditWallet mirrors the buyer's wallet held by the order service.
type CreditWallet struct {
	Points      int `json:"points"`
	TotalEarned int `json:"totalEarned"`
	TotalUsed   int `json:"totalUsed"`
}

// Balance is the wallet endpoint payload.
type Balance struct {
	CreditWallet CreditWallet    `json:"creditWallet"`
	EcoPoints    int             `json:"ecoPoints"`
	PointValue   decimal.Decimal `json:"pointValue"`
}

// Snapshot is a locally cached copy of a Balance. Stale snapshots were served
// from cache after a failed refresh; they are for display only.
type Snapshot struct {
	Balance
	BuyerID   string    `json:"buyerId"`
	FetchedAt time.Time `json:"fetchedAt"`
	Stale     bool      `json:"stale"`
}

// Settleable reports whether the snapshot may back a settlement decision.
func (s Snapshot) Settleable() bool {
	return !s.Stale && !s.FetchedAt.IsZero()
}

// Worth is the currency value of the spendable points.
func (s Snapshot) Worth() decimal.Decimal {
	return s.PointValue.Mul(decimal.NewFromInt(int64(s.CreditWallet.Points)))
}
