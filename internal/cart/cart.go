package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one line item in a buyer's cart.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"price"`
	Unit          string          `json:"unit"`
	Quantity      int             `json:"quantity"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	IsEcoFriendly bool            `json:"isEcoFriendly"`
}

// LineTotal is unit price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the canonical cart content. Items keep insertion order and every
// stored item has a unique ID and Quantity >= 1.
type State struct {
	Items []Item `json:"items"`
}

func (s State) Empty() bool {
	return len(s.Items) == 0
}

func (s State) Find(id string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (s State) clone() State {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return State{Items: items}
}

func sameItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].Quantity != b[i].Quantity ||
			a[i].Name != b[i].Name ||
			a[i].Unit != b[i].Unit ||
			a[i].ImageURL != b[i].ImageURL ||
			a[i].IsEcoFriendly != b[i].IsEcoFriendly ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}
