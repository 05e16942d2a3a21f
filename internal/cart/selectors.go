package cart

import "github.com/shopspring/decimal"

// TotalItems is the sum of all quantities.
func (s State) TotalItems() int {
	total := 0
	for _, it := range s.Items {
		total += it.Quantity
	}
	return total
}

// Subtotal is the sum of unit price times quantity, before any discount.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s State) EcoFriendlyItems() []Item {
	out := make([]Item, 0)
	for _, it := range s.Items {
		if it.IsEcoFriendly {
			out = append(out, it)
		}
	}
	return out
}

// TotalEcoFriendlyQuantity counts physical eco-friendly pieces: each unit of
// an eco-friendly item is a pack of packSize pieces.
func (s State) TotalEcoFriendlyQuantity(packSize int) int {
	total := 0
	for _, it := range s.EcoFriendlyItems() {
		total += it.Quantity * packSize
	}
	return total
}
