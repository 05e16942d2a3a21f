package cart

// Command is a cart mutation. The set of commands is closed.
type Command interface {
	isCommand()
}

// AddItem increments the quantity of an existing item with the same ID by one
// or appends the item with quantity 1. Other fields of an existing item are
// left alone.
type AddItem struct {
	Item Item
}

type RemoveItem struct {
	ID string
}

// SetQuantity sets an item's quantity. Values <= 0 remove the item.
type SetQuantity struct {
	ID       string
	Quantity int
}

type Clear struct{}

// ReplaceAll swaps the whole collection verbatim. It is used for hydration
// and does not re-validate the items.
type ReplaceAll struct {
	Items []Item
}

func (AddItem) isCommand()     {}
func (RemoveItem) isCommand()  {}
func (SetQuantity) isCommand() {}
func (Clear) isCommand()       {}
func (ReplaceAll) isCommand()  {}

// Reduce returns the state produced by applying cmd to s. s is never modified.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddItem:
		next := s.clone()
		for i := range next.Items {
			if next.Items[i].ID == c.Item.ID {
				next.Items[i].Quantity++
				return next
			}
		}
		it := c.Item
		it.Quantity = 1
		next.Items = append(next.Items, it)
		return next

	case RemoveItem:
		next := State{Items: make([]Item, 0, len(s.Items))}
		for _, it := range s.Items {
			if it.ID != c.ID {
				next.Items = append(next.Items, it)
			}
		}
		return next

	case SetQuantity:
		qty := c.Quantity
		if qty < 0 {
			qty = 0
		}
		next := State{Items: make([]Item, 0, len(s.Items))}
		for _, it := range s.Items {
			if it.ID == c.ID {
				if qty == 0 {
					continue
				}
				it.Quantity = qty
			}
			next.Items = append(next.Items, it)
		}
		return next

	case Clear:
		return State{Items: []Item{}}

	case ReplaceAll:
		items := make([]Item, len(c.Items))
		copy(items, c.Items)
		return State{Items: items}

	default:
		return s
	}
}
