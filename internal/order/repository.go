package order

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("order not found")
)

// Repository defines persistence operations for order receipts.
type Repository interface {
	Create(r Receipt) (Receipt, error)

	// ListByIDs returns the receipts whose orderID is present in ids, in the
	// same order as ids. An empty ids returns an empty slice.
	ListByIDs(ids []int) ([]Receipt, error)

	// ListByBuyer returns a buyer's receipts, newest first.
	ListByBuyer(buyerID string) ([]Receipt, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	receipts []Receipt
	nextID   int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(rec Receipt) (Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.OrderID = r.nextID
	r.nextID++
	r.receipts = append(r.receipts, rec)
	return rec, nil
}

func (r *InMemoryRepository) ListByIDs(ids []int) ([]Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Receipt, 0, len(ids))
	for _, id := range ids {
		for _, rec := range r.receipts {
			if rec.OrderID == id {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByBuyer(buyerID string) ([]Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Receipt, 0)
	for i := len(r.receipts) - 1; i >= 0; i-- {
		if r.receipts[i].BuyerID == buyerID {
			out = append(out, r.receipts[i])
		}
	}
	return out, nil
}
