package order

import (
	"errors"
	"time"
)

// Service records and lists order receipts.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) Record(rec Receipt) (Receipt, error) {
	if rec.BuyerID == "" {
		return Receipt{}, errors.New("invalid buyer")
	}
	if len(rec.Cart) == 0 {
		return Receipt{}, errors.New("empty cart")
	}
	ts := s.now().UTC().Format(time.RFC3339)
	if rec.CreatedAt == "" {
		rec.CreatedAt = ts
	}
	rec.UpdatedAt = ts
	if rec.Status == "" {
		rec.Status = StatusPlaced
	}
	return s.repo.Create(rec)
}

func (s *Service) ListForBuyer(buyerID string) ([]Receipt, error) {
	if buyerID == "" {
		return nil, ErrNotFound
	}
	return s.repo.ListByBuyer(buyerID)
}

// ListByIDs returns the buyer's receipts among ids; other buyers' orders are
// filtered out.
func (s *Service) ListByIDs(buyerID string, ids []int) ([]Receipt, error) {
	all, err := s.repo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make([]Receipt, 0, len(all))
	for _, rec := range all {
		if rec.BuyerID == buyerID {
			out = append(out, rec)
		}
	}
	return out, nil
}
