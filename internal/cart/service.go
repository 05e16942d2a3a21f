package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidBuyer = errors.New("invalid buyer")
)

// Service keeps one Store per buyer, hydrated from Storage on first use.
type Service struct {
	storage Storage
	log     zerolog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewService(storage Storage, log zerolog.Logger) *Service {
	return &Service{
		storage: storage,
		log:     log,
		stores:  make(map[string]*Store),
	}
}

// StorageKey is the persisted entry name for a buyer's cart.
func StorageKey(buyerID string) string {
	return "cart:" + buyerID
}

// Open returns the buyer's store, creating and hydrating it if needed.
func (s *Service) Open(ctx context.Context, buyerID string) (*Store, error) {
	if buyerID == "" {
		return nil, ErrInvalidBuyer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[buyerID]; ok {
		return st, nil
	}
	st := NewStore(s.storage, StorageKey(buyerID), s.log)
	if err := st.Hydrate(ctx); err != nil {
		return nil, err
	}
	s.stores[buyerID] = st
	return st, nil
}

// Forget tears down the buyer's in-memory store (logout). The persisted cart
// stays so the next Open restores it.
func (s *Service) Forget(buyerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[buyerID]; ok {
		st.Close()
		delete(s.stores, buyerID)
	}
}
