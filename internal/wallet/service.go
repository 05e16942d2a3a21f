package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Source fetches the authoritative wallet from the order service.
type Source interface {
	GetCreditWallet(ctx context.Context, buyerID, token string) (Balance, error)
}

// Service keeps a read-only mirror of each buyer's wallet.
type Service struct {
	source Source
	cache  Cache
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(source Source, cache Cache, log zerolog.Logger) *Service {
	return &Service{source: source, cache: cache, log: log, now: time.Now}
}

// Refresh fetches the wallet and caches it. When the fetch fails the last
// cached snapshot is returned marked Stale together with the fetch error.
func (s *Service) Refresh(ctx context.Context, buyerID, token string) (Snapshot, error) {
	bal, err := s.source.GetCreditWallet(ctx, buyerID, token)
	if err != nil {
		s.log.Warn().Err(err).Str("buyer_id", buyerID).Msg("wallet refresh failed")
		cached, cerr := s.cache.Get(ctx, buyerID)
		if cerr != nil {
			return Snapshot{BuyerID: buyerID, Stale: true}, err
		}
		cached.Stale = true
		return cached, err
	}

	snap := Snapshot{Balance: bal, BuyerID: buyerID, FetchedAt: s.now().UTC()}
	if err := s.cache.Put(ctx, snap); err != nil {
		s.log.Error().Err(err).Str("buyer_id", buyerID).Msg("cache wallet snapshot")
	}
	return snap, nil
}

// Current returns the cached snapshot without touching the network.
func (s *Service) Current(ctx context.Context, buyerID string) (Snapshot, error) {
	return s.cache.Get(ctx, buyerID)
}

// Adopt replaces the cached wallet counters with the ones the order service
// returned from a wallet-affecting call.
func (s *Service) Adopt(ctx context.Context, buyerID string, w CreditWallet) Snapshot {
	snap, err := s.cache.Get(ctx, buyerID)
	if err != nil && !errors.Is(err, ErrNotCached) {
		s.log.Warn().Err(err).Str("buyer_id", buyerID).Msg("read cached wallet")
	}
	snap.BuyerID = buyerID
	snap.CreditWallet = w
	snap.FetchedAt = s.now().UTC()
	snap.Stale = false

	if err := s.cache.Put(ctx, snap); err != nil {
		s.log.Error().Err(err).Str("buyer_id", buyerID).Msg("cache wallet snapshot")
	}
	return snap
}

// Forget drops the cached snapshot (logout).
func (s *Service) Forget(ctx context.Context, buyerID string) {
	if err := s.cache.Delete(ctx, buyerID); err != nil {
		s.log.Warn().Err(err).Str("buyer_id", buyerID).Msg("drop cached wallet")
	}
}
