package checkout

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/order"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

// Manager owns the checkout session of every signed-in buyer. A session is
// created on first use and lives until End.
type Manager struct {
	carts    *cart.Service
	calc     *discount.Calculator
	api      API
	wallets  *wallet.Service
	receipts *order.Service
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(carts *cart.Service, calc *discount.Calculator, api API, wallets *wallet.Service,
	receipts *order.Service, log zerolog.Logger) *Manager {
	return &Manager{
		carts:    carts,
		calc:     calc,
		api:      api,
		wallets:  wallets,
		receipts: receipts,
		log:      log.With().Str("component", "checkout").Logger(),
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Calculator() *discount.Calculator {
	return m.calc
}

func (m *Manager) Wallets() *wallet.Service {
	return m.wallets
}

// Session returns the buyer's session, opening the cart on first use.
func (m *Manager) Session(ctx context.Context, buyerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[buyerID]; ok {
		return s, nil
	}
	store, err := m.carts.Open(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	s := newSession(buyerID, store, m.calc, m.api, m.wallets, m.receipts, m.log)
	m.sessions[buyerID] = s
	m.log.Debug().Str("buyer_id", buyerID).Str("session_id", s.ID()).Msg("checkout session opened")
	return s, nil
}

// End tears down the buyer's session, cart store and cached wallet. The
// persisted cart is kept.
func (m *Manager) End(ctx context.Context, buyerID string) {
	m.mu.Lock()
	delete(m.sessions, buyerID)
	m.mu.Unlock()

	m.carts.Forget(buyerID)
	m.wallets.Forget(ctx, buyerID)
}
