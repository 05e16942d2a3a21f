package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/logger"
	"github.com/wichananm65/eco-marketplace/internal/order"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

// Session is one buyer's checkout. Only one remote call runs at a time; a
// second ApplyPoints or PlaceOrder while one is running fails with
// ErrRequestInFlight.
//
// Cart edits go through EditCart, which refuses them while a remote call is
// running, so a call always settles against the cart it started with.
//
// The session lock is never held while mutating the cart store, because the
// store calls back into onCartChange.
type Session struct {
	id       uuid.UUID
	buyerID  string
	store    *cart.Store
	calc     *discount.Calculator
	api      API
	wallets  *wallet.Service
	receipts *order.Service
	log      zerolog.Logger

	mu         sync.Mutex
	phase      Phase
	discount   discount.State
	version    uint64
	inFlight   bool
	edits      int
	message    string
	orderKey   string
	keyVersion uint64
	lastOrder  *order.Receipt
}

func newSession(buyerID string, store *cart.Store, calc *discount.Calculator, api API,
	wallets *wallet.Service, receipts *order.Service, log zerolog.Logger) *Session {
	id := uuid.New()
	s := &Session{
		id:       id,
		buyerID:  buyerID,
		store:    store,
		calc:     calc,
		api:      api,
		wallets:  wallets,
		receipts: receipts,
		log:      logger.WithBuyer(log, buyerID).With().Str("session_id", id.String()).Logger(),
	}
	store.OnChange(s.onCartChange)
	return s
}

func (s *Session) ID() string {
	return s.id.String()
}

func (s *Session) Cart() *cart.Store {
	return s.store
}

// onCartChange invalidates an applied discount: it was granted against the
// old subtotal. While a remote call is running only the version moves; the
// call sees it when it completes.
func (s *Session) onCartChange(cart.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	if s.inFlight {
		return
	}
	if s.holdsDiscountLocked() {
		s.log.Info().
			Int("points", s.discount.PointsToUse).
			Str("discount", s.discount.DiscountApplied.String()).
			Msg("cart changed, dropping applied discount")
	}
	s.discount.Clear()
	s.phase = Idle
	s.message = ""
}

// ApplyPoints validates a redemption locally and, if it passes, settles it
// with the order service. Local rejections never reach the network and leave
// the discount untouched.
func (s *Session) ApplyPoints(ctx context.Context, points int, token string) (View, error) {
	s.mu.Lock()
	if s.busyLocked() {
		s.mu.Unlock()
		return s.View(), ErrRequestInFlight
	}
	if s.holdsDiscountLocked() {
		s.mu.Unlock()
		return s.View(), ErrAlreadyApplied
	}
	s.phase = PointsEntered
	if points <= 0 {
		err := discount.CheckPoints(points)
		s.rejectLocked(err)
		s.mu.Unlock()
		return s.View(), err
	}
	s.phase = Validating
	s.inFlight = true
	started := s.version
	s.mu.Unlock()

	snap, err := s.settleableWallet(ctx, token)
	if err != nil {
		return s.finishRejected(discount.Remote(err))
	}

	subtotal := s.store.State().Subtotal()
	if err := s.calc.Validate(points, snap.CreditWallet, subtotal); err != nil {
		s.log.Debug().Err(err).Int("points", points).Msg("redemption rejected")
		return s.finishRejected(err)
	}

	res, err := s.api.ApplyCreditPoints(ctx, s.buyerID, points, token)
	if err != nil {
		s.log.Warn().Err(err).Int("points", points).Msg("apply credit points failed")
		return s.finishRejected(discount.Remote(err))
	}
	if est := s.calc.Estimate(points); !est.Equal(res.DiscountAmount) {
		s.log.Warn().
			Str("estimate", est.String()).
			Str("discount", res.DiscountAmount.String()).
			Msg("order service discount differs from local rate")
	}
	s.wallets.Adopt(ctx, s.buyerID, res.CreditWallet)

	s.mu.Lock()
	s.inFlight = false
	if s.version != started {
		s.discount.Clear()
		s.phase = Idle
		s.message = ErrCartChanged.Error()
		s.mu.Unlock()
		s.log.Warn().Int("points", points).Msg("cart changed during point application")
		return s.View(), ErrCartChanged
	}
	s.discount.PointsToUse = points
	s.discount.DiscountApplied = res.DiscountAmount
	s.phase = Applied
	s.message = ""
	s.mu.Unlock()

	s.log.Info().Int("points", points).Str("discount", res.DiscountAmount.String()).Msg("credit points applied")
	return s.View(), nil
}

// EditCart runs fn against the cart unless a remote call is in flight.
func (s *Session) EditCart(ctx context.Context, fn func(context.Context, *cart.Store) cart.State) (cart.State, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return cart.State{}, ErrRequestInFlight
	}
	s.edits++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.edits--
		s.mu.Unlock()
	}()
	return fn(ctx, s.store), nil
}

func (s *Session) busyLocked() bool {
	return s.inFlight || s.edits > 0
}

// holdsDiscountLocked is true from a successful apply until the discount is
// cleared, whatever the phase; an order failure keeps the discount.
func (s *Session) holdsDiscountLocked() bool {
	return s.discount.PointsToUse > 0 || s.discount.DiscountApplied.IsPositive()
}

func (s *Session) settleableWallet(ctx context.Context, token string) (wallet.Snapshot, error) {
	snap, err := s.wallets.Current(ctx, s.buyerID)
	if err == nil && snap.Settleable() {
		return snap, nil
	}
	return s.wallets.Refresh(ctx, s.buyerID, token)
}

func (s *Session) finishRejected(err error) (View, error) {
	s.mu.Lock()
	s.inFlight = false
	s.rejectLocked(err)
	s.mu.Unlock()
	return s.View(), err
}

func (s *Session) rejectLocked(err error) {
	s.phase = Rejected
	s.message = err.Error()
}

// ClearAppliedDiscount resets the redemption.
func (s *Session) ClearAppliedDiscount() (View, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return s.View(), ErrRequestInFlight
	}
	s.discount.Clear()
	s.phase = Idle
	s.message = ""
	s.mu.Unlock()
	return s.View(), nil
}

// PlaceOrder submits the cart at its discounted total. On success the cart
// is cleared, the discount reset and the wallet refreshed. On failure the
// cart and discount are kept so the buyer can retry; a retry of an unchanged
// cart reuses the idempotency key.
func (s *Session) PlaceOrder(ctx context.Context, req OrderRequest, token string) (order.Receipt, error) {
	if req.SellerID == "" {
		return order.Receipt{}, ErrMissingSeller
	}
	if req.ShippingAddress == "" {
		return order.Receipt{}, ErrMissingAddress
	}

	s.mu.Lock()
	if s.busyLocked() {
		s.mu.Unlock()
		return order.Receipt{}, ErrRequestInFlight
	}
	st := s.store.State()
	if st.Empty() {
		s.mu.Unlock()
		return order.Receipt{}, ErrEmptyCart
	}
	if s.orderKey == "" || s.keyVersion != s.version {
		s.orderKey = uuid.NewString()
		s.keyVersion = s.version
	}
	key := s.orderKey
	applied := s.discount
	s.phase = OrderSubmitting
	s.inFlight = true
	s.mu.Unlock()

	subtotal := st.Subtotal()
	total := discount.FinalTotal(subtotal, applied.DiscountApplied)
	payload := order.Assemble(st.Items, s.buyerID, req.SellerID, total, req.ShippingAddress)

	res, err := s.api.PlaceOrder(ctx, payload, key, token)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("place order failed")
		rerr := discount.Remote(err)
		s.mu.Lock()
		s.inFlight = false
		s.phase = OrderFailed
		s.message = rerr.Error()
		s.mu.Unlock()
		return order.Receipt{}, rerr
	}

	s.store.Clear(ctx)
	if _, err := s.wallets.Refresh(ctx, s.buyerID, token); err != nil {
		s.log.Warn().Err(err).Msg("refresh wallet after order")
	}

	lines := make(map[string]int, len(st.Items))
	for _, it := range st.Items {
		lines[it.ID] = it.Quantity
	}
	rec := order.Receipt{
		RemoteOrderID:    res.OrderID,
		BuyerID:          s.buyerID,
		SellerID:         req.SellerID,
		Cart:             lines,
		Quantity:         st.TotalItems(),
		TotalPrice:       subtotal,
		DiscountAmount:   applied.DiscountApplied,
		GrandPrice:       total,
		PointsUsed:       applied.PointsToUse,
		EcoPointsAwarded: res.EcoFriendlyPointsAwarded,
		ShippingAddress:  req.ShippingAddress,
		Status:           order.StatusPlaced,
	}
	if saved, err := s.receipts.Record(rec); err != nil {
		s.log.Error().Err(err).Str("remote_order_id", res.OrderID).Msg("record order receipt")
	} else {
		rec = saved
	}

	s.mu.Lock()
	s.inFlight = false
	s.discount.Clear()
	s.phase = OrderPlaced
	s.message = res.Message
	s.orderKey = ""
	s.lastOrder = &rec
	s.mu.Unlock()

	s.log.Info().
		Str("remote_order_id", res.OrderID).
		Str("total", total.String()).
		Int("eco_points_awarded", res.EcoFriendlyPointsAwarded).
		Msg("order placed")
	return rec, nil
}

// View returns the session state together with the current cart totals.
func (s *Session) View() View {
	st := s.store.State()
	subtotal := st.Subtotal()

	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		SessionID:            s.id.String(),
		BuyerID:              s.buyerID,
		Phase:                s.phase,
		InFlight:             s.inFlight,
		PointsToUse:          s.discount.PointsToUse,
		DiscountApplied:      s.discount.DiscountApplied,
		Subtotal:             subtotal,
		FinalTotal:           discount.FinalTotal(subtotal, s.discount.DiscountApplied),
		MaxPointsForSubtotal: s.calc.MaxPointsForSubtotal(subtotal),
		Message:              s.message,
		LastOrder:            s.lastOrder,
	}
}
