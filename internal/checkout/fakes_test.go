package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/buyerapi"
	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/config"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/order"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

// fakeOrderService stands in for the remote order service. It settles
// redemptions at 10 per point like the real one.
type fakeOrderService struct {
	mu          sync.Mutex
	wallet      wallet.CreditWallet
	walletErr   error
	applyErr    error
	orderErr    error
	walletCalls int
	applyCalls  int
	orderCalls  int
	orderKeys   []string
	payloads    []order.Payload

	// onApply runs inside ApplyCreditPoints before it returns.
	onApply func()
}

func (f *fakeOrderService) GetCreditWallet(ctx context.Context, buyerID, token string) (wallet.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.walletCalls++
	if f.walletErr != nil {
		return wallet.Balance{}, f.walletErr
	}
	return wallet.Balance{CreditWallet: f.wallet, EcoPoints: 0, PointValue: decimal.NewFromInt(10)}, nil
}

func (f *fakeOrderService) ApplyCreditPoints(ctx context.Context, buyerID string, points int, token string) (buyerapi.ApplyResult, error) {
	f.mu.Lock()
	f.applyCalls++
	hook := f.onApply
	err := f.applyErr
	var res buyerapi.ApplyResult
	if err == nil {
		f.wallet.Points -= points
		f.wallet.TotalUsed += points
		res = buyerapi.ApplyResult{DiscountAmount: decimal.NewFromInt(int64(points * 10)), CreditWallet: f.wallet}
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return res, err
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, p order.Payload, key, token string) (buyerapi.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls++
	f.orderKeys = append(f.orderKeys, key)
	if f.orderErr != nil {
		return buyerapi.OrderResult{}, f.orderErr
	}
	f.payloads = append(f.payloads, p)
	f.wallet.Points++
	f.wallet.TotalEarned++
	return buyerapi.OrderResult{OrderID: "ord-1", EcoFriendlyPointsAwarded: 1, Message: "Order placed successfully"}, nil
}

type harness struct {
	remote   *fakeOrderService
	manager  *Manager
	storage  *cart.InMemoryStorage
	receipts *order.Service
}

func newHarness(t *testing.T, points int) *harness {
	t.Helper()
	return buildHarness(points)
}

func buildHarness(points int) *harness {
	log := zerolog.Nop()
	remote := &fakeOrderService{wallet: wallet.CreditWallet{Points: points, TotalEarned: points}}
	storage := cart.NewInMemoryStorage()
	receipts := order.NewService(order.NewInMemoryRepository())
	m := NewManager(
		cart.NewService(storage, log),
		discount.NewCalculator(config.DefaultRules()),
		remote,
		wallet.NewService(remote, wallet.NewInMemoryCache(), log),
		receipts,
		log,
	)
	return &harness{remote: remote, manager: m, storage: storage, receipts: receipts}
}

func (h *harness) session(t *testing.T) *Session {
	t.Helper()
	s, err := h.manager.Session(context.Background(), "buyer-1")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}

func product(id string, price int64, qty int) cart.Item {
	return cart.Item{ID: id, Name: id, UnitPrice: decimal.NewFromInt(price), Unit: "piece", Quantity: qty}
}
