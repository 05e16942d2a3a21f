package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/discount"
)

var ctx = context.Background()

func TestApplyPoints_Success(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	v, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)
	assert.Equal(t, Applied, v.Phase)
	assert.Equal(t, 3, v.PointsToUse)
	assert.True(t, v.DiscountApplied.Equal(decimal.NewFromInt(30)))
	assert.True(t, v.FinalTotal.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, 10, v.MaxPointsForSubtotal)

	snap, err := h.manager.Wallets().Current(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 5, snap.CreditWallet.Points)
}

func TestApplyPoints_RejectionsNeverReachTheNetwork(t *testing.T) {
	cases := []struct {
		name    string
		points  int
		balance int
		kind    discount.Kind
		message string
	}{
		{"non positive", 0, 8, discount.InvalidInput, "Please enter a valid number of points to use"},
		{"insufficient", 9, 8, discount.InsufficientBalance, "You only have 8 points available"},
		{"exceeds order", 3, 5, discount.ExceedsOrderValue, "You can only use up to 2 points for this order (₹20 subtotal)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.balance)
			s := h.session(t)
			s.Cart().ReplaceAll(ctx, []cart.Item{product("soap", 20, 1)})

			v, err := s.ApplyPoints(ctx, tc.points, "tok")
			require.Error(t, err)
			assert.Equal(t, tc.kind, discount.KindOf(err))
			assert.Equal(t, tc.message, err.Error())
			assert.Equal(t, Rejected, v.Phase)
			assert.Equal(t, 0, v.PointsToUse)
			assert.True(t, v.DiscountApplied.IsZero())
			assert.Equal(t, 0, h.remote.applyCalls)
		})
	}
}

func TestApplyPoints_RemoteFailureLeavesDiscountUntouched(t *testing.T) {
	h := newHarness(t, 8)
	h.remote.applyErr = errors.New("Insufficient credit points")
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	v, err := s.ApplyPoints(ctx, 3, "tok")
	assert.Equal(t, discount.RemoteFailure, discount.KindOf(err))
	assert.Equal(t, "Insufficient credit points", err.Error())
	assert.Equal(t, Rejected, v.Phase)
	assert.True(t, v.DiscountApplied.IsZero())
	assert.False(t, v.InFlight)
}

func TestApplyPoints_WalletUnavailable(t *testing.T) {
	h := newHarness(t, 8)
	h.remote.walletErr = errors.New("Failed to fetch credit wallet")
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	_, err := s.ApplyPoints(ctx, 3, "tok")
	assert.Equal(t, discount.RemoteFailure, discount.KindOf(err))
	assert.Equal(t, 0, h.remote.applyCalls)
}

func TestApplyPoints_AlreadyApplied(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	_, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)
	_, err = s.ApplyPoints(ctx, 1, "tok")
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, 1, h.remote.applyCalls)
}

func TestCartChangeClearsAppliedDiscount(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})
	_, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)

	s.Cart().SetQuantity(ctx, "apples", 1)

	v := s.View()
	assert.Equal(t, Idle, v.Phase)
	assert.Equal(t, 0, v.PointsToUse)
	assert.True(t, v.DiscountApplied.IsZero())
	assert.True(t, v.FinalTotal.Equal(decimal.NewFromInt(50)))
}

func TestCartEditsRefusedDuringApply(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	var editErr error
	h.remote.onApply = func() {
		_, editErr = s.EditCart(ctx, func(ctx context.Context, st *cart.Store) cart.State {
			return st.AddItem(ctx, product("bread", 30, 1))
		})
	}

	v, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)
	assert.ErrorIs(t, editErr, ErrRequestInFlight)
	assert.Equal(t, Applied, v.Phase)
	assert.True(t, v.DiscountApplied.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 2, s.Cart().State().TotalItems())

	// the points the order service deducted are backed by the discount
	assert.Equal(t, 5, h.remote.wallet.Points)
	assert.Equal(t, 1, h.remote.applyCalls)

	next, err := s.EditCart(ctx, func(ctx context.Context, st *cart.Store) cart.State {
		return st.AddItem(ctx, product("bread", 30, 1))
	})
	require.NoError(t, err)
	assert.Equal(t, 3, next.TotalItems())
	assert.True(t, s.View().DiscountApplied.IsZero())
}

func TestDirectStoreChangeDuringApplyInvalidatesResult(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})
	h.remote.onApply = func() {
		s.Cart().AddItem(ctx, product("bread", 30, 1))
	}

	v, err := s.ApplyPoints(ctx, 3, "tok")
	assert.ErrorIs(t, err, ErrCartChanged)
	assert.Equal(t, Idle, v.Phase)
	assert.True(t, v.DiscountApplied.IsZero())
	assert.Equal(t, ErrCartChanged.Error(), v.Message)
}

func TestRequestInFlightGuard(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	entered := make(chan struct{})
	release := make(chan struct{})
	h.remote.onApply = func() {
		close(entered)
		<-release
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.ApplyPoints(ctx, 3, "tok")
		assert.NoError(t, err)
	}()
	<-entered

	_, err := s.ApplyPoints(ctx, 2, "tok")
	assert.ErrorIs(t, err, ErrRequestInFlight)
	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "addr"}, "tok")
	assert.ErrorIs(t, err, ErrRequestInFlight)
	_, err = s.ClearAppliedDiscount()
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.True(t, s.View().InFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, 1, h.remote.applyCalls)
	assert.Equal(t, 0, h.remote.orderCalls)
	assert.Equal(t, Applied, s.View().Phase)
}

func TestApplyPoints_RefusedAfterFailedOrderKeepsDiscount(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})
	_, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)

	h.remote.orderErr = errors.New("Seller unavailable")
	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "addr"}, "tok")
	require.Error(t, err)
	require.Equal(t, OrderFailed, s.View().Phase)

	v, err := s.ApplyPoints(ctx, 3, "tok")
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, 1, h.remote.applyCalls)
	assert.Equal(t, 5, h.remote.wallet.Points)
	assert.True(t, v.DiscountApplied.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, OrderFailed, v.Phase)
}

func TestClearAppliedDiscount(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})
	_, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)

	v, err := s.ClearAppliedDiscount()
	require.NoError(t, err)
	assert.Equal(t, Idle, v.Phase)
	assert.True(t, v.FinalTotal.Equal(decimal.NewFromInt(100)))
}

func TestPlaceOrder_Success(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	eco := product("bags", 25, 4)
	eco.IsEcoFriendly = true
	s.Cart().ReplaceAll(ctx, []cart.Item{eco})
	_, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)
	walletCalls := h.remote.walletCalls

	rec, err := s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "12 Market Rd"}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", rec.RemoteOrderID)
	assert.Equal(t, map[string]int{"bags": 4}, rec.Cart)
	assert.True(t, rec.GrandPrice.Equal(decimal.NewFromInt(70)))
	assert.True(t, rec.DiscountAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 3, rec.PointsUsed)
	assert.Equal(t, 1, rec.EcoPointsAwarded)

	require.Len(t, h.remote.payloads, 1)
	p := h.remote.payloads[0]
	assert.Equal(t, 70.0, p.TotalAmount)
	assert.Equal(t, "buyer-1", p.BuyerID)
	assert.Equal(t, 4, p.Products[0].Quantity.Value)

	v := s.View()
	assert.Equal(t, OrderPlaced, v.Phase)
	assert.True(t, v.DiscountApplied.IsZero())
	assert.True(t, s.Cart().State().Empty())
	assert.False(t, h.storage.Has(cart.StorageKey("buyer-1")))
	assert.Equal(t, walletCalls+1, h.remote.walletCalls)

	recs, err := h.receipts.ListForBuyer("buyer-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestPlaceOrder_FailureKeepsCartAndDiscount(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})
	_, err := s.ApplyPoints(ctx, 3, "tok")
	require.NoError(t, err)

	h.remote.orderErr = errors.New("Failed to place order")
	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "addr"}, "tok")
	assert.Equal(t, discount.RemoteFailure, discount.KindOf(err))

	v := s.View()
	assert.Equal(t, OrderFailed, v.Phase)
	assert.True(t, v.DiscountApplied.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 2, s.Cart().State().TotalItems())

	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "addr"}, "tok")
	assert.Error(t, err)
	require.Len(t, h.remote.orderKeys, 2)
	assert.Equal(t, h.remote.orderKeys[0], h.remote.orderKeys[1])

	s.Cart().AddItem(ctx, product("apples", 50, 1))
	h.remote.orderErr = nil
	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "addr"}, "tok")
	require.NoError(t, err)
	assert.NotEqual(t, h.remote.orderKeys[0], h.remote.orderKeys[2])
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)

	_, err := s.PlaceOrder(ctx, OrderRequest{ShippingAddress: "addr"}, "tok")
	assert.ErrorIs(t, err, ErrMissingSeller)
	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1"}, "tok")
	assert.ErrorIs(t, err, ErrMissingAddress)
	_, err = s.PlaceOrder(ctx, OrderRequest{SellerID: "s1", ShippingAddress: "addr"}, "tok")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, h.remote.orderCalls)
}

func TestManager_EndKeepsPersistedCart(t *testing.T) {
	h := newHarness(t, 8)
	s := h.session(t)
	s.Cart().ReplaceAll(ctx, []cart.Item{product("apples", 50, 2)})

	h.manager.End(ctx, "buyer-1")

	again := h.session(t)
	assert.NotEqual(t, s.ID(), again.ID())
	assert.Equal(t, 2, again.Cart().State().TotalItems())
	_, err := h.manager.Wallets().Current(ctx, "buyer-1")
	assert.Error(t, err)
}
