package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/eco-marketplace/internal/cart"
)

func TestAssemble(t *testing.T) {
	items := []cart.Item{
		{ID: "apple", Name: "Apples", UnitPrice: decimal.NewFromInt(50), Unit: "kg", Quantity: 2},
		{ID: "bags", Name: "Bags", UnitPrice: decimal.NewFromInt(25), Unit: "pack", Quantity: 1, IsEcoFriendly: true},
	}

	p := Assemble(items, "buyer-1", "seller-9", decimal.RequireFromString("95.5"), "12 Market Rd")
	require.Len(t, p.Products, 2)
	assert.Equal(t, Product{ProductID: "apple", Quantity: Quantity{Value: 2, Unit: "kg"}}, p.Products[0])
	assert.Equal(t, "buyer-1", p.BuyerID)
	assert.Equal(t, "seller-9", p.SellerID)
	assert.Equal(t, 95.5, p.TotalAmount)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"products":[{"productId":"apple","quantity":{"value":2,"unit":"kg"}},{"productId":"bags","quantity":{"value":1,"unit":"pack"}}],
		"buyerId":"buyer-1","sellerId":"seller-9","totalAmount":95.5,"shippingAddress":"12 Market Rd"}`, string(b))
}

func TestService_RecordAndList(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	_, err := svc.Record(Receipt{BuyerID: "b1"})
	assert.Error(t, err)

	first, err := svc.Record(Receipt{BuyerID: "b1", Cart: map[string]int{"apple": 2}})
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, first.Status)
	assert.NotEmpty(t, first.CreatedAt)

	_, err = svc.Record(Receipt{BuyerID: "b2", Cart: map[string]int{"milk": 1}})
	require.NoError(t, err)
	second, err := svc.Record(Receipt{BuyerID: "b1", Cart: map[string]int{"bread": 3}})
	require.NoError(t, err)

	mine, err := svc.ListForBuyer("b1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.OrderID, mine[0].OrderID)

	byIDs, err := svc.ListByIDs("b1", []int{second.OrderID, 2, first.OrderID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, second.OrderID, byIDs[0].OrderID)
	assert.Equal(t, first.OrderID, byIDs[1].OrderID)
}
