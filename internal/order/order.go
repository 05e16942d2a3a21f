package order

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/cart"
)

// Quantity is an amount together with its unit of sale.
type Quantity struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

type Product struct {
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

// Payload is the body sent to the order service to place an order.
type Payload struct {
	Products        []Product `json:"products"`
	BuyerID         string    `json:"buyerId"`
	SellerID        string    `json:"sellerId"`
	TotalAmount     float64   `json:"totalAmount"`
	ShippingAddress string    `json:"shippingAddress"`
}

// Assemble maps cart line items onto an order payload.
func Assemble(items []cart.Item, buyerID, sellerID string, finalTotal decimal.Decimal, shippingAddress string) Payload {
	products := make([]Product, 0, len(items))
	for _, it := range items {
		products = append(products, Product{
			ProductID: it.ID,
			Quantity:  Quantity{Value: it.Quantity, Unit: it.Unit},
		})
	}
	return Payload{
		Products:        products,
		BuyerID:         buyerID,
		SellerID:        sellerID,
		TotalAmount:     finalTotal.InexactFloat64(),
		ShippingAddress: shippingAddress,
	}
}

// Receipt is the local record of an order accepted by the order service.
type Receipt struct {
	OrderID          int             `json:"orderID"`
	RemoteOrderID    string          `json:"remoteOrderId,omitempty"`
	BuyerID          string          `json:"buyerId"`
	SellerID         string          `json:"sellerId"`
	Cart             map[string]int  `json:"cart"`
	Quantity         int             `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	GrandPrice       decimal.Decimal `json:"grandPrice"`
	PointsUsed       int             `json:"pointsUsed"`
	EcoPointsAwarded int             `json:"ecoPointsAwarded"`
	ShippingAddress  string          `json:"shippingAddress"`
	Status           string          `json:"status"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

const StatusPlaced = "placed"
