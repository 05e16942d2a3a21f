package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/auth"
	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/checkout"
	"github.com/wichananm65/eco-marketplace/internal/interface/presenter"
)

// CartHandler exposes the buyer's cart store. Every mutation goes through
// the checkout session so an applied discount is invalidated, and is refused
// while a points or order call is running.
type CartHandler struct {
	checkouts *checkout.Manager
	presenter *presenter.CartPresenter
}

func NewCartHandler(m *checkout.Manager, p *presenter.CartPresenter) *CartHandler {
	return &CartHandler{checkouts: m, presenter: p}
}

func (h *CartHandler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items/:id", h.setQuantity)
	app.Delete("/api/v1/cart/items/:id", h.removeItem)
	app.Put("/api/v1/cart", h.replaceAll)
	app.Delete("/api/v1/cart", h.clear)
}

func (h *CartHandler) session(c *fiber.Ctx) (*checkout.Session, error) {
	buyerID, err := auth.BuyerIDFromCtx(c)
	if err != nil {
		return nil, err
	}
	return h.checkouts.Session(c.UserContext(), buyerID)
}

func (h *CartHandler) getCart(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCart(s.Cart().State()))
}

type addItemRequest struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Unit          string          `json:"unit"`
	ImageURL      string          `json:"imageUrl"`
	IsEcoFriendly bool            `json:"isEcoFriendly"`
}

func (h *CartHandler) addItem(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ID == "" {
		return badRequest(c, "id is required")
	}
	if req.Price.IsNegative() {
		return badRequest(c, "price must not be negative")
	}

	item := cart.Item{
		ID:            req.ID,
		Name:          req.Name,
		UnitPrice:     req.Price,
		Unit:          req.Unit,
		ImageURL:      req.ImageURL,
		IsEcoFriendly: req.IsEcoFriendly,
	}
	next, err := s.EditCart(c.UserContext(), func(ctx context.Context, st *cart.Store) cart.State {
		return st.AddItem(ctx, item)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.ToCart(next))
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// setQuantity removes the item when quantity <= 0. Unknown ids leave the
// cart unchanged.
func (h *CartHandler) setQuantity(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Quantity == nil {
		return badRequest(c, "quantity is required")
	}
	id, qty := c.Params("id"), *req.Quantity
	next, err := s.EditCart(c.UserContext(), func(ctx context.Context, st *cart.Store) cart.State {
		return st.SetQuantity(ctx, id, qty)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCart(next))
}

func (h *CartHandler) removeItem(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	id := c.Params("id")
	next, err := s.EditCart(c.UserContext(), func(ctx context.Context, st *cart.Store) cart.State {
		return st.RemoveItem(ctx, id)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCart(next))
}

type replaceRequest struct {
	Items []cart.Item `json:"items"`
}

func (h *CartHandler) replaceAll(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	var req replaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		switch {
		case it.ID == "":
			return badRequest(c, "every item needs an id")
		case seen[it.ID]:
			return badRequest(c, "duplicate item id "+it.ID)
		case it.Quantity < 1:
			return badRequest(c, "quantity must be at least 1 for item "+it.ID)
		case it.UnitPrice.IsNegative():
			return badRequest(c, "price must not be negative for item "+it.ID)
		}
		seen[it.ID] = true
	}
	if req.Items == nil {
		req.Items = []cart.Item{}
	}
	next, err := s.EditCart(c.UserContext(), func(ctx context.Context, st *cart.Store) cart.State {
		return st.ReplaceAll(ctx, req.Items)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCart(next))
}

func (h *CartHandler) clear(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	_, err = s.EditCart(c.UserContext(), func(ctx context.Context, st *cart.Store) cart.State {
		return st.Clear(ctx)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
