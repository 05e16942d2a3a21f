package handler

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/eco-marketplace/internal/auth"
	"github.com/wichananm65/eco-marketplace/internal/checkout"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/interface/presenter"
)

type CheckoutHandler struct {
	checkouts *checkout.Manager
	presenter *presenter.CartPresenter
}

func NewCheckoutHandler(m *checkout.Manager, p *presenter.CartPresenter) *CheckoutHandler {
	return &CheckoutHandler{checkouts: m, presenter: p}
}

func (h *CheckoutHandler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/wallet", h.getWallet)
	app.Get("/api/v1/checkout", h.getCheckout)
	app.Post("/api/v1/checkout/points", h.applyPoints)
	app.Delete("/api/v1/checkout/points", h.clearPoints)
	app.Post("/api/v1/checkout/order", h.placeOrder)
	app.Delete("/api/v1/session", h.endSession)
}

func (h *CheckoutHandler) session(c *fiber.Ctx) (*checkout.Session, error) {
	buyerID, err := auth.BuyerIDFromCtx(c)
	if err != nil {
		return nil, err
	}
	return h.checkouts.Session(c.UserContext(), buyerID)
}

// getWallet refreshes the wallet. When the order service is down the last
// cached snapshot is returned flagged stale, for display only.
func (h *CheckoutHandler) getWallet(c *fiber.Ctx) error {
	buyerID, err := auth.BuyerIDFromCtx(c)
	if err != nil {
		return writeError(c, err)
	}

	snap, err := h.checkouts.Wallets().Refresh(c.UserContext(), buyerID, auth.TokenFromCtx(c))
	if err != nil {
		if snap.FetchedAt.IsZero() {
			return writeError(c, discount.Remote(err))
		}
		resp := h.presenter.ToWallet(snap)
		resp.Message = err.Error()
		return c.JSON(resp)
	}
	return c.JSON(h.presenter.ToWallet(snap))
}

func (h *CheckoutHandler) getCheckout(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCheckout(s.View()))
}

type pointsRequest struct {
	PointsToUse json.RawMessage `json:"pointsToUse"`
}

// applyPoints accepts pointsToUse as a number or a numeric string, as typed
// into the checkout form.
func (h *CheckoutHandler) applyPoints(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	var req pointsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	// unparseable input is rejected by the session as a non-positive count
	points, _ := discount.ParsePoints(strings.Trim(string(req.PointsToUse), `"`))

	view, err := s.ApplyPoints(c.UserContext(), points, auth.TokenFromCtx(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCheckout(view))
}

func (h *CheckoutHandler) clearPoints(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	view, err := s.ClearAppliedDiscount()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.ToCheckout(view))
}

func (h *CheckoutHandler) placeOrder(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	var req checkout.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.SellerID = strings.TrimSpace(req.SellerID)
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)

	rec, err := s.PlaceOrder(c.UserContext(), req, auth.TokenFromCtx(c))
	if err != nil {
		return writeError(c, err)
	}
	view := s.View()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  view.Message,
		"order":    rec,
		"checkout": h.presenter.ToCheckout(view),
	})
}

// endSession is called on logout. The persisted cart survives.
func (h *CheckoutHandler) endSession(c *fiber.Ctx) error {
	buyerID, err := auth.BuyerIDFromCtx(c)
	if err != nil {
		return writeError(c, err)
	}
	h.checkouts.End(c.UserContext(), buyerID)
	return c.SendStatus(fiber.StatusNoContent)
}
