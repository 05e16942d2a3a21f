package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/eco-marketplace/internal/auth"
	"github.com/wichananm65/eco-marketplace/internal/order"
)

type OrderHandler struct {
	service *order.Service
}

func NewOrderHandler(s *order.Service) *OrderHandler {
	return &OrderHandler{service: s}
}

func (h *OrderHandler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.getOrders)
}

// getOrders lists the buyer's receipts, newest first. ?ids=3,1 restricts
// the list to those orders in that order.
func (h *OrderHandler) getOrders(c *fiber.Ctx) error {
	buyerID, err := auth.BuyerIDFromCtx(c)
	if err != nil {
		return writeError(c, err)
	}

	raw := c.Query("ids")
	if raw == "" {
		recs, err := h.service.ListForBuyer(buyerID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(recs)
	}

	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return badRequest(c, "invalid order id "+part)
		}
		ids = append(ids, id)
	}
	recs, err := h.service.ListByIDs(buyerID, ids)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(recs)
}
