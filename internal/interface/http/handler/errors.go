package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/eco-marketplace/internal/cart"
	"github.com/wichananm65/eco-marketplace/internal/checkout"
	"github.com/wichananm65/eco-marketplace/internal/discount"
	"github.com/wichananm65/eco-marketplace/internal/order"
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func statusFor(err error) (int, string) {
	var de *discount.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case discount.InvalidInput:
			return fiber.StatusBadRequest, de.Kind.String()
		case discount.InsufficientBalance, discount.ExceedsOrderValue:
			return fiber.StatusUnprocessableEntity, de.Kind.String()
		case discount.RemoteFailure:
			return fiber.StatusBadGateway, de.Kind.String()
		}
	}

	switch {
	case errors.Is(err, checkout.ErrRequestInFlight):
		return fiber.StatusConflict, "REQUEST_IN_FLIGHT"
	case errors.Is(err, checkout.ErrAlreadyApplied):
		return fiber.StatusConflict, "ALREADY_APPLIED"
	case errors.Is(err, checkout.ErrCartChanged):
		return fiber.StatusConflict, "CART_CHANGED"
	case errors.Is(err, checkout.ErrEmptyCart):
		return fiber.StatusBadRequest, "EMPTY_CART"
	case errors.Is(err, checkout.ErrMissingSeller), errors.Is(err, checkout.ErrMissingAddress):
		return fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, cart.ErrInvalidBuyer), errors.Is(err, fiber.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, order.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusUnauthorized {
		msg = "unauthorized"
	}
	return c.Status(status).JSON(errorResponse{Message: msg, Code: code})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Message: msg, Code: "INVALID_INPUT"})
}
