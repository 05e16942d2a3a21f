// Package buyerapi talks to the order service's buyer endpoints: wallet
// lookup, credit point settlement and order placement.
package buyerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/eco-marketplace/internal/order"
	"github.com/wichananm65/eco-marketplace/internal/wallet"
)

const (
	opCreditWallet = "Failed to fetch credit wallet"
	opApplyPoints  = "Failed to apply credit points"
	opPlaceOrder   = "Failed to place order"

	HeaderIdempotencyKey = "Idempotency-Key"
)

var ErrMalformedResponse = errors.New("malformed response from order service")

// RemoteError is a failed call to the order service. Message is the
// server's own message when it sent one.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ApplyResult is the settlement of a credit point redemption.
type ApplyResult struct {
	DiscountAmount decimal.Decimal
	CreditWallet   wallet.CreditWallet
}

type OrderResult struct {
	OrderID                  string
	EcoFriendlyPointsAwarded int
	Message                  string
}

type Client struct {
	baseURL string
	timeout time.Duration
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     log.With().Str("component", "buyerapi").Logger(),
	}
}

type walletBody struct {
	CreditWallet *wallet.CreditWallet `json:"creditWallet"`
	EcoPoints    *int                 `json:"ecoPoints"`
	PointValue   *decimal.Decimal     `json:"pointValue"`
}

// GetCreditWallet fetches the buyer's wallet and the current point value.
func (c *Client) GetCreditWallet(ctx context.Context, buyerID, token string) (wallet.Balance, error) {
	var body walletBody
	if err := c.do(ctx, fiber.MethodGet, "/api/buyer/credit-wallet/"+buyerID, token, nil, nil, opCreditWallet, &body); err != nil {
		return wallet.Balance{}, err
	}

	if body.CreditWallet == nil || body.PointValue == nil {
		return wallet.Balance{}, c.malformed(opCreditWallet, "missing creditWallet or pointValue")
	}
	if err := checkWallet(*body.CreditWallet); err != nil {
		return wallet.Balance{}, c.malformed(opCreditWallet, err.Error())
	}
	if !body.PointValue.IsPositive() {
		return wallet.Balance{}, c.malformed(opCreditWallet, "pointValue must be positive")
	}

	bal := wallet.Balance{CreditWallet: *body.CreditWallet, PointValue: *body.PointValue}
	if body.EcoPoints != nil {
		if *body.EcoPoints < 0 {
			return wallet.Balance{}, c.malformed(opCreditWallet, "negative ecoPoints")
		}
		bal.EcoPoints = *body.EcoPoints
	}
	return bal, nil
}

type applyRequest struct {
	PointsToUse int `json:"pointsToUse"`
}

type applyBody struct {
	DiscountAmount *decimal.Decimal     `json:"discountAmount"`
	CreditWallet   *wallet.CreditWallet `json:"creditWallet"`
}

// ApplyCreditPoints asks the order service to redeem points. The discount
// amount it returns is authoritative.
func (c *Client) ApplyCreditPoints(ctx context.Context, buyerID string, points int, token string) (ApplyResult, error) {
	var body applyBody
	req := applyRequest{PointsToUse: points}
	if err := c.do(ctx, fiber.MethodPost, "/api/buyer/apply-credit-points/"+buyerID, token, nil, req, opApplyPoints, &body); err != nil {
		return ApplyResult{}, err
	}

	if body.DiscountAmount == nil || body.CreditWallet == nil {
		return ApplyResult{}, c.malformed(opApplyPoints, "missing discountAmount or creditWallet")
	}
	if body.DiscountAmount.IsNegative() {
		return ApplyResult{}, c.malformed(opApplyPoints, "negative discountAmount")
	}
	if err := checkWallet(*body.CreditWallet); err != nil {
		return ApplyResult{}, c.malformed(opApplyPoints, err.Error())
	}
	return ApplyResult{DiscountAmount: *body.DiscountAmount, CreditWallet: *body.CreditWallet}, nil
}

type orderBody struct {
	EcoFriendlyPointsAwarded *int            `json:"ecoFriendlyPointsAwarded"`
	OrderID                  json.RawMessage `json:"orderId"`
	Message                  string          `json:"message"`
}

// PlaceOrder submits the order. The idempotency key lets the order service
// drop a retried submission it has already accepted.
func (c *Client) PlaceOrder(ctx context.Context, p order.Payload, idempotencyKey, token string) (OrderResult, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{HeaderIdempotencyKey: idempotencyKey}
	}

	var body orderBody
	if err := c.do(ctx, fiber.MethodPost, "/api/buyer/place-order", token, headers, p, opPlaceOrder, &body); err != nil {
		return OrderResult{}, err
	}

	res := OrderResult{Message: body.Message, OrderID: rawID(body.OrderID)}
	if body.EcoFriendlyPointsAwarded != nil {
		if *body.EcoFriendlyPointsAwarded < 0 {
			return OrderResult{}, c.malformed(opPlaceOrder, "negative ecoFriendlyPointsAwarded")
		}
		res.EcoFriendlyPointsAwarded = *body.EcoFriendlyPointsAwarded
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, headers map[string]string, reqBody interface{}, op string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return &RemoteError{Op: op, Message: op, Err: err}
	}

	var a *fiber.Agent
	switch method {
	case fiber.MethodPost:
		a = fiber.Post(c.baseURL + path)
	default:
		a = fiber.Get(c.baseURL + path)
	}
	a.Timeout(c.timeout)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for k, v := range headers {
		a.Set(k, v)
	}
	if reqBody != nil {
		a.JSON(reqBody)
	}

	start := time.Now()
	code, body, errs := a.Bytes()
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", code).
		Dur("took", time.Since(start)).
		Msg("order service call")

	if len(errs) > 0 {
		return &RemoteError{Op: op, Message: op, Err: errors.Join(errs...)}
	}
	if code < 200 || code > 299 {
		return &RemoteError{Op: op, Status: code, Message: serverMessage(body, op), Err: fmt.Errorf("status %d", code)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteError{Op: op, Status: code, Message: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

func (c *Client) malformed(op, reason string) error {
	c.log.Warn().Str("op", op).Str("reason", reason).Msg("rejecting order service response")
	return &RemoteError{Op: op, Status: fiber.StatusOK, Message: op, Err: fmt.Errorf("%w: %s", ErrMalformedResponse, reason)}
}

func serverMessage(body []byte, fallback string) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil || strings.TrimSpace(m.Message) == "" {
		return fallback
	}
	return m.Message
}

func checkWallet(w wallet.CreditWallet) error {
	if w.Points < 0 || w.TotalEarned < 0 || w.TotalUsed < 0 {
		return errors.New("negative wallet counters")
	}
	return nil
}

// rawID accepts both numeric and string order ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
