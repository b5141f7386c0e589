package razorpay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"admissions/internal/config"
	"admissions/internal/domain/payment"
	"admissions/internal/provider"
	"admissions/internal/provider/base"

	"github.com/rs/zerolog/log"
)

// Order limits in paise: Rs 1 to Rs 5,00,000 per order
const (
	minOrderAmount = 100
	maxOrderAmount = 50_000_000
)

// Client implements provider.Gateway against the Razorpay Orders API
type Client struct {
	http      *base.HTTPClient
	validator *base.AmountValidator
	keyID     string
}

var _ provider.Gateway = (*Client)(nil)

// New creates a gateway client from config
func New(cfg config.GatewayCfg) *Client {
	httpClient := base.NewHTTPClient("razorpay", cfg.TimeoutSec)
	httpClient.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	httpClient.SetBasicAuth(cfg.KeyID, cfg.KeySecret)

	currency := cfg.Currency
	if currency == "" {
		currency = string(payment.INR)
	}
	return &Client{
		http:      httpClient,
		validator: base.NewAmountValidator(currency, minOrderAmount, maxOrderAmount),
		keyID:     cfg.KeyID,
	}
}

func (c *Client) KeyID() string { return c.keyID }

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Field       string `json:"field"`
	} `json:"error"`
}

// CreateOrder opens an order for the given amount in minor units
func (c *Client) CreateOrder(ctx context.Context, p provider.OrderParams) (*payment.Order, error) {
	if err := c.validator.ValidateAmount(int64(p.AmountMinor)); err != nil {
		return nil, err
	}

	resp, err := c.http.PostJSON(ctx, "/v1/orders", orderRequest{
		Amount:   int64(p.AmountMinor),
		Currency: string(p.Currency),
		Receipt:  p.Receipt,
	})
	if err != nil {
		code, msg := provider.ErrProviderDown, "order request failed"
		if isTimeout(err) {
			code, msg = provider.ErrProviderTimeout, "order request timed out"
		}
		return nil, &provider.ProviderError{Code: code, Message: msg, ProviderErr: err.Error()}
	}

	if !resp.IsSuccess() {
		return nil, responseError(resp)
	}

	var order payment.Order
	if err := resp.UnmarshalJSON(&order); err != nil {
		return nil, &provider.ProviderError{
			Code:    "response_parse_failed",
			Message: fmt.Sprintf("failed to parse order response: %v", err),
		}
	}
	if order.ID == "" {
		return nil, &provider.ProviderError{
			Code:    "response_parse_failed",
			Message: "order response has no id",
		}
	}

	log.Info().
		Str("order_id", order.ID).
		Int64("amount", int64(order.Amount)).
		Str("receipt", order.Receipt).
		Msg("gateway order created")

	return &order, nil
}

func responseError(resp *base.HTTPResponse) error {
	var body errorResponse
	_ = resp.UnmarshalJSON(&body)

	code := provider.ErrUnknownError
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		code = provider.ErrInvalidCredentials
	case resp.StatusCode == http.StatusBadRequest:
		code = provider.ErrBadRequest
	case resp.StatusCode >= 500:
		code = provider.ErrProviderDown
	}
	msg := body.Error.Description
	if msg == "" {
		msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
	}
	return &provider.ProviderError{
		Code:        code,
		Message:     msg,
		ProviderErr: body.Error.Code,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
