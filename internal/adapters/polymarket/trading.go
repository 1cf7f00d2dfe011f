package polymarket

// trading.go — Real order execution via Polymarket CLOB API.
//
// Implements ports.OrderExecutor. Authenticates with pre-derived CLOB API
// credentials taken from the environment; signing and key derivation are the
// trading backend's concern, not this adapter's.

import (
	"context"
	"fmt"
	"os"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

const orderPath = "/order"

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	TokenID string  `json:"tokenID"`
	Side    string  `json:"side"`
	Size    float64 `json:"size"`
	Price   float64 `json:"price,omitempty"`
}

// clobOrderResponse is the response from POST /order.
type clobOrderResponse struct {
	ErrorMsg string `json:"errorMsg"`
	OrderID  string `json:"orderID"`
	Success  bool   `json:"success"`
}

// apiCredentials holds the pre-derived CLOB API credentials.
type apiCredentials struct {
	Key        string
	Secret     string
	Passphrase string
}

func (c apiCredentials) complete() bool {
	return c.Key != "" && c.Secret != "" && c.Passphrase != ""
}

// Trading implements ports.OrderExecutor against the CLOB.
type Trading struct {
	client *Client
	creds  apiCredentials
}

// NewTrading creates the trading adapter, reading POLY_API_KEY,
// POLY_API_SECRET and POLY_API_PASSPHRASE from the environment.
func NewTrading(client *Client) *Trading {
	return &Trading{
		client: client,
		creds: apiCredentials{
			Key:        os.Getenv("POLY_API_KEY"),
			Secret:     os.Getenv("POLY_API_SECRET"),
			Passphrase: os.Getenv("POLY_API_PASSPHRASE"),
		},
	}
}

// HasCredentials reports whether live execution is possible.
func (t *Trading) HasCredentials() bool {
	return t.creds.complete()
}

// PlaceOrder submits an order to the CLOB. API-level rejections come back as
// an unsuccessful OrderResult, not as an error.
func (t *Trading) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if !t.HasCredentials() {
		return domain.OrderResult{}, fmt.Errorf("polymarket.PlaceOrder: no API credentials")
	}

	body := clobOrderRequest{
		TokenID: req.TokenID,
		Side:    string(req.Side),
		Size:    req.Size,
		Price:   req.Price,
	}
	headers := map[string]string{
		"POLY-API-KEY":        t.creds.Key,
		"POLY-API-SECRET":     t.creds.Secret,
		"POLY-API-PASSPHRASE": t.creds.Passphrase,
	}

	var resp clobOrderResponse
	url := t.client.clobBase + orderPath
	if err := t.client.post(ctx, t.client.clobLimiter, url, headers, body, &resp); err != nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket.PlaceOrder: %w", err)
	}

	return domain.OrderResult{
		Success: resp.Success,
		OrderID: resp.OrderID,
		Error:   resp.ErrorMsg,
	}, nil
}
