package ports

import (
	"context"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// OrderExecutor places real orders against the trading API.
// Signing and credential derivation are internal to the implementation.
type OrderExecutor interface {
	// PlaceOrder submits an order and returns the API's verdict.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)

	// HasCredentials reports whether live execution is possible.
	// Without credentials the engine must fall back to simulation.
	HasCredentials() bool
}
