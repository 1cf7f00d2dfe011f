package ports

import (
	"context"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// MarketProvider obtiene mercados y precios desde el backend de market data.
type MarketProvider interface {
	// GetMarkets devuelve hasta limit mercados activos.
	// Los payloads malformados se descartan individualmente, no abortan el batch.
	GetMarkets(ctx context.Context, limit int) ([]domain.Market, error)

	// GetPrices devuelve la cotización actual del outcome YES del mercado.
	GetPrices(ctx context.Context, marketID string) (domain.PriceQuote, error)
}
