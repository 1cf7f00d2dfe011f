package polymarket

// markets.go — Gamma API adapter para market data.
//
// Implementa ports.MarketProvider. Gamma devuelve algunos campos como JSON
// doblemente codificado (outcomes y clobTokenIds son strings que contienen
// arrays JSON); los mercados que no se pueden parsear se descartan
// individualmente sin abortar el batch.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	defaultLimit     = 100
)

// gammaMarket es el DTO raw de GET /markets de Gamma.
type gammaMarket struct {
	ConditionID   string      `json:"conditionId"`
	Question      string      `json:"question"`
	Liquidity     json.Number `json:"liquidity"`
	Volume        json.Number `json:"volume"`
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
	Outcomes      string      `json:"outcomes"`      // JSON array codificado como string
	OutcomePrices string      `json:"outcomePrices"` // ídem
	ClobTokenIDs  string      `json:"clobTokenIds"`  // ídem
	BestBid       json.Number `json:"bestBid"`
	BestAsk       json.Number `json:"bestAsk"`
}

// GetMarkets devuelve hasta limit mercados activos ordenados por liquidez.
func (c *Client) GetMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	url := fmt.Sprintf("%s%s?active=true&closed=false&order=liquidity&ascending=false&limit=%d",
		c.gammaBase, gammaMarketsPath, limit)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
		return nil, fmt.Errorf("polymarket.GetMarkets: %w", err)
	}

	markets := make([]domain.Market, 0, len(resp))
	dropped := 0
	for _, gm := range resp {
		m, err := mapGammaMarket(gm)
		if err != nil {
			slog.Debug("dropping malformed market", "condition_id", gm.ConditionID, "err", err)
			dropped++
			continue
		}
		markets = append(markets, m)
	}

	slog.Debug("markets fetched", "total", len(markets), "dropped", dropped)
	return markets, nil
}

// GetPrices devuelve la cotización actual del outcome YES de un mercado.
func (c *Client) GetPrices(ctx context.Context, marketID string) (domain.PriceQuote, error) {
	url := fmt.Sprintf("%s%s?condition_ids=%s&limit=1", c.gammaBase, gammaMarketsPath, marketID)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("polymarket.GetPrices: %w", err)
	}
	if len(resp) == 0 {
		return domain.PriceQuote{}, fmt.Errorf("polymarket.GetPrices: market %s not found", marketID)
	}

	bid, _ := resp[0].BestBid.Float64()
	ask, _ := resp[0].BestAsk.Float64()
	mid := 0.0
	if bid > 0 && ask > 0 {
		mid = (bid + ask) / 2
	}
	return domain.PriceQuote{Bid: bid, Ask: ask, Mid: mid}, nil
}

// mapGammaMarket convierte el DTO raw a domain.Market.
// Devuelve error si los campos doblemente codificados no son parseables.
func mapGammaMarket(gm gammaMarket) (domain.Market, error) {
	if gm.ConditionID == "" {
		return domain.Market{}, fmt.Errorf("missing condition id")
	}

	var names, prices, tokenIDs []string
	if err := json.Unmarshal([]byte(gm.Outcomes), &names); err != nil {
		return domain.Market{}, fmt.Errorf("parse outcomes: %w", err)
	}
	if err := json.Unmarshal([]byte(gm.OutcomePrices), &prices); err != nil {
		return domain.Market{}, fmt.Errorf("parse outcome prices: %w", err)
	}
	if len(names) != len(prices) || len(names) == 0 {
		return domain.Market{}, fmt.Errorf("outcomes/prices mismatch: %d vs %d", len(names), len(prices))
	}
	// clobTokenIds puede faltar en mercados antiguos; no es fatal.
	if gm.ClobTokenIDs != "" {
		if err := json.Unmarshal([]byte(gm.ClobTokenIDs), &tokenIDs); err != nil {
			tokenIDs = nil
		}
	}

	m := domain.Market{
		ID:       gm.ConditionID,
		Question: gm.Question,
		Active:   gm.Active,
		Closed:   gm.Closed,
	}
	m.Liquidity, _ = gm.Liquidity.Float64()
	m.Volume, _ = gm.Volume.Float64()

	for i, name := range names {
		price, err := strconv.ParseFloat(prices[i], 64)
		if err != nil {
			return domain.Market{}, fmt.Errorf("parse price %q: %w", prices[i], err)
		}
		o := domain.Outcome{Name: name, Price: price}
		if i < len(tokenIDs) {
			o.ID = tokenIDs[i]
		}
		m.Outcomes = append(m.Outcomes, o)
	}

	return m, nil
}
