package domain

// PriceQuote es la cotización actual de un outcome.
type PriceQuote struct {
	Bid float64
	Ask float64
	Mid float64
}

// OrderRequest se envía al ejecutor de órdenes externo.
type OrderRequest struct {
	TokenID string
	Side    BetSide
	Size    float64 // USD
	Price   float64 // 0 = orden a mercado
}

// OrderResult es la respuesta del ejecutor externo.
type OrderResult struct {
	Success bool
	OrderID string
	Error   string
}
