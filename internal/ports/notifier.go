package ports

import (
	"context"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// Notifier presenta eventos del engine al usuario. Best-effort: los errores
// de notificación nunca afectan el control de flujo del engine.
type Notifier interface {
	// NotifyOpportunities muestra el ranking de oportunidades del ciclo.
	NotifyOpportunities(ctx context.Context, opps []domain.BettingOpportunity) error

	// NotifyTrade reporta un trade FILLED o FAILED.
	NotifyTrade(ctx context.Context, t domain.Trade) error

	// NotifySafetyStop reporta que el safety breaker detuvo el trading.
	NotifySafetyStop(ctx context.Context, reason string) error
}
