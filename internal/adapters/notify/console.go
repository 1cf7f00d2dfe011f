package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador de consola. table=true imprime la tabla
// completa de oportunidades; false, un resumen de una línea.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyOpportunities imprime el ranking del ciclo en el modo configurado.
func (c *Console) NotifyOpportunities(_ context.Context, opps []domain.BettingOpportunity) error {
	if len(opps) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printTable(opps)
	} else {
		c.printCompact(opps)
	}
	return nil
}

// NotifyTrade imprime una línea por trade ejecutado o fallido.
func (c *Console) NotifyTrade(_ context.Context, t domain.Trade) error {
	mode := "LIVE"
	if t.Simulated {
		mode = "SIM"
	}

	switch t.Status {
	case domain.TradeFilled:
		fmt.Fprintf(c.out, "[%s] %s FILLED %s %s: %.2f shares @ %.3f ($%.2f) — %s\n",
			t.Timestamp.Format("15:04:05"), mode, t.Side, t.Outcome,
			t.Shares, t.Price, t.Total,
			domain.TruncateQuestion(t.Question, t.MarketID, 40))
	case domain.TradeFailed:
		fmt.Fprintf(c.out, "[%s] %s FAILED %s %s ($%.2f) — %s\n",
			t.Timestamp.Format("15:04:05"), mode, t.Side, t.Outcome, t.Total,
			domain.TruncateQuestion(t.Question, t.MarketID, 40))
	}
	return nil
}

// NotifySafetyStop imprime el banner de parada de emergencia.
func (c *Console) NotifySafetyStop(_ context.Context, reason string) error {
	fmt.Fprintf(c.out, "\n%s\n!! SAFETY STOP: %s\n!! Trading halted — restart required\n%s\n",
		strings.Repeat("=", 60), reason, strings.Repeat("=", 60))
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(opps []domain.BettingOpportunity) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d opportunities", time.Now().Format("15:04:05"), len(opps))

	shown := 0
	for _, opp := range opps {
		if shown >= 3 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s EV%+.2f c%.2f",
			opp.RecommendedBet,
			domain.TruncateQuestion(opp.Market.Question, opp.Market.ID, 25),
			opp.ExpectedValue, opp.Confidence)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printTable imprime la tabla completa de oportunidades.
func (c *Console) printTable(opps []domain.BettingOpportunity) {
	fmt.Fprintf(c.out, "\n[%s] %d opportunities\n", time.Now().Format("15:04:05"), len(opps))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Price", "Bet", "Strategy", "Pred", "Conf", "EV")

	for i, opp := range opps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			domain.TruncateQuestion(opp.Market.Question, opp.Market.ID, 38),
			fmt.Sprintf("%.3f", opp.Outcome.Price),
			string(opp.RecommendedBet),
			string(opp.Strategy),
			fmt.Sprintf("%.3f", opp.PredictedProbability),
			fmt.Sprintf("%.2f", opp.Confidence),
			fmt.Sprintf("%+.3f", opp.ExpectedValue),
		)
	}

	table.Render()
}
