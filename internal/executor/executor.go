package executor

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/alejandrodnm/polyagent/internal/domain"
	"github.com/alejandrodnm/polyagent/internal/ports"
	"github.com/alejandrodnm/polyagent/internal/scanner"
)

const (
	DefaultInterval    = 25 * time.Second
	DefaultTopN        = 10
	DefaultMaxTrades   = 2
	DefaultMarketLimit = 100
	defaultBankroll    = 1000.0
)

// State is the phase of the execution state machine.
type State string

const (
	StateIdle          State = "IDLE"
	StateRunning       State = "RUNNING"
	StateSafetyStopped State = "SAFETY_STOPPED"
)

// Config holds the execution controller settings.
type Config struct {
	// Interval between cycles. One extra cycle runs immediately at start.
	Interval time.Duration
	// TopN opportunities kept from each scan.
	TopN int
	// MaxTradesPerCycle caps how many top opportunities are executed per tick.
	MaxTradesPerCycle int
	// AutoExecute enables trading; false = scan-only.
	AutoExecute bool
	// LiveTrading attempts real orders. Falls back to simulation when the
	// executor has no credentials — never a silent no-op.
	LiveTrading bool
	// MarketLimit caps how many markets are fetched per cycle.
	MarketLimit int
	// DynamicLimits enables the drawdown throttle (risk.RecalculateLimits).
	DynamicLimits bool
	// Limits is the safety configuration, read-only within a cycle.
	Limits domain.SafetyLimits
	// Scanner is pushed to the scanner on UpdateConfig.
	Scanner scanner.Config
}

// Observer receives a full immutable AgentState snapshot after each
// portfolio-changing step of a cycle.
type Observer func(domain.AgentState)

// Executor is the execution-cycle controller: it runs the periodic
// scan → validate → size → trade → mark-to-market loop and owns all
// portfolio state. At most one cycle is ever in flight.
type Executor struct {
	markets  ports.MarketProvider
	trader   ports.OrderExecutor // may be nil (simulation only)
	scan     *scanner.Scanner
	notifier ports.Notifier       // may be nil
	store    ports.HistoryStorage // may be nil

	cfgMu sync.RWMutex
	cfg   Config

	stateMu sync.Mutex
	state   *domain.AgentState
	phase   State

	runMu   sync.Mutex // guards cancel/done transitions
	cancel  context.CancelFunc
	done    chan struct{}
	cycleMu sync.Mutex // at most one cycle in flight

	obsMu     sync.Mutex
	observers []Observer

	sim simulator
}

// New creates an executor seeded with the given bankroll.
func New(
	cfg Config,
	bankroll float64,
	markets ports.MarketProvider,
	trader ports.OrderExecutor,
	scan *scanner.Scanner,
	notifier ports.Notifier,
	store ports.HistoryStorage,
) *Executor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.MaxTradesPerCycle <= 0 {
		cfg.MaxTradesPerCycle = DefaultMaxTrades
	}
	if cfg.MarketLimit <= 0 {
		cfg.MarketLimit = DefaultMarketLimit
	}
	if bankroll <= 0 {
		bankroll = defaultBankroll
	}
	return &Executor{
		markets:  markets,
		trader:   trader,
		scan:     scan,
		notifier: notifier,
		store:    store,
		cfg:      cfg,
		state:    domain.NewAgentState(bankroll),
		phase:    StateIdle,
		sim:      newSimulator(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// Start transitions Idle → Running and launches the cycle loop: one
// immediate cycle, then one per interval. Restarting after a safety stop
// requires this explicit external call.
func (e *Executor) Start(ctx context.Context) error {
	e.runMu.Lock()
	if e.done != nil {
		select {
		case <-e.done:
			// The previous run already finished on its own (safety stop);
			// allow the explicit restart.
			e.cancel, e.done = nil, nil
		default:
			e.runMu.Unlock()
			return errors.New("executor.Start: already running")
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.runMu.Unlock()

	e.stateMu.Lock()
	e.phase = StateRunning
	e.state.IsRunning = true
	e.state.SafetyTriggered = false
	e.state.SafetyReason = ""
	e.stateMu.Unlock()

	slog.Info("executor starting",
		"interval", e.config().Interval,
		"auto_execute", e.config().AutoExecute,
		"live", e.config().LiveTrading,
	)

	go e.loop(ctx, done)
	return nil
}

// Stop is idempotent: it cancels the timer and leaves the last published
// state intact. In-flight trades are not rolled back.
func (e *Executor) Stop() {
	e.runMu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	e.stateMu.Lock()
	e.state.IsRunning = false
	if e.phase == StateRunning {
		e.phase = StateIdle
	}
	e.stateMu.Unlock()
	slog.Info("executor stopped")
}

// Subscribe registers a push observer for state snapshots.
func (e *Executor) Subscribe(fn Observer) {
	e.obsMu.Lock()
	e.observers = append(e.observers, fn)
	e.obsMu.Unlock()
}

// SetBankroll seeds the cash balance. Meant to be called before Start.
func (e *Executor) SetBankroll(amount float64) {
	e.stateMu.Lock()
	e.state.Bankroll = amount
	e.stateMu.Unlock()
}

// UpdateConfig hot-reloads configuration: limits and scanner settings
// propagate immediately without restarting the timer.
func (e *Executor) UpdateConfig(cfg Config) {
	e.cfgMu.Lock()
	if cfg.Interval <= 0 {
		cfg.Interval = e.cfg.Interval
	}
	if cfg.TopN <= 0 {
		cfg.TopN = e.cfg.TopN
	}
	if cfg.MaxTradesPerCycle <= 0 {
		cfg.MaxTradesPerCycle = e.cfg.MaxTradesPerCycle
	}
	if cfg.MarketLimit <= 0 {
		cfg.MarketLimit = e.cfg.MarketLimit
	}
	e.cfg = cfg
	e.cfgMu.Unlock()

	e.scan.UpdateConfig(cfg.Scanner)
	slog.Info("executor config updated")
}

// State returns a snapshot of the current agent state.
func (e *Executor) State() domain.AgentState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state.Snapshot()
}

// Phase returns the current state-machine phase.
func (e *Executor) Phase() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.phase
}

func (e *Executor) config() Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

// loop runs one immediate cycle and then one per tick until the context is
// cancelled (by Stop or by a safety stop).
func (e *Executor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.config().Interval)
	defer ticker.Stop()

	e.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick runs one cycle unless the previous one is still in flight, in which
// case the tick is skipped to avoid concurrent mutation of the portfolio.
func (e *Executor) tick(ctx context.Context) {
	if !e.cycleMu.TryLock() {
		slog.Debug("previous cycle still in flight, skipping tick")
		return
	}
	defer e.cycleMu.Unlock()

	if stop := e.runCycle(ctx); stop {
		e.runMu.Lock()
		if e.cancel != nil {
			e.cancel()
		}
		e.runMu.Unlock()
	}
}

// publish hands a deep snapshot to every observer.
func (e *Executor) publish() {
	e.stateMu.Lock()
	snap := e.state.Snapshot()
	e.stateMu.Unlock()

	e.obsMu.Lock()
	obs := append([]Observer(nil), e.observers...)
	e.obsMu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}
