// Package analytics computes revenue, expense, profitability, trend and anomaly
// reports over a transaction store. All money arithmetic is done in decimal and
// converted to float only when a result is built.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/dvloznov/cashflow-insights/internal/store"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidGrouping is returned for a groupBy value the operation does not support.
	ErrInvalidGrouping = errors.New("invalid grouping")

	// ErrInvalidSensitivity is returned for a sensitivity outside low, medium and high.
	ErrInvalidSensitivity = errors.New("invalid sensitivity")

	// ErrMissingPlanID is returned when a plan-scoped operation gets no plan.
	ErrMissingPlanID = errors.New("plan ID is required")
)

// Engine runs analytics operations. It holds no mutable state, so a single
// Engine can serve concurrent callers.
type Engine struct {
	store store.TransactionStore
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for dashboard timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine reading from s.
func NewEngine(s store.TransactionStore, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{store: s, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Header is the period label and resolved range carried by every result.
type Header struct {
	Period    string          `json:"period"`
	DateRange daterange.Range `json:"dateRange"`
}

func newHeader(w daterange.Window) Header {
	return Header{Period: w.Period, DateRange: w.DateRange}
}

// GroupBucket is one entry of a grouped breakdown.
type GroupBucket struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// debug logs through the caller's context logger so request and tool fields carry over.
func (e *Engine) debug(ctx context.Context, op string, w daterange.Window) {
	log := logger.FromContext(ctx, e.log)
	log.Debug().
		Str("op", op).
		Time("start", w.DateRange.Start).
		Time("end", w.DateRange.End).
		Msg("running analytics")
}
