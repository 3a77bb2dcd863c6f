package sweeper

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/orderflow/internal/checkout/usecase/command"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/pkg/logger"
)

// Report summarizes one sweep run
type Report struct {
	Scanned   int
	Abandoned int
	Cancelled int
}

// Sweeper periodically cancels orders stuck in PENDING past the staleness
// threshold, restoring their reserved stock
type Sweeper struct {
	orders    orderdomain.OrderRepository
	cancel    *command.CancelOrderHandler
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time

	scannedTotal   prometheus.Counter
	abandonedTotal prometheus.Counter
	cancelledTotal prometheus.Counter
	runErrorsTotal prometheus.Counter
}

// New creates a sweeper with the given interval and staleness threshold.
// Metrics are registered on the given registerer.
func New(orders orderdomain.OrderRepository, cancel *command.CancelOrderHandler, interval, threshold time.Duration, reg prometheus.Registerer) *Sweeper {
	scannedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_sweeper_scanned_total",
		Help: "Total number of pending orders inspected by the sweeper",
	})
	abandonedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_sweeper_abandoned_total",
		Help: "Total number of orders identified as abandoned",
	})
	cancelledTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_sweeper_cancelled_total",
		Help: "Total number of abandoned orders successfully cancelled",
	})
	runErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_sweeper_run_errors_total",
		Help: "Total number of sweep runs that failed",
	})

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(scannedTotal, abandonedTotal, cancelledTotal, runErrorsTotal)

	return &Sweeper{
		orders:         orders,
		cancel:         cancel,
		interval:       interval,
		threshold:      threshold,
		now:            time.Now,
		scannedTotal:   scannedTotal,
		abandonedTotal: abandonedTotal,
		cancelledTotal: cancelledTotal,
		runErrorsTotal: runErrorsTotal,
	}
}

// Start runs the sweep loop until the context is cancelled. A failed run
// never stops the ticker.
func (s *Sweeper) Start(ctx context.Context) {
	logger.Logger.Info().
		Dur("interval", s.interval).
		Dur("threshold", s.threshold).
		Msg("Abandoned-order sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info().Msg("Abandoned-order sweeper stopped")
			return
		case <-ticker.C:
			s.runSafe(ctx)
		}
	}
}

// runSafe wraps one run so that neither an error nor a panic can crash
// the scheduler.
func (s *Sweeper) runSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.runErrorsTotal.Inc()
			logger.Logger.Error().
				Interface("panic", r).
				Msg("Sweep run panicked")
		}
	}()

	if _, err := s.RunOnce(ctx); err != nil {
		s.runErrorsTotal.Inc()
		logger.Error(ctx).Err(err).Msg("Sweep run failed")
	}
}

// RunOnce executes a single sweep and reports its counts. Orders exactly
// at the threshold age are kept; only strictly older ones are cancelled.
// Each qualifying order is handled independently.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	var report Report

	pending, err := s.orders.FindPendingWithItems()
	if err != nil {
		return report, err
	}

	report.Scanned = len(pending)
	s.scannedTotal.Add(float64(len(pending)))

	now := s.now()
	for i := range pending {
		order := &pending[i]
		if now.Sub(order.CreatedAt) <= s.threshold {
			continue
		}
		report.Abandoned++
		s.abandonedTotal.Inc()

		note := "cancelled by abandoned-order sweeper"
		if err := s.cancel.Handle(ctx, order, note, stockdomain.ReasonOrderAbandoned); err != nil {
			logger.Error(ctx).
				Err(err).
				Str("order_public_id", order.PublicID).
				Msg("Failed to cancel abandoned order")
			continue
		}
		report.Cancelled++
		s.cancelledTotal.Inc()
	}

	if report.Abandoned > 0 || report.Scanned > 0 {
		logger.Info(ctx).
			Int("scanned", report.Scanned).
			Int("abandoned", report.Abandoned).
			Int("cancelled", report.Cancelled).
			Msg("Sweep run completed")
	}

	return report, nil
}
