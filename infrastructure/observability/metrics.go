// Package observability exposes Prometheus metrics for the ledger and games.
package observability

import (
	"context"
	"net/http"
	"time"

	"casino/domain/entities"
	"casino/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Collector records ledger signals and wager outcomes. It satisfies the
// ledger's observer interface.
type Collector struct {
	wagers              *prometheus.CounterVec
	wagered             *prometheus.CounterVec
	paid                *prometheus.CounterVec
	balanceTransactions *prometheus.CounterVec
	versionConflicts    *prometheus.CounterVec
	retriesExhausted    *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		wagers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: WagersTotal,
			Help: "Resolved wagers by game and outcome",
		}, []string{LabelGame, LabelOutcome}),
		wagered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: WageredAmountTotal,
			Help: "Total amount staked by game",
		}, []string{LabelGame}),
		paid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PaidAmountTotal,
			Help: "Total amount paid out by game",
		}, []string{LabelGame}),
		balanceTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: BalanceTransactionsTotal,
			Help: "Committed balance movements by transaction type",
		}, []string{LabelTransactionType}),
		versionConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VersionConflictsTotal,
			Help: "Conditional saves that lost a version race",
		}, []string{LabelOperation}),
		retriesExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RetriesExhaustedTotal,
			Help: "Ledger operations that gave up after repeated conflicts",
		}, []string{LabelOperation}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    OperationDuration,
			Help:    "Ledger operation latency including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{LabelOperation, LabelResult}),
	}

	reg.MustRegister(
		c.wagers,
		c.wagered,
		c.paid,
		c.balanceTransactions,
		c.versionConflicts,
		c.retriesExhausted,
		c.operationDuration,
	)
	return c
}

// VersionConflict counts a lost conditional save
func (c *Collector) VersionConflict(operation string) {
	c.versionConflicts.WithLabelValues(operation).Inc()
}

// RetriesExhausted counts an operation that gave up
func (c *Collector) RetriesExhausted(operation string) {
	c.retriesExhausted.WithLabelValues(operation).Inc()
}

// OperationFinished observes the latency of an operation under its error kind
func (c *Collector) OperationFinished(operation string, duration time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = string(entities.KindOf(err))
	}
	c.operationDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}

// RecordWager counts a resolved wager
func (c *Collector) RecordWager(game entities.GameKind, outcome entities.Outcome, bet, payout int64) {
	c.wagers.WithLabelValues(string(game), string(outcome)).Inc()
	c.wagered.WithLabelValues(string(game)).Add(float64(bet))
	c.paid.WithLabelValues(string(game)).Add(float64(payout))
}

// RecordBalanceChange counts a committed balance movement
func (c *Collector) RecordBalanceChange(tt entities.TransactionType) {
	c.balanceTransactions.WithLabelValues(string(tt)).Inc()
}

// Subscribe feeds committed events from bus into the collector
func (c *Collector) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeWagerResolved, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.WagerResolvedEvent)
		if !ok {
			log.WithField("eventType", event.Type()).Warn("Unexpected event payload")
			return
		}
		c.RecordWager(e.Game, e.Outcome, e.Bet, e.Payout)
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.BalanceChangeEvent)
		if !ok {
			log.WithField("eventType", event.Type()).Warn("Unexpected event payload")
			return
		}
		c.RecordBalanceChange(e.TransactionType)
	})
}

// Handler returns the HTTP handler for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
