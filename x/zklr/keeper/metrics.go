package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ZKLRMetrics holds all Prometheus metrics for the zklr module
type ZKLRMetrics struct {
	// Operation metrics
	OperationsTotal *prometheus.CounterVec

	// Penalty metrics
	PenaltiesTotal *prometheus.CounterVec
	SlashesTotal   prometheus.Counter
	SlashedAmount  prometheus.Counter

	// Vault metrics
	FeesCollected  prometheus.Counter
	TotalStaked    prometheus.Gauge
	TotalLiquidity prometheus.Gauge
	BonusesPaid    prometheus.Counter

	// Scoring metrics
	BandwidthPriority prometheus.Histogram
	SpeedMultiplier   prometheus.Histogram
}

var (
	zklrMetricsOnce sync.Once
	zklrMetrics     *ZKLRMetrics
)

// NewZKLRMetrics creates and registers zklr metrics (singleton pattern)
func NewZKLRMetrics() *ZKLRMetrics {
	zklrMetricsOnce.Do(func() {
		zklrMetrics = &ZKLRMetrics{
			OperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zklr",
					Subsystem: "engine",
					Name:      "operations_total",
					Help:      "Total number of settlement operations by outcome",
				},
				[]string{"operation", "status"},
			),
			PenaltiesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zklr",
					Subsystem: "penalty",
					Name:      "strikes_total",
					Help:      "Invalid submissions recorded against traders",
				},
				[]string{"reason"},
			),
			SlashesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zklr",
					Subsystem: "penalty",
					Name:      "slashes_total",
					Help:      "Total number of stake slashes applied",
				},
			),
			SlashedAmount: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zklr",
					Subsystem: "penalty",
					Name:      "slashed_amount_total",
					Help:      "Total stake forfeited to the fee collector",
				},
			),
			FeesCollected: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zklr",
					Subsystem: "vault",
					Name:      "fees_collected_total",
					Help:      "Total verification fees collected",
				},
			),
			TotalStaked: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "zklr",
					Subsystem: "vault",
					Name:      "total_staked",
					Help:      "Aggregate trader stake",
				},
			),
			TotalLiquidity: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "zklr",
					Subsystem: "vault",
					Name:      "total_liquidity",
					Help:      "Aggregate liquidity provided including bonuses",
				},
			),
			BonusesPaid: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zklr",
					Subsystem: "vault",
					Name:      "priority_bonus_total",
					Help:      "Total priority pool bonus credited",
				},
			),
			BandwidthPriority: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "zklr",
					Subsystem: "scoring",
					Name:      "effective_priority",
					Help:      "Distribution of allocated effective priorities",
					Buckets:   prometheus.ExponentialBuckets(1, 10, 12),
				},
			),
			SpeedMultiplier: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "zklr",
					Subsystem: "scoring",
					Name:      "speed_multiplier",
					Help:      "Distribution of speed multipliers from accepted proofs",
					Buckets:   []float64{0, 1, 2, 5, 10, 50, 100, 250, 500, 1000},
				},
			),
		}
	})
	return zklrMetrics
}

// GetZKLRMetrics returns the singleton metrics instance
func GetZKLRMetrics() *ZKLRMetrics {
	return NewZKLRMetrics()
}

func operationStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *ZKLRMetrics) observeOperation(op string, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(op, operationStatus(err)).Inc()
}

func (m *ZKLRMetrics) observeTotals(global globalTotals) {
	if m == nil {
		return
	}
	m.TotalStaked.Set(float64(global.staked))
	m.TotalLiquidity.Set(float64(global.liquidity))
}

type globalTotals struct {
	staked    uint64
	liquidity uint64
}
