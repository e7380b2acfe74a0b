package app

import (
	"strconv"

	"github.com/calehh/capsule-app/tx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "capsule"

type Metrics struct {
	TxResults   *prometheus.CounterVec
	CheckTxs    *prometheus.CounterVec
	BlockHeight prometheus.Gauge
	BlockTxs    prometheus.Histogram
}

// NewMetrics registers the app metrics with reg. A nil reg keeps them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TxResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tx_results_total",
			Help:      "Transactions executed in finalized blocks by type and result code.",
		}, []string{"type", "code"}),
		CheckTxs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "check_txs_total",
			Help:      "CheckTx calls by result code.",
		}, []string{"code"}),
		BlockHeight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "block_height",
			Help:      "Height of the last finalized block.",
		}),
		BlockTxs: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "block_txs",
			Help:      "Transactions per finalized block.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		}),
	}
}

func (m *Metrics) observeTx(tp tx.TxType, code uint32) {
	m.TxResults.WithLabelValues(tp.String(), strconv.FormatUint(uint64(code), 10)).Inc()
}

func (m *Metrics) observeCheckTx(code uint32) {
	m.CheckTxs.WithLabelValues(strconv.FormatUint(uint64(code), 10)).Inc()
}
