// Package metrics exposes prometheus instrumentation for the calibration and
// pricing engines. All collectors are registered on the default registry; the
// hosting process decides whether to serve them.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder handles metrics recording for curve calibration and CDS pricing
type Recorder struct {
	// Calibration metrics
	calibrationCounter   *prometheus.CounterVec
	calibrationLatency   prometheus.Histogram
	solverIterationsHist prometheus.Histogram
	curveNodesGauge      prometheus.Gauge

	// Pricing metrics
	pricingCounter *prometheus.CounterVec
	pricingLatency *prometheus.HistogramVec

	// Sensitivity metrics
	cs01Counter *prometheus.CounterVec
}

var (
	defaultRecorder *Recorder
	once            sync.Once
)

// GetRecorder returns the process-wide metrics recorder. Collectors are
// registered exactly once on the default prometheus registry.
func GetRecorder() *Recorder {
	once.Do(func() {
		defaultRecorder = &Recorder{
			calibrationCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "credit_calibrations_total",
					Help: "The total number of credit curve calibrations by outcome",
				},
				[]string{"status"},
			),
			calibrationLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "credit_calibration_latency_seconds",
					Help:    "Credit curve calibration latency distribution",
					Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
				},
			),
			solverIterationsHist: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "credit_solver_iterations",
					Help:    "Newton iterations taken per bootstrap pillar",
					Buckets: prometheus.LinearBuckets(1, 2, 15),
				},
			),
			curveNodesGauge: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "credit_curve_nodes",
					Help: "Node count of the most recently calibrated credit curve",
				},
			),
			pricingCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "credit_pricings_total",
					Help: "The total number of CDS pricing calls by kind",
				},
				[]string{"kind"},
			),
			pricingLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "credit_pricing_latency_seconds",
					Help:    "CDS pricing latency distribution by kind",
					Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
				},
				[]string{"kind"},
			),
			cs01Counter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "credit_cs01_calculations_total",
					Help: "The total number of CS01 calculations by calculator and shape",
				},
				[]string{"calculator", "shape"},
			),
		}
	})
	return defaultRecorder
}

// RecordCalibration records a calibration outcome and its duration
func (r *Recorder) RecordCalibration(status string, nodes int, duration time.Duration) {
	r.calibrationCounter.WithLabelValues(status).Inc()
	r.calibrationLatency.Observe(duration.Seconds())
	if nodes > 0 {
		r.curveNodesGauge.Set(float64(nodes))
	}
}

// RecordSolverIterations records the Newton iteration count for one pillar
func (r *Recorder) RecordSolverIterations(iterations int) {
	r.solverIterationsHist.Observe(float64(iterations))
}

// RecordPricing records a pricing call of the given kind (pv, par_spread, rpv01)
func (r *Recorder) RecordPricing(kind string, duration time.Duration) {
	r.pricingCounter.WithLabelValues(kind).Inc()
	r.pricingLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCS01 records a CS01 calculation
func (r *Recorder) RecordCS01(calculator, shape string) {
	r.cs01Counter.WithLabelValues(calculator, shape).Inc()
}
