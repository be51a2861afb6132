// Package metrics はリモート API 呼び出しの Prometheus 計測を提供します。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder は API 呼び出しの結果を記録します。
type Recorder interface {
	ObserveRequest(route, method string, status int, duration time.Duration)
	ObserveRetry(route string)
}

// Metrics は API 呼び出しの計測値を保持します。
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	retries  *prometheus.CounterVec
}

// New は reg に計測値を登録します。reg が nil の場合は既定のレジストリを使います。
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total remote API requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Remote API request latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Total retried remote API requests by route.",
		}, []string{"route"}),
	}
}

// ObserveRequest は一回の呼び出しを記録します。応答がなかった場合の status は 0 です。
func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(route, method, label).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// ObserveRetry は再試行を記録します。
func (m *Metrics) ObserveRetry(route string) {
	m.retries.WithLabelValues(route).Inc()
}

// Nop は何も記録しない Recorder です。
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
func (Nop) ObserveRetry(string)                               {}
