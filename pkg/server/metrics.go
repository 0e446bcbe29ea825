package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "imagegen"

// Metrics は生成エンドポイントの Prometheus 指標です。
// Router ごとに専用のレジストリを持ちます。
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	generateDuration *prometheus.HistogramVec
	imagesTotal      *prometheus.CounterVec
}

// NewMetrics は専用のレジストリに指標を登録して返します。
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "generate_requests_total",
				Help:      "Total number of generate requests by response status",
			},
			[]string{"status"},
		),
		generateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "generate_duration_seconds",
				Help:      "Backend generation latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
			},
			[]string{"model"},
		),
		imagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "images_generated_total",
				Help:      "Total number of images returned to clients",
			},
			[]string{"model"},
		),
	}
}

// Handler は /metrics 用のハンドラを返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeStatus(status int) {
	m.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeGeneration(model string, elapsed time.Duration, images int) {
	m.generateDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	m.imagesTotal.WithLabelValues(model).Add(float64(images))
}
