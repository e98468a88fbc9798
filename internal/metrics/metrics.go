package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はPrometheusで公開するメトリクス。nilでも安全に呼べる
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	searches            *prometheus.CounterVec
	routeRequests       *prometheus.CounterVec
	routeDuration       prometheus.Histogram
	routeCache          *prometheus.CounterVec
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram
	activeSessions      prometheus.Gauge
}

// New はメトリクスを登録した新しいレジストリを作成する
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provmap",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests served",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "provmap",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests served",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provmap",
			Name:      "search_requests_total",
			Help:      "Debounced text searches by kind and outcome",
		}, []string{"kind", "outcome"}),
		routeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provmap",
			Name:      "route_requests_total",
			Help:      "Routing requests by outcome",
		}, []string{"outcome"}),
		routeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "provmap",
			Name:      "route_request_duration_seconds",
			Help:      "Duration of routing requests",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}),
		routeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provmap",
			Name:      "route_cache_lookups_total",
			Help:      "Route cache lookups by result",
		}, []string{"result"}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provmap",
			Name:      "dataset_loads_total",
			Help:      "Initial dataset loads by dataset and outcome",
		}, []string{"dataset", "outcome"}),
		datasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "provmap",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of the joint initial dataset load",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "provmap",
			Name:      "active_sessions",
			Help:      "Number of open map sessions",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.searches,
		m.routeRequests,
		m.routeDuration,
		m.routeCache,
		m.datasetLoads,
		m.datasetLoadDuration,
		m.activeSessions,
	)
	return m
}

// ObserveHTTPRequest は1リクエスト分を記録する
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveSearch は検索の送信・結果を記録する
func (m *Metrics) ObserveSearch(kind, outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind, outcome).Inc()
}

// ObserveRoute は経路リクエストの結果と所要時間を記録する
func (m *Metrics) ObserveRoute(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.routeRequests.WithLabelValues(outcome).Inc()
	m.routeDuration.Observe(elapsed.Seconds())
}

// ObserveRouteCache は経路キャッシュのヒット・ミスを記録する
func (m *Metrics) ObserveRouteCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.routeCache.WithLabelValues(result).Inc()
}

// ObserveDatasetLoad はデータセット1種類の読み込み結果を記録する
func (m *Metrics) ObserveDatasetLoad(dataset string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.datasetLoads.WithLabelValues(dataset, outcome).Inc()
}

// ObserveDatasetLoadDuration は初期読み込み全体の所要時間を記録する
func (m *Metrics) ObserveDatasetLoadDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.datasetLoadDuration.Observe(d.Seconds())
}

// SetActiveSessions は開いているセッション数を記録する
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Handler はレジストリをHTTPで公開する
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
