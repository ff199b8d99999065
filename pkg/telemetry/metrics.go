package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chronora"

// Metrics, uygulamanın Prometheus collector'larını bir arada tutar.
//
// nil *Metrics güvenle kullanılabilir: tüm kayıt method'ları no-op olur.
// Servis testleri metrik kurmadan nil geçer.
type Metrics struct {
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	SessionEvents *prometheus.CounterVec
	SweptRows     *prometheus.CounterVec
	AIRequests    *prometheus.CounterVec
}

// NewMetrics, collector'ları oluşturur ve verilen registerer'a kaydeder.
// Testlerde prometheus.NewRegistry() geçilir; global registry kirlenmez.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events (created, rotated, invalidated, rotation_failed).",
		}, []string{"event", "reason"}),
		SweptRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_deleted_rows_total",
			Help:      "Rows removed by the expiry sweeper.",
		}, []string{"table"}),
		AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "AI assist calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.SessionEvents, m.SweptRows, m.AIRequests)
	return m
}

// ObserveHTTP, tamamlanan bir HTTP isteğini kaydeder.
// route, chi'nin route pattern'idir (ör: /api/posts/{postId}); ham path
// kullanılmaz, label kardinalitesi sınırlı kalır.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Session event isimleri.
const (
	SessionCreated        = "created"
	SessionRotated        = "rotated"
	SessionInvalidated    = "invalidated"
	SessionRotationFailed = "rotation_failed"
)

// SessionEvent, bir oturum olayını sayar. reason boş olabilir.
func (m *Metrics) SessionEvent(event, reason string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event, reason).Inc()
}

// SessionEventCount, aynı olaydan n adet sayar (toplu invalidation).
func (m *Metrics) SessionEventCount(event string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionEvents.WithLabelValues(event, "").Add(float64(n))
}

// Swept, sweeper'ın sildiği satır sayısını ekler.
func (m *Metrics) Swept(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SweptRows.WithLabelValues(table).Add(float64(n))
}

// AIRequest, bir AI çağrısının sonucunu sayar.
func (m *Metrics) AIRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(operation, outcome).Inc()
}
