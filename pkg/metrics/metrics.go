package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标管理器，nil 接收者上的所有方法都是空操作
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP请求指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 存储指标
	storageOpsTotal *prometheus.CounterVec

	// 缓存指标
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	// 业务指标
	aiRequestsTotal     *prometheus.CounterVec
	sessionActionsTotal *prometheus.CounterVec
	activeSessions      prometheus.Gauge
	rateLimitDecisions  *prometheus.CounterVec
}

// NewMetrics 在给定的注册表上创建指标，reg 为 nil 时使用独立注册表
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		storageOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),

		cacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),
		cacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),

		aiRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "AI requests by operation and outcome (ok or fallback)",
			},
			[]string{"operation", "outcome"},
		),
		sessionActionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_actions_total",
				Help: "Actions recorded on user sessions by type",
			},
			[]string{"type"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_sessions",
				Help: "User sessions without an end time",
			},
		),
		rateLimitDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_decisions_total",
				Help: "Rate limiter decisions by route",
			},
			[]string{"route", "decision"},
		),
	}
}

// Handler prometheus 抓取端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer 返回底层注册表，测试中用于读取指标
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.gatherer }

// RecordHTTPRequest 记录HTTP请求指标
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordStorageOp 记录存储操作
func (m *Metrics) RecordStorageOp(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.storageOpsTotal.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHitsTotal.WithLabelValues(cache).Inc()
}

func (m *Metrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordAI 记录 AI 调用结果，outcome 为 ok 或 fallback
func (m *Metrics) RecordAI(operation, outcome string) {
	if m == nil {
		return
	}
	m.aiRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordSessionAction(actionType string) {
	if m == nil {
		return
	}
	m.sessionActionsTotal.WithLabelValues(actionType).Inc()
}

func (m *Metrics) SetActiveSessions(n int64) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// OnAllow 实现限流器的观察者接口
func (m *Metrics) OnAllow(route, _ string) {
	if m == nil {
		return
	}
	m.rateLimitDecisions.WithLabelValues(route, "allow").Inc()
}

func (m *Metrics) OnDeny(route, _ string) {
	if m == nil {
		return
	}
	m.rateLimitDecisions.WithLabelValues(route, "deny").Inc()
}
