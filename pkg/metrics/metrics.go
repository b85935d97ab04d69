// Package metrics 基于Prometheus的指标收集
//
// # 指标分类
//
// 1. HTTP指标：请求总数、耗时分布、进行中的请求数（由middleware.Metrics记录）
// 2. 借阅指标：借出、归还、续借、失败原因、罚金分布
// 3. 缓存与熔断指标：图书详情缓存命中率、Redis熔断器状态
//
// # 命名规范
//
//   - Counter以`_total`结尾
//   - Histogram以单位结尾（`_seconds`）
//   - 标签只使用有限取值（method、status、reason），不要把借阅人邮箱放进标签
//
// # 使用示例
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.RecordLoanCreated()
//	metrics.RecordLoanFailure("limit_exceeded")
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

var (
	initOnce sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/v1/loans/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// LoansCreatedTotal 借出成功次数
	LoansCreatedTotal prometheus.Counter

	// LoanFailuresTotal 借阅操作被业务规则拒绝的次数
	// 标签：reason（unavailable/limit_exceeded/already_returned/already_renewed/not_found）
	LoanFailuresTotal *prometheus.CounterVec

	// LoansReturnedTotal 归还次数，标签late=true|false
	LoansReturnedTotal *prometheus.CounterVec

	// LoansRenewedTotal 续借次数
	LoansRenewedTotal prometheus.Counter

	// PenaltyAmount 归还时产生的罚金分布（只统计大于0的）
	PenaltyAmount prometheus.Histogram

	// CacheRequestsTotal 图书详情缓存请求，标签result=hit|miss|error
	CacheRequestsTotal *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求，标签name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec
)

// InitMetrics 注册全部指标（重复调用安全）
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	LoansCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_created_total",
			Help:      "借出成功次数",
		},
	)

	LoanFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_failures_total",
			Help:      "借阅操作被拒绝次数",
		},
		[]string{"reason"},
	)

	LoansReturnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_returned_total",
			Help:      "归还次数",
		},
		[]string{"late"},
	)

	LoansRenewedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_renewed_total",
			Help:      "续借次数",
		},
	)

	PenaltyAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "penalty_amount",
			Help:      "逾期罚金金额",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 25, 50},
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "图书详情缓存请求",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求总数",
		},
		[]string{"name", "result"},
	)
}

// =========================================
// 通用辅助函数
// =========================================

func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// =========================================
// 业务埋点（内部保证已初始化）
// =========================================

// RecordLoanCreated 借出成功
func RecordLoanCreated() {
	InitMetrics()
	IncCounter(LoansCreatedTotal)
}

// RecordLoanFailure 借阅操作被业务规则拒绝
func RecordLoanFailure(reason string) {
	InitMetrics()
	IncCounterVec(LoanFailuresTotal, map[string]string{"reason": reason})
}

// RecordLoanReturned 归还，罚金大于0时同时记录分布
func RecordLoanReturned(penalty float64) {
	InitMetrics()
	late := penalty > 0
	IncCounterVec(LoansReturnedTotal, map[string]string{"late": strconv.FormatBool(late)})
	if late {
		ObserveHistogram(PenaltyAmount, penalty)
	}
}

// RecordLoanRenewed 续借成功
func RecordLoanRenewed() {
	InitMetrics()
	IncCounter(LoansRenewedTotal)
}

// RecordCache 缓存访问结果：hit | miss | error
func RecordCache(result string) {
	InitMetrics()
	IncCounterVec(CacheRequestsTotal, map[string]string{"result": result})
}

// RecordBreaker 熔断器请求结果与当前状态
func RecordBreaker(name, result string, state int) {
	InitMetrics()
	IncCounterVec(CircuitBreakerRequests, map[string]string{"name": name, "result": result})
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": name}, float64(state))
}
