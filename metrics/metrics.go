package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	def "github.com/lovelydayss/miniredis/interface"
)

const namespace = "miniredis"

// 错误类型标签
const (
	ErrKindProtocol  = "protocol"
	ErrKindMalformed = "malformed"
	ErrKindUnknown   = "unknown_command"
	ErrKindArgs      = "arguments"
)

// StoreStats 存储统计信息来源
type StoreStats interface {
	Len() int
	Capacity() int
}

// Metrics 服务监控指标
type Metrics struct {
	registry *prometheus.Registry

	commands   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	connActive prometheus.Gauge
	connTotal  prometheus.Counter
}

// NewMetrics 初始化并注册到独立的 registry
func NewMetrics(store StoreStats) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command name.",
		}, []string{"command"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Requests answered with an error reply, by error kind.",
		}, []string{"kind"}),
		connActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Currently open client connections.",
		}),
		connTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Client connections accepted since start.",
		}),
	}

	m.registry.MustRegister(
		m.commands,
		m.errors,
		m.connActive,
		m.connTotal,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_keys",
			Help:      "Keys held by the store, including expired keys not yet evicted.",
		}, func() float64 { return float64(store.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_capacity",
			Help:      "Slots allocated by the store hash table.",
		}, func() float64 { return float64(store.Capacity()) }),
		collectors.NewGoCollector(),
	)

	return m
}

// CommandProcessed 记录一次指令执行
func (m *Metrics) CommandProcessed(cmd def.CmdType) {
	m.commands.WithLabelValues(cmd.String()).Inc()
}

// CommandFailed 记录一次错误回包
func (m *Metrics) CommandFailed(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// ConnOpened 连接建立
func (m *Metrics) ConnOpened() {
	m.connTotal.Inc()
	m.connActive.Inc()
}

// ConnClosed 连接断开
func (m *Metrics) ConnClosed() {
	m.connActive.Dec()
}

// Registry 指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理函数
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
