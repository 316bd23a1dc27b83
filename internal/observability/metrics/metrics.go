package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for the Instagram bot flow.
type BotMetrics struct {
	inboundTotal  *prometheus.CounterVec
	outboundTotal *prometheus.CounterVec
	replyLatency  *prometheus.HistogramVec
	llmCalls      *prometheus.CounterVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saloncrm",
			Subsystem: "bot",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound Instagram webhook messages",
		}, []string{"status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saloncrm",
			Subsystem: "bot",
			Name:      "outbound_total",
			Help:      "Total outbound Instagram sends",
		}, []string{"status", "kind"}),
		replyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "saloncrm",
			Subsystem: "bot",
			Name:      "reply_latency_seconds",
			Help:      "Latency of inbound message processing end to end",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saloncrm",
			Subsystem: "bot",
			Name:      "llm_calls_total",
			Help:      "Total LLM completion calls by provider",
		}, []string{"provider", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.replyLatency, m.llmCalls)
	return m
}

func (m *BotMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveOutbound(status, kind string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status, kind).Inc()
}

func (m *BotMetrics) ObserveReplyLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.WithLabelValues(status).Observe(seconds)
}

func (m *BotMetrics) ObserveLLMCall(provider, status string) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(provider, status).Inc()
}
