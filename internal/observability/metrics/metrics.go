package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters for the inbound message pipeline.
type WebhookMetrics struct {
	processedTotal *prometheus.CounterVec
	llmFailures    *prometheus.CounterVec
	sendFailures   prometheus.Counter
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		processedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "webhook",
			Name:      "inbound_processed_total",
			Help:      "Inbound webhook messages by pipeline outcome",
		}, []string{"outcome"}),
		llmFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "llm",
			Name:      "call_failures_total",
			Help:      "LLM calls that fell back to defaults",
		}, []string{"stage"}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "whatsapp",
			Name:      "send_failures_total",
			Help:      "Outbound sends reported as not delivered",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.processedTotal, m.llmFailures, m.sendFailures)
	return m
}

// ObserveProcessed records one pipeline run by outcome
// (replied, escalated, ignored, failed).
func (m *WebhookMetrics) ObserveProcessed(outcome string) {
	if m == nil {
		return
	}
	m.processedTotal.WithLabelValues(outcome).Inc()
}

// ObserveLLMFailure records a classification or summarization fallback.
func (m *WebhookMetrics) ObserveLLMFailure(stage string) {
	if m == nil {
		return
	}
	m.llmFailures.WithLabelValues(stage).Inc()
}

// ObserveSendFailure records an outbound send that was not delivered.
func (m *WebhookMetrics) ObserveSendFailure() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}
