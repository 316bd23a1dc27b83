package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBotMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)
	m.ObserveInbound("ok")
	m.ObserveInbound("ok")
	m.ObserveOutbound("sent", "reply")
	m.ObserveReplyLatency("ok", 0.5)
	m.ObserveLLMCall("gemini", "ok")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	inbound, ok := byName["saloncrm_bot_inbound_webhook_total"]
	if !ok {
		t.Fatalf("inbound counter not registered")
	}
	if got := inbound.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected inbound count 2, got %v", got)
	}

	if _, ok := byName["saloncrm_bot_llm_calls_total"]; !ok {
		t.Fatalf("llm counter not registered")
	}
	latency, ok := byName["saloncrm_bot_reply_latency_seconds"]
	if !ok {
		t.Fatalf("latency histogram not registered")
	}
	if got := latency.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("expected one latency sample, got %d", got)
	}
}

func TestBotMetricsNilSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveInbound("ok")
	m.ObserveOutbound("sent", "reply")
	m.ObserveReplyLatency("ok", 0.1)
	m.ObserveLLMCall("bedrock", "error")
}
