package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSettlementMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSettlementMetrics(reg)

	metrics.ObserveWebhook("checkout.session.completed", "processed")
	metrics.ObserveWebhook("checkout.session.completed", "duplicate")
	metrics.ObserveTransfer("artist", "issued")
	metrics.ObserveSettlementDuration("checkout.session.completed", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "webhook_events_total", "outcome", "processed"); err != nil {
		t.Fatalf("fetch processed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected processed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payout_transfers_total", "recipient", "artist"); err != nil {
		t.Fatalf("fetch transfers: %v", err)
	} else if got != 1 {
		t.Fatalf("expected issued=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "settlement_duration_seconds", "event_type", "checkout.session.completed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestSettlementMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewSettlementMetrics(nil)
	metrics.ObserveWebhook("x", "y")
	metrics.ObserveTransfer("x", "y")
	metrics.ObserveSettlementDuration("x", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
