package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は収集済みメトリクスから名前とラベルが一致するものを探す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同一レジストリへの二重登録でpanicすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/expenses", 200, 50*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/expenses", 200, 70*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/expenses", 400, 10*time.Millisecond)

	ok := findMetric(t, reg, "kakeibo_http_requests_total", map[string]string{"method": "GET", "status_code": "200"})
	if got := ok.GetCounter().GetValue(); got != 2 {
		t.Errorf("GET 200 = %v, want 2", got)
	}

	latency := findMetric(t, reg, "kakeibo_http_request_duration_seconds", map[string]string{"route": "/api/expenses"})
	if got := latency.GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("sample count = %d, want 3", got)
	}
}

func TestRecordEntryCreated_ByType(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEntryCreated("income")
	c.RecordEntryCreated("savings")
	c.RecordEntryCreated("savings")

	m := findMetric(t, reg, "kakeibo_ledger_entries_created_total", map[string]string{"type": "savings"})
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("savings = %v, want 2", got)
	}
}

func TestRecordCategoriesSeeded_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCategoriesSeeded(34)
	c.RecordCategoriesSeeded(0)

	m := findMetric(t, reg, "kakeibo_categories_seeded_total", nil)
	if got := m.GetCounter().GetValue(); got != 34 {
		t.Errorf("seeded = %v, want 34", got)
	}
}

func TestRecordMail(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMailSent("contact_admin")
	c.RecordMailFailed("contact_reply")

	sent := findMetric(t, reg, "kakeibo_mail_sent_total", map[string]string{"kind": "contact_admin"})
	if got := sent.GetCounter().GetValue(); got != 1 {
		t.Errorf("sent = %v, want 1", got)
	}
	failed := findMetric(t, reg, "kakeibo_mail_failed_total", map[string]string{"kind": "contact_reply"})
	if got := failed.GetCounter().GetValue(); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
}

func TestRecordSignInAndSessionsCleaned(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignIn("guest")
	c.RecordSessionsCleaned(5)

	if got := findMetric(t, reg, "kakeibo_sign_ins_total", map[string]string{"provider": "guest"}).GetCounter().GetValue(); got != 1 {
		t.Errorf("sign_ins guest = %v, want 1", got)
	}
	if got := findMetric(t, reg, "kakeibo_sessions_cleaned_total", nil).GetCounter().GetValue(); got != 5 {
		t.Errorf("sessions_cleaned = %v, want 5", got)
	}
}
