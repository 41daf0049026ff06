package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue はレジストリから指定メトリクスのカウンタ値を取得する。
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("success")
	c.RecordLogin("failure")
	c.RecordLogin("failure")
	c.RecordAuthzDenied()
	c.RecordMutation("create", "success")
	c.RecordMutation("delete", "failure")

	if got := counterValue(t, reg, "staffman_login_attempts_total", map[string]string{"result": "failure"}); got != 2 {
		t.Errorf("login failure count = %v, want 2", got)
	}
	if got := counterValue(t, reg, "staffman_login_attempts_total", map[string]string{"result": "success"}); got != 1 {
		t.Errorf("login success count = %v, want 1", got)
	}
	if got := counterValue(t, reg, "staffman_authz_denied_total", nil); got != 1 {
		t.Errorf("authz denied count = %v, want 1", got)
	}
	if got := counterValue(t, reg, "staffman_employee_mutations_total", map[string]string{"operation": "create", "result": "success"}); got != 1 {
		t.Errorf("create success count = %v, want 1", got)
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	handler := Middleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees/missing", nil))

	if got := counterValue(t, reg, "staffman_http_status_total", map[string]string{"status_code": "404"}); got != 1 {
		t.Errorf("status 404 count = %v, want 1", got)
	}
}

// WriteHeaderが呼ばれないレスポンスは200として記録されること
func TestMiddleware_DefaultStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	handler := Middleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := counterValue(t, reg, "staffman_http_status_total", map[string]string{"status_code": "200"}); got != 1 {
		t.Errorf("status 200 count = %v, want 1", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRequestLatency(10 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.Len() == 0 {
		t.Error("metrics body is empty")
	}
}
