package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.IncUpdates()
	c.IncUpdates()
	c.IncErrors()

	updates, errs := c.Snapshot()
	if updates != 2 || errs != 1 {
		t.Fatalf("unexpected snapshot: %d/%d", updates, errs)
	}
}

func TestHandlerOutput(t *testing.T) {
	c := NewCollector()
	c.IncUpdates()

	rec := httptest.NewRecorder()
	NewHandler(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "thesis_bot_updates_total 1") {
		t.Fatalf("unexpected metrics body: %s", body)
	}
	if !strings.Contains(body, "thesis_bot_errors_total 0") {
		t.Fatalf("unexpected metrics body: %s", body)
	}
}
