package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Collector считает обработанные обновления и ошибки.
type Collector struct {
	updates uint64
	errors  uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncUpdates() {
	atomic.AddUint64(&c.updates, 1)
}

func (c *Collector) IncErrors() {
	atomic.AddUint64(&c.errors, 1)
}

func (c *Collector) Snapshot() (uint64, uint64) {
	return atomic.LoadUint64(&c.updates), atomic.LoadUint64(&c.errors)
}

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var updates uint64
	var errors uint64
	if h.collector != nil {
		updates, errors = h.collector.Snapshot()
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = fmt.Fprintf(w, "# HELP thesis_bot_updates_total Total number of handled Telegram updates.\n")
	_, _ = fmt.Fprintf(w, "# TYPE thesis_bot_updates_total counter\n")
	_, _ = fmt.Fprintf(w, "thesis_bot_updates_total %d\n", updates)
	_, _ = fmt.Fprintf(w, "# HELP thesis_bot_errors_total Total number of update handling errors.\n")
	_, _ = fmt.Fprintf(w, "# TYPE thesis_bot_errors_total counter\n")
	_, _ = fmt.Fprintf(w, "thesis_bot_errors_total %d\n", errors)
}
