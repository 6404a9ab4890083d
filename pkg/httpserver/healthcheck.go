package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/dmitrymomot/filevault/pkg/logger"
)

// Probe checks one dependency.
type Probe func(context.Context) error

// probeTimeout bounds each readiness probe.
const probeTimeout = 3 * time.Second

// LivenessHandler always answers 200 "ALIVE".
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	}
}

// ReadinessHandler runs every probe and answers 200 when all pass, 503
// otherwise. The body maps each probe name to true when healthy.
func ReadinessHandler(log *slog.Logger, probes map[string]Probe) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]bool, len(names))
		ready := true
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			err := probes[name](ctx)
			cancel()
			status[name] = err == nil
			if err != nil {
				ready = false
				log.ErrorContext(r.Context(), "readiness check failed", slog.String("dependency", name), logger.Error(err))
			}
		}

		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
