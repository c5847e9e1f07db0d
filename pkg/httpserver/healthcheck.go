package httpserver

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck returns a handler usable for liveness and readiness probes.
// With no dependency probes it answers 200 "OK"; with probes it runs each
// under a short deadline and answers 503 on the first failure.
func HealthCheck(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, probe := range probes {
			if err := probe(ctx); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
