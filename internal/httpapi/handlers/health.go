package handlers

import (
	"context"
	"net/http"
	"time"

	"animagen/internal/httpkit"
)

// Health reports service liveness. With ?deep=true it also pings the
// job store, the queue, the archive, and artifact storage.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	health := map[string]any{
		"status":  "ok",
		"service": "animagen-api",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					log.Warn("health check degraded", "checks", checks)
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) deepHealthCheck(ctx context.Context) map[string]any {
	checks := make(map[string]any)
	checks["store"] = h.check(ctx, h.store.Ping)
	checks["queue"] = h.check(ctx, h.queue.Ping)
	checks["storage"] = h.check(ctx, h.storage.Ping)
	if h.archive != nil {
		checks["archive"] = h.check(ctx, h.archive.Ping)
	}
	return checks
}

func (h *Handler) check(ctx context.Context, ping func(context.Context) error) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}
