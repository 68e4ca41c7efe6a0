package handlers

import (
	"net/http"
	"strconv"

	"animagen/internal/httpkit"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListJobs returns recent submissions from the archive, newest first.
// Unlike the status endpoint this survives job document expiry.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpkit.WriteErr(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := h.archive.ListRecent(ctx, limit)
	if err != nil {
		h.log.FromContext(ctx).Error("archive list failed", "error", err.Error())
		httpkit.WriteErr(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "job history unavailable", nil)
		return
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  entries,
		"count": len(entries),
	})
}
