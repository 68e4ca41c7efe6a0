package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"animagen/internal/httpkit"
)

// GetStatus returns the current job document, merged with
// queue-observed progress for tasks the worker has not picked up yet.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job, err := h.pipeline.Status(r.Context(), jobID)
	if err != nil {
		httpkit.WriteError(w, err)
		return
	}

	httpkit.WriteJSON(w, http.StatusOK, job)
}
