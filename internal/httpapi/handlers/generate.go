package handlers

import (
	"net/http"

	"animagen/internal/httpkit"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// PostGenerate accepts a prompt and returns the queued job document.
// The response is 202: the render happens asynchronously and the
// client polls the status endpoint.
func (h *Handler) PostGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	var req generateRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", nil)
		return
	}

	job, err := h.pipeline.Submit(ctx, req.Prompt)
	if err != nil {
		log.Warn("submission rejected", "error", err.Error())
		httpkit.WriteError(w, err)
		return
	}

	httpkit.WriteJSON(w, http.StatusAccepted, job)
}
