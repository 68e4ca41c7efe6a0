package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"animagen/internal/httpkit"
	"animagen/internal/jobs"
)

// StreamVideo serves a rendered artifact. The URL path is the job's
// outputRef, so the file name is always "<jobId>.mp4".
func (h *Handler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	file := chi.URLParam(r, "file")

	jobID := strings.TrimSuffix(file, ".mp4")
	if jobID == "" || jobID == file || strings.ContainsAny(jobID, "/\\.") {
		httpkit.WriteErr(w, http.StatusNotFound, "NOT_FOUND", "no such video", map[string]any{"file": file})
		return
	}

	rc, ct, size, err := h.storage.GetObject(ctx, jobs.ArtifactKey(jobID))
	if err != nil {
		httpkit.WriteErr(w, http.StatusNotFound, "NOT_FOUND", "no such video", map[string]any{"file": file})
		return
	}
	defer rc.Close()

	if ct == "" {
		ct = "video/mp4"
	}
	w.Header().Set("Content-Type", ct)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	_, _ = io.Copy(w, rc)
}
