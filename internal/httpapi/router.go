// Package httpapi wires the HTTP routes of the animagen API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"animagen/internal/archive"
	"animagen/internal/httpapi/handlers"
	"animagen/internal/httpkit"
	"animagen/internal/jobs"
	"animagen/internal/pipeline"
	"animagen/internal/pkg/logger"
	"animagen/internal/pkg/middleware"
	"animagen/internal/queue"
	"animagen/internal/storage"
)

type Deps struct {
	Pipeline *pipeline.Service
	Store    jobs.Store
	Queue    queue.Queue
	Archive  archive.Archive
	Storage  storage.Provider
	Log      *logger.Logger

	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAgeSeconds:  600,
	}))

	h := handlers.New(handlers.Deps{
		Pipeline: d.Pipeline,
		Store:    d.Store,
		Queue:    d.Queue,
		Archive:  d.Archive,
		Storage:  d.Storage,
		Log:      log,
	})

	r.Get("/health", h.Health)

	r.Post("/api/generate", h.PostGenerate)
	r.Get("/api/status/{jobId}", h.GetStatus)

	r.Get("/videos/{file}", h.StreamVideo)
	r.Get("/jobs", h.ListJobs)

	return r
}
