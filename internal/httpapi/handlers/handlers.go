// Package handlers implements the HTTP endpoints of the animagen API.
package handlers

import (
	"animagen/internal/archive"
	"animagen/internal/jobs"
	"animagen/internal/pipeline"
	"animagen/internal/pkg/logger"
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
}

type Handler struct {
	pipeline *pipeline.Service
	store    jobs.Store
	queue    queue.Queue
	archive  archive.Archive
	storage  storage.Provider
	log      *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		pipeline: d.Pipeline,
		store:    d.Store,
		queue:    d.Queue,
		archive:  d.Archive,
		storage:  d.Storage,
		log:      log.WithComponent("httpapi"),
	}
}
