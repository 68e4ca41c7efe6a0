package storage

import "animagen/internal/ports"

// Provider is the artifact storage contract shared by the API and the
// render worker. It aliases ports.StorageProvider to keep call-sites
// simple.
type Provider = ports.StorageProvider

type (
	PutObjectInput  = ports.PutObjectInput
	PutObjectOutput = ports.PutObjectOutput
)
