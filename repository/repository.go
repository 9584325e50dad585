// Package repository declares the pluggable persistence and cache
// boundaries. The relational store, the cache, and the upstream provider
// are deliberately not implemented here; storepg, storecache, and
// upstream satisfy these interfaces.
package repository

import (
	"context"
	"time"

	"github.com/sakhatransit/routeengine/dataset"
)

// StopRepository persists and lists Stop records.
type StopRepository interface {
	SaveAll(ctx context.Context, stops []dataset.Stop) error
	ListByKind(ctx context.Context, virtual bool) ([]dataset.Stop, error)
}

// RouteRepository persists and lists Route records.
type RouteRepository interface {
	SaveAll(ctx context.Context, routes []dataset.Route) error
	ListByKind(ctx context.Context, virtual bool) ([]dataset.Route, error)
}

// FlightRepository persists Flight records and reports counts.
type FlightRepository interface {
	SaveAll(ctx context.Context, flights []dataset.Flight) error
	CountWithVirtual(ctx context.Context, virtual bool) (int, error)
}

// DatasetRepository manages Dataset rows and which one is active.
type DatasetRepository interface {
	GetLatest(ctx context.Context) (dataset.Dataset, bool, error)
	Save(ctx context.Context, d dataset.Dataset) error
	Delete(ctx context.Context, version string) error
	SetActive(ctx context.Context, version string) error
}

// GraphMetadata is the persisted counterpart of graph.Metadata, named
// separately so storepg does not need to import the graph package for a
// handful of scalar fields.
type GraphMetadata struct {
	Version        string
	NodeCount      int
	EdgeCount      int
	BuildTimestamp time.Time
	Active         bool
}

// GraphRepository persists serialized graph snapshots and their metadata.
type GraphRepository interface {
	SaveGraph(ctx context.Context, version string, payload []byte) error
	SetActiveGraphMetadata(ctx context.Context, meta GraphMetadata) error
	GetGraphMetadata(ctx context.Context, version string) (GraphMetadata, bool, error)
	DeleteGraph(ctx context.Context, version string) error
	GetGraphVersion(ctx context.Context) (string, bool, error)
}

// CacheRepository is the key/value cache boundary, backed by
// storecache's Redis implementation.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) error
}
