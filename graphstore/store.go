// Package graphstore implements the Graph Store: the single
// published-graph singleton. Publication is an atomic reference swap
// guarded by a mutex; readers that already hold the old graph keep
// observing it until they finish.
package graphstore

import (
	"sync"
	"time"

	"github.com/sakhatransit/routeengine/graph"
)

// Store owns exactly one active graph at a time.
type Store struct {
	mu     sync.RWMutex
	active *graph.Graph
	meta   graph.Metadata
}

// New returns an empty Store with no active graph.
func New() *Store {
	return &Store{}
}

// Get returns the currently published graph without copying. The returned
// pointer remains valid and unmutated even if a concurrent Publish happens
// afterward, since Publish only ever swaps the Store's own pointer.
func (s *Store) Get() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Stats returns the metadata of the currently published graph.
func (s *Store) Stats() graph.Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// Publish atomically replaces the active graph and its metadata. The node
// and edge counts are taken from g, so Stats always agrees with Get.
func (s *Store) Publish(g *graph.Graph, meta graph.Metadata) {
	if g != nil {
		meta.NodeCount = g.NodeCount()
		meta.EdgeCount = g.EdgeCount()
	}
	meta.BuildTimestamp = timeOrNow(meta.BuildTimestamp)
	meta.Active = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = g
	s.meta = meta
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
