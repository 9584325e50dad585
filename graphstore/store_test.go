package graphstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatransit/routeengine/graph"
)

func TestStore_GetBeforePublishIsNil(t *testing.T) {
	s := New()
	assert.Nil(t, s.Get())
}

func TestStore_PublishMakesGraphReadable(t *testing.T) {
	s := New()
	g := graph.New()
	g.AddNode(graph.Node{ID: "a"})

	s.Publish(g, graph.Metadata{DatasetVersion: "v1"})

	got := s.Get()
	require.NotNil(t, got)
	assert.True(t, got.HasNode("a"))
	assert.Equal(t, "v1", s.Stats().DatasetVersion)
	assert.True(t, s.Stats().Active)
}

func TestStore_PublishSupersedesPredecessor(t *testing.T) {
	s := New()
	g1 := graph.New()
	g1.AddNode(graph.Node{ID: "a"})
	s.Publish(g1, graph.Metadata{DatasetVersion: "v1"})

	held := s.Get()

	g2 := graph.New()
	g2.AddNode(graph.Node{ID: "b"})
	s.Publish(g2, graph.Metadata{DatasetVersion: "v2"})

	assert.True(t, held.HasNode("a"), "a reader holding the old graph still sees it unmodified")
	assert.True(t, s.Get().HasNode("b"))
	assert.Equal(t, "v2", s.Stats().DatasetVersion)
}

func TestStore_StatsReachableEdgesMatchGet(t *testing.T) {
	s := New()
	g := graph.New()
	g.AddNode(graph.Node{ID: "a"})
	g.AddNode(graph.Node{ID: "b"})
	g.AddEdge(graph.Edge{FromStopID: "a", ToStopID: "b", Weight: 10})

	s.Publish(g, graph.Metadata{})

	stats := s.Stats()
	reachable := s.Get().EdgeCount()
	assert.Equal(t, 1, stats.EdgeCount, "published stats count the same edges Get exposes")
	assert.Equal(t, 1, reachable)
}

func TestStore_ConcurrentReadsDuringPublish(t *testing.T) {
	s := New()
	g := graph.New()
	g.AddNode(graph.Node{ID: "a"})
	s.Publish(g, graph.Metadata{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Get()
			_ = s.Stats()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		g2 := graph.New()
		g2.AddNode(graph.Node{ID: "b"})
		s.Publish(g2, graph.Metadata{})
	}()
	wg.Wait()
}
