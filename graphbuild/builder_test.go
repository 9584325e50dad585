package graphbuild

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatransit/routeengine/dataset"
)

func stop(id, cityKey string, virtual bool) dataset.Stop {
	return dataset.Stop{ID: id, Name: id, CityKey: cityKey, Virtual: virtual, HasCoords: true}
}

func TestBuild_WeightCascade_FallsBackTo60(t *testing.T) {
	ds := dataset.Dataset{
		Stops: []dataset.Stop{stop("a", "якутск", false), stop("b", "мирный", false)},
		Routes: []dataset.Route{
			{ID: "r1", StopIDs: []string{"a", "b"}, Kind: dataset.TransportBus},
		},
	}

	res, err := New().Build(ds)
	require.NoError(t, err)

	edges := res.Graph.Edges("a")
	require.Len(t, edges, 1)
	assert.Equal(t, 60.0, edges[0].Weight)
}

func TestBuild_WeightCascade_BasePriceConversion(t *testing.T) {
	ds := dataset.Dataset{
		Stops: []dataset.Stop{stop("a", "якутск", false), stop("b", "мирный", false)},
		Routes: []dataset.Route{
			{ID: "r1", StopIDs: []string{"a", "b"}, Kind: dataset.TransportBus, BaseFare: 500},
		},
	}

	res, err := New().Build(ds)
	require.NoError(t, err)

	edges := res.Graph.Edges("a")
	require.Len(t, edges, 1)
	assert.Equal(t, 30.0, edges[0].Weight) // round(500/1000*60) = 30
}

func TestBuild_WeightCascade_MinTripDuration(t *testing.T) {
	base := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)
	ds := dataset.Dataset{
		Stops: []dataset.Stop{stop("a", "якутск", false), stop("b", "мирный", false)},
		Routes: []dataset.Route{
			{ID: "r1", StopIDs: []string{"a", "b"}, Kind: dataset.TransportBus, BaseFare: 500},
		},
		Flights: []dataset.Flight{
			{ID: "f1", FromStopID: "a", ToStopID: "b", RouteID: "r1", Departure: base, Arrival: base.Add(45 * time.Minute)},
			{ID: "f2", FromStopID: "a", ToStopID: "b", RouteID: "r1", Departure: base, Arrival: base.Add(90 * time.Minute)},
		},
	}

	res, err := New().Build(ds)
	require.NoError(t, err)

	edges := res.Graph.Edges("a")
	require.Len(t, edges, 1)
	assert.Equal(t, 45.0, edges[0].Weight)
}

func TestBuild_SkipsEdgeWhenEndpointMissing(t *testing.T) {
	ds := dataset.Dataset{
		Stops: []dataset.Stop{stop("a", "якутск", false)},
		Routes: []dataset.Route{
			{ID: "r1", StopIDs: []string{"a", "ghost"}, Kind: dataset.TransportBus},
		},
	}

	res, err := New().Build(ds)
	require.NoError(t, err)
	assert.Empty(t, res.Graph.Edges("a"))
}

func TestBuild_DropsVirtualStopWithNonCanonicalID(t *testing.T) {
	ds := dataset.Dataset{
		Stops: []dataset.Stop{
			stop("a", "якутск", false),
			{ID: "not-canonical", Name: "bad virtual", CityKey: "мирный", Virtual: true},
		},
	}

	res, err := New().Build(ds)
	require.NoError(t, err)
	assert.False(t, res.Graph.HasNode("not-canonical"))
	assert.True(t, res.Graph.HasNode("a"))
}

func TestBuild_BidirectionalVirtualClosure(t *testing.T) {
	ds := dataset.Dataset{
		Stops: []dataset.Stop{
			stop("virtual-stop-якутск", "якутск", true),
			stop("virtual-stop-верхоянск", "верхоянск", true),
		},
		Routes: []dataset.Route{
			{ID: "virtual-route-virtual-stop-якутск-virtual-stop-верхоянск",
				StopIDs: []string{"virtual-stop-якутск", "virtual-stop-верхоянск"}, Virtual: true},
			{ID: "virtual-route-virtual-stop-верхоянск-virtual-stop-якутск",
				StopIDs: []string{"virtual-stop-верхоянск", "virtual-stop-якутск"}, Virtual: true},
		},
	}

	res, err := New().Build(ds)
	require.NoError(t, err)

	assert.Len(t, res.Graph.Edges("virtual-stop-якутск"), 1)
	assert.Len(t, res.Graph.Edges("virtual-stop-верхоянск"), 1)
}

func TestBuild_MetadataCounts(t *testing.T) {
	ds := dataset.Dataset{
		Stops:   []dataset.Stop{stop("a", "якутск", false), stop("b", "мирный", false)},
		Routes:  []dataset.Route{{ID: "r1", StopIDs: []string{"a", "b"}, Kind: dataset.TransportBus}},
		Version: "v1",
	}

	res, err := New().Build(ds)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metadata.NodeCount)
	assert.Equal(t, 1, res.Metadata.EdgeCount)
	assert.Equal(t, "v1", res.Metadata.DatasetVersion)
}
