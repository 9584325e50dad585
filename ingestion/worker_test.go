package ingestion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/upstream"
	"github.com/sakhatransit/routeengine/worker"
)

type fakeProvider struct {
	snap upstream.Snapshot
	err  error
	n    int
}

func (f *fakeProvider) FetchAll(ctx context.Context) (upstream.Snapshot, error) {
	f.n++
	return f.snap, f.err
}

func (f *fakeProvider) FlightQuote(ctx context.Context, flightID string) (float64, int, error) {
	return 0, 0, nil
}

type fakeStopRepo struct{ saved []dataset.Stop }

func (r *fakeStopRepo) SaveAll(ctx context.Context, s []dataset.Stop) error {
	r.saved = s
	return nil
}
func (r *fakeStopRepo) ListByKind(ctx context.Context, virtual bool) ([]dataset.Stop, error) {
	return r.saved, nil
}

type fakeRouteRepo struct{ saved []dataset.Route }

func (r *fakeRouteRepo) SaveAll(ctx context.Context, rs []dataset.Route) error {
	r.saved = rs
	return nil
}
func (r *fakeRouteRepo) ListByKind(ctx context.Context, virtual bool) ([]dataset.Route, error) {
	return r.saved, nil
}

type fakeFlightRepo struct{ saved []dataset.Flight }

func (r *fakeFlightRepo) SaveAll(ctx context.Context, fl []dataset.Flight) error {
	r.saved = fl
	return nil
}
func (r *fakeFlightRepo) CountWithVirtual(ctx context.Context, virtual bool) (int, error) {
	return len(r.saved), nil
}

type fakeDatasetRepo struct {
	mu      sync.Mutex
	latest  dataset.Dataset
	hasOne  bool
	saved   []dataset.Dataset
	active  string
}

func (r *fakeDatasetRepo) GetLatest(ctx context.Context) (dataset.Dataset, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.hasOne, nil
}
func (r *fakeDatasetRepo) Save(ctx context.Context, d dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, d)
	r.latest = d
	r.hasOne = true
	return nil
}
func (r *fakeDatasetRepo) Delete(ctx context.Context, version string) error { return nil }
func (r *fakeDatasetRepo) SetActive(ctx context.Context, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = version
	return nil
}

type fakeCache struct{ invalidated int }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }
func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (c *fakeCache) Delete(ctx context.Context, key string) error { return nil }
func (c *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.invalidated++
	return nil
}
func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
func (c *fakeCache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	return nil, nil
}
func (c *fakeCache) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	return nil
}

func sampleSnapshot() upstream.Snapshot {
	day := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)
	return upstream.Snapshot{
		Stops: []upstream.RawStop{
			{ID: "s1", Name: "Yakutsk Central", CityKey: "Якутск", HasCoords: true, Lat: 62.03, Lon: 129.73},
			{ID: "s2", Name: "Mirny Hub", CityKey: "Мирный", HasCoords: true, Lat: 62.5, Lon: 113.9},
			{ID: "bad", Name: "AB", CityKey: "станция"},
		},
		Routes: []upstream.RawRoute{
			{ID: "r1", StopIDs: []string{"s1", "s2"}, Kind: "bus", BaseFare: 1200},
		},
		Flights: []upstream.RawFlight{
			{ID: "f1", FromStopID: "s1", ToStopID: "s2", RouteID: "r1", Departure: day, Arrival: day.Add(2 * time.Hour), Price: 1200, AvailableSeats: 20},
		},
	}
}

func newTestWorker(provider *fakeProvider, datasets *fakeDatasetRepo, cache *fakeCache) *Worker {
	return New(provider, &fakeStopRepo{}, &fakeRouteRepo{}, &fakeFlightRepo{}, datasets, cache, nil, city.NewReference())
}

func TestExecute_PersistsNewDatasetOnFirstRun(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	datasets := &fakeDatasetRepo{}
	cache := &fakeCache{}

	w := newTestWorker(provider, datasets, cache)
	err := w.Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, datasets.saved, 1)
	assert.Equal(t, datasets.saved[0].Version, datasets.active)
	assert.Equal(t, 1, cache.invalidated)
	assert.Equal(t, worker.StatusSuccess, w.Metadata().Status)
}

func TestExecute_DropsInvalidStop(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	datasets := &fakeDatasetRepo{}
	w := newTestWorker(provider, datasets, &fakeCache{})

	require.NoError(t, w.Execute(context.Background()))
	require.Len(t, datasets.saved, 1)
	assert.Len(t, datasets.saved[0].Stops, 2)
}

func TestExecute_SecondRunWithIdenticalSnapshotCreatesNoNewDataset(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	datasets := &fakeDatasetRepo{}
	w := newTestWorker(provider, datasets, &fakeCache{})

	require.NoError(t, w.Execute(context.Background()))
	firstHash := datasets.latest.Hash

	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, w.Execute(context.Background()))

	assert.Len(t, datasets.saved, 1)
	assert.Equal(t, firstHash, datasets.latest.Hash)
}

func TestExecute_SkipsWhenCooldownNotElapsed(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	datasets := &fakeDatasetRepo{}
	w := newTestWorker(provider, datasets, &fakeCache{})

	require.NoError(t, w.Execute(context.Background()))
	require.NoError(t, w.Execute(context.Background()))

	assert.Equal(t, 1, provider.n)
	assert.Equal(t, worker.StatusSkipped, w.Metadata().Status)
}

func TestExecute_PropagatesProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: assertErr("boom")}
	datasets := &fakeDatasetRepo{}
	w := newTestWorker(provider, datasets, &fakeCache{})

	err := w.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, worker.StatusFailed, w.Metadata().Status)
}

func TestExecute_FailureDoesNotStartCooldown(t *testing.T) {
	provider := &fakeProvider{err: assertErr("boom")}
	datasets := &fakeDatasetRepo{}
	w := newTestWorker(provider, datasets, &fakeCache{})

	err := w.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, worker.StatusFailed, w.Metadata().Status)

	provider.err = nil
	provider.snap = sampleSnapshot()

	err = w.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.n, "a failed run must not block an immediate retry behind the cooldown")
	assert.Equal(t, worker.StatusSuccess, w.Metadata().Status)
	require.Len(t, datasets.saved, 1)
}

func TestNormalizeTransportKind_LanguageInsensitive(t *testing.T) {
	cases := []struct {
		raw  string
		want dataset.TransportKind
	}{
		{"bus", dataset.TransportBus},
		{"Автобус", dataset.TransportBus},
		{"САМОЛЕТ", dataset.TransportAirplane},
		{"самолёт", dataset.TransportAirplane},
		{"поезд", dataset.TransportTrain},
		{"Паром", dataset.TransportFerry},
		{"теплоход", dataset.TransportFerry},
		{"такси", dataset.TransportTaxi},
		{" TRAIN ", dataset.TransportTrain},
		{"hovercraft", dataset.TransportBus},
		{"", dataset.TransportBus},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeTransportKind(tc.raw), "raw=%q", tc.raw)
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
