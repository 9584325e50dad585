// Package storepg implements the relational persistence repositories
// against PostgreSQL via pgx/v5, the driver the
// example-pack siblings reach for over database/sql.
package storepg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/repository"
)

// Store bundles a connection pool shared by every concrete repository.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pgxpool.Pool. Callers own the pool's lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Stops returns the StopRepository view over this store.
func (s *Store) Stops() repository.StopRepository { return stopRepo{s.pool} }

// Routes returns the RouteRepository view over this store.
func (s *Store) Routes() repository.RouteRepository { return routeRepo{s.pool} }

// Flights returns the FlightRepository view over this store.
func (s *Store) Flights() repository.FlightRepository { return flightRepo{s.pool} }

// Datasets returns the DatasetRepository view over this store.
func (s *Store) Datasets() repository.DatasetRepository { return datasetRepo{s.pool} }

// Graphs returns the GraphRepository view over this store.
func (s *Store) Graphs() repository.GraphRepository { return graphRepo{s.pool} }

// ClearAll truncates every table this store owns, for the admin reinit
// flow. It is only ever invoked when config.IsProduction() is false.
func (s *Store) ClearAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE stops, routes, flights, datasets, graph_metadata, graph_payloads`)
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	return nil
}

type stopRepo struct{ pool *pgxpool.Pool }

func (r stopRepo) SaveAll(ctx context.Context, stops []dataset.Stop) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM stops`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, s := range stops {
			batch.Queue(
				`INSERT INTO stops (id, name, has_coords, latitude, longitude, city_key, kind, virtual)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				s.ID, s.Name, s.HasCoords, s.Latitude, s.Longitude, s.CityKey, string(s.Kind), s.Virtual,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r stopRepo) ListByKind(ctx context.Context, virtual bool) ([]dataset.Stop, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, has_coords, latitude, longitude, city_key, kind, virtual FROM stops WHERE virtual = $1`, virtual)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Stop
	for rows.Next() {
		var s dataset.Stop
		var kind string
		if err := rows.Scan(&s.ID, &s.Name, &s.HasCoords, &s.Latitude, &s.Longitude, &s.CityKey, &kind, &s.Virtual); err != nil {
			return nil, err
		}
		s.Kind = dataset.StopKind(kind)
		out = append(out, s)
	}
	return out, rows.Err()
}

type routeRepo struct{ pool *pgxpool.Pool }

func (r routeRepo) SaveAll(ctx context.Context, routes []dataset.Route) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM routes`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, route := range routes {
			batch.Queue(
				`INSERT INTO routes (id, stop_ids, kind, number, base_fare, virtual, has_distance, distance_meters, has_estimated_duration, estimated_duration_minutes)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				route.ID, route.StopIDs, string(route.Kind), route.Number, route.BaseFare, route.Virtual,
				route.HasDistance, route.DistanceMeters, route.HasEstimatedDuration, route.EstimatedDurationMinutes,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r routeRepo) ListByKind(ctx context.Context, virtual bool) ([]dataset.Route, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, stop_ids, kind, number, base_fare, virtual, has_distance, distance_meters, has_estimated_duration, estimated_duration_minutes
		 FROM routes WHERE virtual = $1`, virtual)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Route
	for rows.Next() {
		var route dataset.Route
		var kind string
		if err := rows.Scan(&route.ID, &route.StopIDs, &kind, &route.Number, &route.BaseFare, &route.Virtual,
			&route.HasDistance, &route.DistanceMeters, &route.HasEstimatedDuration, &route.EstimatedDurationMinutes); err != nil {
			return nil, err
		}
		route.Kind = dataset.TransportKind(kind)
		out = append(out, route)
	}
	return out, rows.Err()
}

type flightRepo struct{ pool *pgxpool.Pool }

func (r flightRepo) SaveAll(ctx context.Context, flights []dataset.Flight) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM flights`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, f := range flights {
			batch.Queue(
				`INSERT INTO flights (id, from_stop_id, to_stop_id, route_id, departure, arrival, price, available_seats, status)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				f.ID, f.FromStopID, f.ToStopID, f.RouteID, f.Departure, f.Arrival, f.Price, f.AvailableSeats, string(f.Status),
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r flightRepo) CountWithVirtual(ctx context.Context, virtual bool) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM flights f JOIN routes r ON r.id = f.route_id WHERE r.virtual = $1`, virtual,
	).Scan(&count)
	return count, err
}

type datasetRepo struct{ pool *pgxpool.Pool }

func (r datasetRepo) GetLatest(ctx context.Context) (dataset.Dataset, bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT version, hash, source_mode, quality_score, created_at, active FROM datasets ORDER BY created_at DESC LIMIT 1`)

	var d dataset.Dataset
	var sourceMode string
	err := row.Scan(&d.Version, &d.Hash, &sourceMode, &d.QualityScore, &d.CreatedAt, &d.Active)
	if err == pgx.ErrNoRows {
		return dataset.Dataset{}, false, nil
	}
	if err != nil {
		return dataset.Dataset{}, false, err
	}
	d.SourceMode = dataset.SourceMode(sourceMode)

	stops, err := stopRepo{r.pool}.ListByKind(ctx, false)
	if err != nil {
		return dataset.Dataset{}, false, err
	}
	virtualStops, err := stopRepo{r.pool}.ListByKind(ctx, true)
	if err != nil {
		return dataset.Dataset{}, false, err
	}
	d.Stops = append(stops, virtualStops...)

	routes, err := routeRepo{r.pool}.ListByKind(ctx, false)
	if err != nil {
		return dataset.Dataset{}, false, err
	}
	virtualRoutes, err := routeRepo{r.pool}.ListByKind(ctx, true)
	if err != nil {
		return dataset.Dataset{}, false, err
	}
	d.Routes = append(routes, virtualRoutes...)

	return d, true, nil
}

func (r datasetRepo) Save(ctx context.Context, d dataset.Dataset) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO datasets (version, hash, source_mode, quality_score, created_at, active)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (version) DO UPDATE SET hash = $2, quality_score = $4, active = $6`,
		d.Version, d.Hash, string(d.SourceMode), d.QualityScore, d.CreatedAt, d.Active,
	)
	return err
}

func (r datasetRepo) Delete(ctx context.Context, version string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM datasets WHERE version = $1`, version)
	return err
}

func (r datasetRepo) SetActive(ctx context.Context, version string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE datasets SET active = FALSE`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE datasets SET active = TRUE WHERE version = $1`, version)
		return err
	})
}

type graphRepo struct{ pool *pgxpool.Pool }

func (r graphRepo) SaveGraph(ctx context.Context, version string, payload []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO graph_payloads (version, payload) VALUES ($1,$2) ON CONFLICT (version) DO UPDATE SET payload = $2`,
		version, payload,
	)
	return err
}

func (r graphRepo) SetActiveGraphMetadata(ctx context.Context, meta repository.GraphMetadata) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if meta.Active {
			if _, err := tx.Exec(ctx, `UPDATE graph_metadata SET active = FALSE`); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO graph_metadata (version, node_count, edge_count, build_timestamp, active)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (version) DO UPDATE SET node_count = $2, edge_count = $3, build_timestamp = $4, active = $5`,
			meta.Version, meta.NodeCount, meta.EdgeCount, meta.BuildTimestamp, meta.Active,
		)
		return err
	})
}

func (r graphRepo) GetGraphMetadata(ctx context.Context, version string) (repository.GraphMetadata, bool, error) {
	var meta repository.GraphMetadata
	err := r.pool.QueryRow(ctx,
		`SELECT version, node_count, edge_count, build_timestamp, active FROM graph_metadata WHERE version = $1`, version,
	).Scan(&meta.Version, &meta.NodeCount, &meta.EdgeCount, &meta.BuildTimestamp, &meta.Active)
	if err == pgx.ErrNoRows {
		return repository.GraphMetadata{}, false, nil
	}
	return meta, err == nil, err
}

func (r graphRepo) DeleteGraph(ctx context.Context, version string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM graph_payloads WHERE version = $1`, version); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM graph_metadata WHERE version = $1`, version)
		return err
	})
}

func (r graphRepo) GetGraphVersion(ctx context.Context) (string, bool, error) {
	var version string
	err := r.pool.QueryRow(ctx, `SELECT version FROM graph_metadata WHERE active = TRUE LIMIT 1`).Scan(&version)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	return version, err == nil, err
}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// PoolFromConfig opens a pool with the given max/min pool sizes and
// connection timeout; callers supply the DSN separately since it is not
// itself a named DB_* option. The idle and statement timeouts are not
// applied here.
func PoolFromConfig(ctx context.Context, dsn string, maxConns, minConns int32, connTimeout time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.ConnConfig.ConnectTimeout = connTimeout
	return pgxpool.NewWithConfig(ctx, cfg)
}
