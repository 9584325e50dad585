package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/config"
	"github.com/sakhatransit/routeengine/graphbuild"
	"github.com/sakhatransit/routeengine/graphstore"
	"github.com/sakhatransit/routeengine/httpapi"
	"github.com/sakhatransit/routeengine/ingestion"
	"github.com/sakhatransit/routeengine/itinerary"
	"github.com/sakhatransit/routeengine/logging"
	"github.com/sakhatransit/routeengine/objectstore"
	"github.com/sakhatransit/routeengine/orchestrator"
	"github.com/sakhatransit/routeengine/repository"
	"github.com/sakhatransit/routeengine/riskdata"
	"github.com/sakhatransit/routeengine/riskscore"
	"github.com/sakhatransit/routeengine/storecache"
	"github.com/sakhatransit/routeengine/storepg"
	"github.com/sakhatransit/routeengine/upstream"
	"github.com/sakhatransit/routeengine/virtualentity"
	"github.com/sakhatransit/routeengine/worker"
)

// engine bundles every long-lived collaborator a routingctl subcommand
// needs, built once from process configuration.
type engine struct {
	cfg          *config.Config
	orchestrator *orchestrator.Orchestrator
	store        *storepg.Store
	graphStore   *graphstore.Store
	httpServer   *httpapi.Server
}

// buildEngine loads config and wires the ingestion/augmentation/graph-build
// pipeline plus the HTTP surface around a PostgreSQL pool and Redis cache.
func buildEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logging.ForModule("routingctl")

	pool, err := storepg.PoolFromConfig(ctx, cfg.DatabaseURL, int32(cfg.DBPoolMax), int32(cfg.DBPoolMin), cfg.DBConnectionTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store := storepg.New(pool)

	var cache *storecache.Cache
	if cfg.RedisEnabled {
		cache = storecache.NewFromConfig(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	}

	var uploader objectstore.Uploader
	if cfg.ObjectStoreBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		uploader = objectstore.NewS3Uploader(s3.NewFromConfig(awsCfg), cfg.ObjectStoreBucket)
	}

	ref := city.NewReference()
	normalizer := city.NewNormalizer(ref)

	provider := upstream.New(upstream.Config{
		BaseURL:       cfg.ODataBaseURL,
		Username:      cfg.ODataUsername,
		Password:      cfg.ODataPassword,
		Timeout:       cfg.ODataTimeout,
		RetryAttempts: cfg.ODataRetryAttempts,
		RetryDelay:    cfg.ODataRetryDelay,
	})

	ingestionWorker := ingestion.New(
		provider, store.Stops(), store.Routes(), store.Flights(), store.Datasets(),
		repositoryCacheOrNil(cache), uploader, ref,
	)
	veWorker := virtualentity.New(ref, store.Stops(), store.Routes(), store.Flights(), store.Datasets(), cfg.UseAdaptiveDataLoading)

	graphStore := graphstore.New()
	graphWorker := graphbuild.NewWorker(graphbuild.New(), store.Datasets(), store.Graphs(), graphStore, log)

	orch := orchestrator.New(
		[]worker.Worker{ingestionWorker, veWorker, graphWorker},
		cfg.IsProduction,
		store,
		log,
	)

	collector := &riskdata.Collector{
		History:    riskdata.StaticProvider{},
		Regularity: riskdata.StaticProvider{},
		Weather:    riskdata.StaticProvider{},
		Season:     riskdata.StaticProvider{},
	}

	httpServer := httpapi.New(
		normalizer, graphStore, itinerary.New(), collector, riskscore.RuleBasedModel{},
		orch, store.Datasets(), store.Graphs(), cfg.IsProduction, log,
	)

	return &engine{cfg: cfg, orchestrator: orch, store: store, graphStore: graphStore, httpServer: httpServer}, nil
}

// repositoryCacheOrNil lets a disabled Redis backend (REDIS_ENABLED=false)
// flow through ingestion.New as a genuinely nil CacheRepository, matching
// the cities-cache invalidation being a no-op when there is no
// cache. Returning the *storecache.Cache pointer directly would wrap a nil
// pointer in a non-nil interface value, so the nil check is done here
// while the concrete type is still known.
func repositoryCacheOrNil(c *storecache.Cache) repository.CacheRepository {
	if c == nil {
		return nil
	}
	return c
}
