// Package bootstrap assembles the platform's infrastructure clients, the
// decision engine and the application services from configuration.  The API
// server, the worker and the CLI's serve/evaluate commands all build their
// dependency graph here so the wiring exists exactly once.
package bootstrap

import (
	"context"
	"time"

	appcls "github.com/turtacn/HSCode-Intelligence/internal/application/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/application/evaluation"
	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/engine"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/assemble"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/rgi"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/scoring"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/tuning"
	neo4jdriver "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/neo4j"
	neorepos "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	promx "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/search/opensearch"
	miniostore "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// embeddingCacheTTL bounds how long a cached text embedding stays valid.
const embeddingCacheTTL = 24 * time.Hour

// Options selects the optional backends a process profile needs.
type Options struct {
	// Reports enables the MinIO report store used by batch evaluation.
	Reports bool

	// Graph enables the Neo4j nomenclature graph used by catalog sync.
	Graph bool
}

// App holds every constructed component.  Fields for disabled backends
// stay nil.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Collector promx.MetricsCollector
	Metrics   *promx.AppMetrics
	Recorder  *promx.ClassificationRecorder

	PG        *postgres.Connection
	Cases     *pgrepos.CaseRepository
	Audit     *pgrepos.AuditRepository
	Nationals *pgrepos.NationalCodeRepository
	Notes     *pgrepos.NoteRepository

	Redis *redisdb.Client
	Cache redisdb.Cache
	Locks redisdb.LockFactory

	OpenSearch *opensearch.Client
	Searcher   *opensearch.Searcher
	Indexer    *opensearch.Indexer

	Milvus      *milvus.Client
	Collections *milvus.CollectionManager
	Vectors     *milvus.VectorStore
	Embedder    enginecommon.EmbeddingProvider

	Producer *kafka.Producer
	Events   *kafka.EventPublisher

	Neo4j        *neo4jdriver.Driver
	Nomenclature neorepos.NomenclatureGraphRepository

	MinIO   *miniostore.Client
	Reports *miniostore.ReportStore

	Tuner   *tuning.Tuner
	Service appcls.Service
	Runner  *evaluation.Runner
}

// New builds the full dependency graph.  Construction is fail-fast: any
// unreachable mandatory backend aborts with a wrapped error and everything
// already opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.InvalidParam("bootstrap requires a config")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	app := &App{Config: cfg, Logger: logger}
	if err := app.build(ctx, opts); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context, opts Options) error {
	cfg := a.Config

	collector, err := promx.NewMetricsCollector(promx.CollectorConfig{
		Namespace:            "hscode",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "metrics collector")
	}
	a.Collector = collector
	a.Metrics = promx.NewAppMetrics(collector)
	a.Recorder = promx.NewClassificationRecorder(a.Metrics)

	a.PG, err = postgres.NewConnection(ctx, cfg.Database, a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "postgres")
	}
	pool := a.PG.Pool()
	a.Cases = pgrepos.NewCaseRepository(pool, a.Logger)
	a.Audit = pgrepos.NewAuditRepository(pool, a.Logger)
	a.Nationals = pgrepos.NewNationalCodeRepository(pool, a.Logger)
	a.Notes = pgrepos.NewNoteRepository(pool, a.Logger)

	a.Redis, err = redisdb.NewClient(cfg.Redis, a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis")
	}
	a.Cache = redisdb.NewRedisCache(a.Redis, a.Logger)
	a.Locks = redisdb.NewLockFactory(a.Redis, a.Logger)

	a.OpenSearch, err = opensearch.NewClient(cfg.OpenSearch, a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "opensearch")
	}
	a.Searcher = opensearch.NewSearcher(a.OpenSearch, opensearch.SearcherConfig{}, a.Logger)
	a.Indexer = opensearch.NewIndexer(a.OpenSearch, opensearch.IndexerConfig{}, a.Logger)

	a.Milvus, err = milvus.NewClient(cfg.Milvus, a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "milvus")
	}
	a.Collections = milvus.NewCollectionManager(a.Milvus, cfg.Milvus, a.Logger)
	hasher := milvus.NewHashingEmbedder(cfg.Milvus.EmbeddingDim)
	a.Embedder = redisdb.NewCachedEmbeddingProvider(hasher, a.Cache, embeddingCacheTTL, a.Logger)
	a.Vectors = milvus.NewVectorStore(a.Milvus, a.Collections, a.Embedder, a.Logger)

	a.Producer, err = kafka.NewProducer(kafka.ProducerConfigFromApp(cfg.Kafka), a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "kafka producer")
	}
	a.Events = kafka.NewEventPublisher(a.Producer, cfg.Kafka.EventsTopic)

	if opts.Graph {
		a.Neo4j, err = neo4jdriver.NewDriver(cfg.Neo4j, a.Logger)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "neo4j")
		}
		a.Nomenclature = neorepos.NewNomenclatureGraphRepo(a.Neo4j, a.Logger)
	}

	if opts.Reports {
		a.MinIO, err = miniostore.NewClient(cfg.MinIO, a.Logger)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio")
		}
		a.Reports = miniostore.NewReportStore(a.MinIO, a.Logger)
	}

	a.buildEngine()
	return nil
}

// buildEngine assembles the decision engine and the application services on
// top of the already-opened infrastructure.
func (a *App) buildEngine() {
	cfg := a.Config

	rules := catalog.DefaultPriorityRules
	synonyms := catalog.DefaultSynonyms
	if cfg.Engine.LexiconPath != "" {
		seed, err := catalog.LoadSeed(cfg.Engine.LexiconPath)
		if err != nil {
			a.Logger.Warn("Catalog seed load failed, using compiled-in tables",
				logging.String("path", cfg.Engine.LexiconPath),
				logging.Err(err))
		} else {
			if len(seed.Rules) > 0 {
				rules = seed.Rules
			}
			if len(seed.Synonyms) > 0 {
				synonyms = seed.Synonyms
			}
		}
	}

	assembler := assemble.New(a.Searcher, a.Logger,
		assemble.WithRules(rules),
		assemble.WithSynonyms(synonyms),
		assemble.WithLimit(cfg.Engine.CandidateLimit),
	)
	pipeline := rgi.New(a.Notes, a.Logger)
	scorer := scoring.New(a.Embedder, a.Logger)
	a.Tuner = tuning.NewTuner(cfg.Engine.TuningReportPath, a.Logger)

	classifier := engine.NewClassifier(assembler, pipeline, scorer, a.Tuner, a.Logger)

	a.Service = appcls.NewService(
		classifier,
		a.Cases,
		a.Audit,
		a.Nationals,
		a.Embedder,
		a.Events,
		a.Recorder,
		a.Logger,
	)
	var reportStore evaluation.ReportStore
	if a.Reports != nil {
		reportStore = a.Reports
	}
	a.Runner = evaluation.NewRunner(a.Service, reportStore, cfg.Engine.TuningReportPath, a.Logger)
}

// HealthChecks returns named probes for every constructed backend.
func (a *App) HealthChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{}
	if a.PG != nil {
		checks["postgres"] = a.PG.HealthCheck
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	if a.OpenSearch != nil {
		checks["opensearch"] = a.OpenSearch.Ping
	}
	if a.Milvus != nil {
		checks["milvus"] = a.Milvus.CheckHealth
	}
	if a.Neo4j != nil {
		checks["neo4j"] = a.Neo4j.HealthCheck
	}
	return checks
}

// Close releases every opened backend in reverse construction order.
// Close is safe to call on a partially-built App.
func (a *App) Close() {
	if a.MinIO != nil {
		// MinIO's client holds no persistent connection.
		a.MinIO = nil
	}
	if a.Neo4j != nil {
		if err := a.Neo4j.Close(); err != nil {
			a.Logger.Warn("Neo4j close failed", logging.Err(err))
		}
	}
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.Logger.Warn("Kafka producer close failed", logging.Err(err))
		}
	}
	if a.Milvus != nil {
		if err := a.Milvus.Close(); err != nil {
			a.Logger.Warn("Milvus close failed", logging.Err(err))
		}
	}
	if a.OpenSearch != nil {
		if err := a.OpenSearch.Close(); err != nil {
			a.Logger.Warn("OpenSearch close failed", logging.Err(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Redis close failed", logging.Err(err))
		}
	}
	if a.PG != nil {
		a.PG.Close()
	}
}

//Personal.AI order the ending
