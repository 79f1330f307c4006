// Command worker is the background process of the HSCode-Intelligence
// platform. It consumes evaluation and reindex requests from Kafka, keeps
// the search, vector and graph indexes in sync with the catalog seed, and
// periodically refreshes the engine's calibration from the latest
// evaluation report.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/HSCode-Intelligence/internal/application/evaluation"
	"github.com/turtacn/HSCode-Intelligence/internal/bootstrap"
	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	redisdb "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081

	evaluationLockName = "evaluation-run"
	evaluationLockTTL  = 10 * time.Minute
)

// Populated via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	samplesPath := flag.String("samples", "", "labeled sample file for evaluation runs (default: built-in set)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for the /healthz probe endpoint")
	flag.Parse()

	if err := run(*configPath, *samplesPath, *healthPort); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, samplesPath string, healthPort int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLoggerFromConfig(cfg.Log)
	if err != nil {
		return err
	}

	logger.Info("Starting HSCode-Intelligence worker",
		logging.String("version", Version),
		logging.String("commit", GitCommit))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Reports: true, Graph: true})
	if err != nil {
		return err
	}
	defer app.Close()

	if cfg.Kafka.AutoCreateTopics {
		if err := ensureTopics(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
	}

	w := &worker{app: app, samplesPath: samplesPath}

	consumerCfg := kafka.ConsumerConfigFromApp(cfg.Kafka)
	consumerCfg.MaxProcessRetries = cfg.Worker.MaxRetries
	consumer, err := kafka.NewConsumer(consumerCfg, app.Producer, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	controlTopic := cfg.Kafka.ControlTopic
	if controlTopic == "" {
		controlTopic = kafka.TopicEvaluationControl
	}
	if err := consumer.RegisterHandler(controlTopic, w.handleControl); err != nil {
		return err
	}
	if err := consumer.RegisterHandler(kafka.TopicCatalogReindex, w.handleReindex); err != nil {
		return err
	}

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	if cfg.Engine.TuningInterval > 0 {
		go w.refreshLoop(ctx, cfg.Engine.TuningInterval)
	}
	if cfg.Worker.EvaluationCron > 0 {
		go w.evaluationLoop(ctx, cfg.Worker.EvaluationCron)
	}

	healthSrv := startHealthServer(healthPort, logger)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	return nil
}

// worker holds the bootstrapped dependencies the message handlers use.
type worker struct {
	app         *bootstrap.App
	samplesPath string
}

// handleControl reacts to evaluation requests. A distributed lock ensures
// only one worker instance rewrites the calibration report at a time.
func (w *worker) handleControl(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	if env.EventType != kafka.EventTypeEvaluationRequested {
		w.app.Logger.Warn("Ignoring unexpected event on control topic",
			logging.String("event_type", env.EventType))
		return nil
	}

	var payload kafka.EvaluationRequestedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	return w.runEvaluation(ctx, payload.Samples, payload.RequestedBy)
}

// runEvaluation executes one calibration pass under the distributed lock.
// Both the Kafka control handler and the periodic loop funnel through here.
func (w *worker) runEvaluation(ctx context.Context, limit int, requestedBy string) error {
	lock := w.app.Locks.NewMutex(evaluationLockName, redisdb.WithLockTTL(evaluationLockTTL))
	acquired, err := lock.TryLock(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		w.app.Logger.Info("Evaluation already running elsewhere, skipping",
			logging.String("requested_by", requestedBy))
		return nil
	}
	defer func() { _ = lock.Unlock(context.Background()) }()

	samples := w.loadSamples(limit)

	w.app.Logger.Info("Starting evaluation run",
		logging.Int("samples", len(samples)),
		logging.String("requested_by", requestedBy))

	summary, err := w.app.Runner.Run(ctx, samples)
	if err != nil {
		return err
	}

	w.app.Logger.Info("Evaluation run finished",
		logging.Int("total", summary.Total),
		logging.Int("exact_matches", summary.ExactMatches),
		logging.Float64("avg_confidence", summary.AvgConfidence))
	return nil
}

// evaluationLoop runs the benchmark set on a fixed interval so calibration
// drift is caught even when nobody publishes a control message.
func (w *worker) evaluationLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.runEvaluation(ctx, 0, "scheduler"); err != nil {
				w.app.Logger.Error("Scheduled evaluation failed", logging.Err(err))
			}
		}
	}
}

// loadSamples reads the configured sample file, optionally truncated to the
// requested count, falling back to the compiled-in set.
func (w *worker) loadSamples(limit int) []evaluation.Sample {
	samples := evaluation.DefaultSamples()
	if w.samplesPath != "" {
		loaded, err := evaluation.LoadSamples(w.samplesPath)
		if err != nil {
			w.app.Logger.Warn("Falling back to built-in samples",
				logging.String("path", w.samplesPath),
				logging.Err(err))
		} else {
			samples = loaded
		}
	}
	if limit > 0 && limit < len(samples) {
		samples = samples[:limit]
	}
	return samples
}

// handleReindex resyncs the OpenSearch index, the Milvus collection and the
// Neo4j nomenclature graph from the catalog seed file.
func (w *worker) handleReindex(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}

	var payload kafka.CatalogReindexPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	seed, err := catalog.LoadSeed(w.app.Config.Engine.LexiconPath)
	if err != nil {
		return err
	}

	entries := filterByChapters(seed.Entries, payload.Chapters)
	log := w.app.Logger
	log.Info("Starting catalog reindex",
		logging.Int("entries", len(entries)),
		logging.Strings("chapters", payload.Chapters))

	if err := w.app.Indexer.EnsureIndex(ctx); err != nil {
		return err
	}
	if _, err := w.app.Indexer.BulkIndex(ctx, entries); err != nil {
		return err
	}

	if err := w.app.Collections.EnsureEntryCollection(ctx); err != nil {
		return err
	}
	if _, err := w.app.Vectors.UpsertEntries(ctx, entries); err != nil {
		return err
	}

	if w.app.Nomenclature != nil {
		if err := w.app.Nomenclature.EnsureConstraints(ctx); err != nil {
			return err
		}
		if _, err := w.app.Nomenclature.UpsertHierarchy(ctx, entries); err != nil {
			return err
		}
		if _, err := w.app.Nomenclature.AttachNotes(ctx, seed.Notes); err != nil {
			return err
		}
	}

	log.Info("Catalog reindex finished", logging.Int("entries", len(entries)))
	return nil
}

// refreshLoop periodically reloads the calibration snapshot from the latest
// evaluation report so classification thresholds track measured accuracy.
func (w *worker) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.app.Tuner.Refresh(); err != nil {
				w.app.Logger.Warn("Calibration refresh failed", logging.Err(err))
			}
		}
	}
}

func filterByChapters(entries []catalog.Entry, chapters []string) []catalog.Entry {
	if len(chapters) == 0 {
		return entries
	}
	wanted := make(map[string]bool, len(chapters))
	for _, ch := range chapters {
		wanted[ch] = true
	}
	filtered := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if wanted[e.Chapter()] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	manager, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return err
	}
	defer manager.Close()
	return manager.EnsureDefaultTopics(ctx, cfg.NumPartitions, cfg.ReplicationFactor)
}

func startHealthServer(port int, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		logger.Info("Health endpoint listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health endpoint error", logging.Err(err))
		}
	}()
	return srv
}

// loadConfig prefers the config file and falls back to environment variables
// when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

//Personal.AI order the ending
