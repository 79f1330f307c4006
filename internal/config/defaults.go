// Package config provides configuration loading, defaults, and validation for
// the HSCode-Intelligence platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "hscode"
	DefaultDBMaxConns = 25

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaGroupID     = "hscode-group"
	DefaultKafkaEventsTopic = "classification.events"

	DefaultMilvusAddr = "localhost:19530"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 10

	DefaultCatalogIndex = "tariff-catalog"

	// Engine defaults.  The weight triple mirrors the calibrated production
	// distribution: contextual evidence dominates, semantic second, lexical last.
	DefaultSemanticWeight   = 0.30
	DefaultLexicalWeight    = 0.25
	DefaultContextualWeight = 0.45

	DefaultSuspectCeiling      = 0.65
	DefaultAutoClearThreshold  = 0.58
	DefaultLowConfidenceCutoff = 0.20
	DefaultMinSemanticScore    = 0.30

	DefaultMinTextLength  = 3
	DefaultTopK           = 5
	DefaultCandidateLimit = 50

	DefaultTuningReportPath = "data/evaluation_report.json"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.EventsTopic == "" {
		cfg.Kafka.EventsTopic = DefaultKafkaEventsTopic
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if cfg.OpenSearch.CatalogIndex == "" {
		cfg.OpenSearch.CatalogIndex = DefaultCatalogIndex
	}

	// ── Milvus ────────────────────────────────────────────────────────────────
	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.EmbeddingDim == 0 {
		cfg.Milvus.EmbeddingDim = 384
	}
	if cfg.Milvus.DefaultTopK == 0 {
		cfg.Milvus.DefaultTopK = 20
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "hscode-reports"
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.SemanticWeight == 0 && cfg.Engine.LexicalWeight == 0 && cfg.Engine.ContextualWeight == 0 {
		cfg.Engine.SemanticWeight = DefaultSemanticWeight
		cfg.Engine.LexicalWeight = DefaultLexicalWeight
		cfg.Engine.ContextualWeight = DefaultContextualWeight
	}
	if cfg.Engine.SuspectCeiling == 0 {
		cfg.Engine.SuspectCeiling = DefaultSuspectCeiling
	}
	if cfg.Engine.AutoClearThreshold == 0 {
		cfg.Engine.AutoClearThreshold = DefaultAutoClearThreshold
	}
	if cfg.Engine.LowConfidenceCutoff == 0 {
		cfg.Engine.LowConfidenceCutoff = DefaultLowConfidenceCutoff
	}
	if cfg.Engine.MinSemanticScore == 0 {
		cfg.Engine.MinSemanticScore = DefaultMinSemanticScore
	}
	if cfg.Engine.MinTextLength == 0 {
		cfg.Engine.MinTextLength = DefaultMinTextLength
	}
	if cfg.Engine.TopK == 0 {
		cfg.Engine.TopK = DefaultTopK
	}
	if cfg.Engine.CandidateLimit == 0 {
		cfg.Engine.CandidateLimit = DefaultCandidateLimit
	}
	if cfg.Engine.TuningReportPath == "" {
		cfg.Engine.TuningReportPath = DefaultTuningReportPath
	}
	if cfg.Engine.TuningInterval == 0 {
		cfg.Engine.TuningInterval = 5 * time.Minute
	}
	if cfg.Engine.CollaboratorTimeout == 0 {
		cfg.Engine.CollaboratorTimeout = 10 * time.Second
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.Mode == "" {
		cfg.Worker.Mode = "local"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.EvaluationCron == 0 {
		cfg.Worker.EvaluationCron = time.Hour
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
