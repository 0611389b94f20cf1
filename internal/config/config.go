// Package config loads the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the configuration loaded by Init.
var Conf Config

// Config mirrors the structure of configs/config.yaml.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Chunker   ChunkerConfig   `mapstructure:"chunker"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Answer    AnswerConfig    `mapstructure:"answer"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Tika      TikaConfig      `mapstructure:"tika"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	Mode          string `mapstructure:"mode"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ChunkerConfig selects how documents are segmented before embedding.
// Mode "paragraph" splits on blank lines, "window" uses the sliding window.
type ChunkerConfig struct {
	Mode      string `mapstructure:"mode"`
	ChunkSize int    `mapstructure:"chunk_size"`
	Overlap   int    `mapstructure:"overlap"`
}

// EmbeddingConfig configures the primary embedding model.
// Provider is one of "remote", "lexical" or "fallback".
type EmbeddingConfig struct {
	Provider      string        `mapstructure:"provider"`
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	Dimensions    int           `mapstructure:"dimensions"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// RetrievalConfig configures query-time retrieval.
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

// AnswerConfig overrides the built-in answer templates. Empty values keep the defaults.
type AnswerConfig struct {
	GreetingPrefix string `mapstructure:"greeting_prefix"`
	QuestionPrefix string `mapstructure:"question_prefix"`
	DefaultFormat  string `mapstructure:"default_format"`
	NoResultText   string `mapstructure:"no_result_text"`
}

// IngestConfig controls whether uploads are ingested inline or through Kafka.
type IngestConfig struct {
	Async bool `mapstructure:"async"`
}

// SnapshotConfig selects where the index snapshot is persisted.
// Backend is one of "none", "redis" or "bolt".
type SnapshotConfig struct {
	Backend  string `mapstructure:"backend"`
	Key      string `mapstructure:"key"`
	BoltPath string `mapstructure:"bolt_path"`
}

// DatabaseConfig holds all database connections.
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig holds the MySQL DSN. An empty DSN disables the upload audit table.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds the ingestion queue settings. MaxMessageBytes caps one
// encoded task and must not exceed the broker's message.max.bytes.
type KafkaConfig struct {
	Brokers         string `mapstructure:"brokers"`
	Topic           string `mapstructure:"topic"`
	GroupID         string `mapstructure:"group_id"`
	MaxMessageBytes int64  `mapstructure:"max_message_bytes"`
}

// TikaConfig holds the Tika server URL. Empty disables pdf/docx extraction.
type TikaConfig struct {
	ServerURL string `mapstructure:"server_url"`
}

// MinIOConfig holds the object store settings used to archive raw uploads.
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// AuthConfig holds the admin credentials guarding destructive endpoints.
type AuthConfig struct {
	Secret            string `mapstructure:"secret"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
	TokenExpireHours  int    `mapstructure:"token_expire_hours"`
}

// Init loads the configuration into Conf and panics if it cannot be read.
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = *cfg
}

// Load reads the YAML file at configPath, applies DOCQA_* environment
// overrides and defaults, and returns the result.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DOCQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_upload_size", 10<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("chunker.mode", "paragraph")
	v.SetDefault("chunker.chunk_size", 500)
	v.SetDefault("chunker.overlap", 100)

	v.SetDefault("embedding.provider", "lexical")
	v.SetDefault("embedding.model", "sentence-transformers/all-MiniLM-L6-v2")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("embedding.timeout", 30*time.Second)

	v.SetDefault("retrieval.top_k", 5)

	v.SetDefault("snapshot.backend", "none")
	v.SetDefault("snapshot.key", "docqa:index:snapshot")
	v.SetDefault("snapshot.bolt_path", "data/index.db")

	v.SetDefault("kafka.topic", "docqa-ingest")
	v.SetDefault("kafka.group_id", "docqa-ingest-consumer")
	v.SetDefault("kafka.max_message_bytes", 32<<20)

	v.SetDefault("minio.bucket_name", "docqa-uploads")

	v.SetDefault("auth.token_expire_hours", 12)
}
