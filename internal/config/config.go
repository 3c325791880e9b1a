// Package config 负责加载和管理应用程序的配置。
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EmbeddingDimensions 是索引和检索共同依赖的向量维度。
const EmbeddingDimensions = 384

// 全局配置变量，由 Init 填充。
var Conf Config

// Config 与 configs/config.yaml 的结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	VectorStore   VectorStoreConfig   `mapstructure:"vector_store"`
	Ingestion     IngestionConfig     `mapstructure:"ingestion"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

// ServerConfig 存储 HTTP 服务相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type MySQLConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig 仅在 vector_store.backend=pgvector 时使用。
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 用于异步导入队列。Brokers 为空时关闭异步导入。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储原始申报 JSON 的归档桶。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// EmbeddingConfig 存储 Embedding 模型相关的配置。
type EmbeddingConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	Model           string  `mapstructure:"model"`
	Dimensions      int     `mapstructure:"dimensions"`
	BatchSize       int     `mapstructure:"batch_size"`
	RateLimit       float64 `mapstructure:"rate_limit"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	CacheTTLMinutes int     `mapstructure:"cache_ttl_minutes"`
}

// LLMConfig 选择大模型提供方并配置生成参数。
type LLMConfig struct {
	Provider       string              `mapstructure:"provider"`
	APIKey         string              `mapstructure:"api_key"`
	BaseURL        string              `mapstructure:"base_url"`
	Model          string              `mapstructure:"model"`
	RateLimit      float64             `mapstructure:"rate_limit"`
	TimeoutSeconds int                 `mapstructure:"timeout_seconds"`
	Generation     LLMGenerationConfig `mapstructure:"generation"`
	Vertex         VertexConfig        `mapstructure:"vertex"`
}

// LLMGenerationConfig 配置生成相关参数。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type VertexConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Region    string `mapstructure:"region"`
}

// VectorStoreConfig 选择向量索引后端: elasticsearch | pgvector | memory
type VectorStoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type IngestionConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load 读取 .env、YAML 配置文件以及 ADVISOR_ 前缀的环境变量。
// path 为空或文件不存在时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, eris.Wrapf(err, "config: read %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "config: stat %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init 加载配置到全局 Conf，失败直接 panic。
func Init(path string) {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	Conf = *cfg
}

// Validate 检查启动前必须满足的约束。
func (c *Config) Validate() error {
	if c.Embedding.Dimensions != EmbeddingDimensions {
		return eris.Errorf("config: embedding.dimensions must be %d, got %d", EmbeddingDimensions, c.Embedding.Dimensions)
	}
	switch c.VectorStore.Backend {
	case "elasticsearch", "pgvector", "memory":
	default:
		return eris.Errorf("config: unknown vector_store.backend %q", c.VectorStore.Backend)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "vertex":
	default:
		return eris.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}
	if c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return eris.Errorf("config: ingestion.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Ingestion.ChunkOverlap, c.Ingestion.ChunkSize)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.mysql.dsn", "root:password@tcp(127.0.0.1:3306)/filing_advisor?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.mysql.auto_migrate", true)
	v.SetDefault("database.redis.addr", "127.0.0.1:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.postgres.max_conns", 10)

	// 只有注册过的 key 才能被环境变量覆盖，敏感项默认留空
	for _, key := range []string{
		"database.redis.password", "database.postgres.url",
		"kafka.brokers", "elasticsearch.username", "elasticsearch.password",
		"minio.endpoint", "minio.access_key_id", "minio.secret_access_key",
		"embedding.api_key", "llm.api_key", "llm.base_url", "llm.vertex.project_id",
		"log.output_path",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("kafka.topic", "filing-ingest")
	v.SetDefault("kafka.group_id", "filing-advisor-consumer")

	v.SetDefault("elasticsearch.addresses", "http://127.0.0.1:9200")
	v.SetDefault("elasticsearch.index_name", "filing_chunks")

	v.SetDefault("minio.bucket_name", "filings")

	v.SetDefault("embedding.base_url", "http://127.0.0.1:8080/v1")
	v.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	v.SetDefault("embedding.dimensions", EmbeddingDimensions)
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.rate_limit", 20)
	v.SetDefault("embedding.timeout_seconds", 30)
	v.SetDefault("embedding.cache_ttl_minutes", 60)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.rate_limit", 5)
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.generation.max_tokens", 2048)
	v.SetDefault("llm.vertex.region", "us-central1")

	v.SetDefault("vector_store.backend", "elasticsearch")

	v.SetDefault("ingestion.chunk_size", 2000)
	v.SetDefault("ingestion.chunk_overlap", 200)

	v.SetDefault("retrieval.top_k", 5)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
}
