// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Knowledge     KnowledgeConfig         `mapstructure:"knowledge"`
	Model         ModelConfig             `mapstructure:"model"`
	Agent         AgentConfig             `mapstructure:"agent"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// GetURL returns the connection string in URL form, as pgx expects it.
func (p PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Lexical backends for the knowledge corpus.
const (
	LexicalBackendPostgres      = "postgres"
	LexicalBackendElasticsearch = "elasticsearch"
)

// KnowledgeConfig points at the embedded corpus. An empty DatabaseURL falls
// back to the transactional postgres settings.
type KnowledgeConfig struct {
	DatabaseURL         string  `mapstructure:"database_url"`
	Table               string  `mapstructure:"table"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	LexicalBackend      string  `mapstructure:"lexical_backend"`
	ElasticsearchIndex  string  `mapstructure:"elasticsearch_index"`
	MaxConnections      int32   `mapstructure:"max_connections"`
}

// Model providers.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

type ModelConfig struct {
	Provider        string  `mapstructure:"provider"`
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	GenerationModel string  `mapstructure:"generation_model"`
	EmbeddingModel  string  `mapstructure:"embedding_model"`
	RateLimit       float64 `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst       int     `mapstructure:"rate_burst"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
}

type AgentConfig struct {
	RetrievalLimit   int  `mapstructure:"retrieval_limit"`
	VoiceTextLimit   int  `mapstructure:"voice_text_limit"`
	TopOpportunities int  `mapstructure:"top_opportunities"`
	RecentLeads      int  `mapstructure:"recent_leads"`
	EmbedCacheSize   int  `mapstructure:"embed_cache_size"`
	EmbedCacheTTL    int  `mapstructure:"embed_cache_ttl"` // milliseconds, redis tier only
	EmbedCacheRedis  bool `mapstructure:"embed_cache_redis"`
	RequestTimeout   int  `mapstructure:"request_timeout"` // milliseconds
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// NotificationConfig holds settings for the send-agent-message worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	ComplianceKeywords []string `mapstructure:"compliance_keywords"`
}

// UsesElasticsearch reports whether lexical knowledge search goes to elasticsearch.
func (c *Config) UsesElasticsearch() bool {
	return strings.EqualFold(c.Knowledge.LexicalBackend, LexicalBackendElasticsearch)
}
