// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like MODEL_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory; test binaries run from package directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Model.APIKey == "" {
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.Model.APIKey = val
		}
	}
	if cfg.Knowledge.DatabaseURL == "" {
		if val := os.Getenv("KNOWLEDGE_DATABASE_URL"); val != "" {
			cfg.Knowledge.DatabaseURL = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "insurance-agent"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}

	// Knowledge corpus defaults
	if cfg.Knowledge.Table == "" {
		cfg.Knowledge.Table = "knowledge_base"
	}
	if cfg.Knowledge.SimilarityThreshold == 0 {
		cfg.Knowledge.SimilarityThreshold = 0.7
	}
	if cfg.Knowledge.LexicalBackend == "" {
		cfg.Knowledge.LexicalBackend = LexicalBackendPostgres
	}
	if cfg.Knowledge.ElasticsearchIndex == "" {
		cfg.Knowledge.ElasticsearchIndex = "knowledge_base"
	}
	if cfg.Knowledge.MaxConnections == 0 {
		cfg.Knowledge.MaxConnections = 10
	}

	// Model defaults
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = ProviderGemini
	}
	if cfg.Model.GenerationModel == "" {
		switch cfg.Model.Provider {
		case ProviderOllama:
			cfg.Model.GenerationModel = "llama3.1"
		default:
			cfg.Model.GenerationModel = "gemini-2.5-flash"
		}
	}
	if cfg.Model.EmbeddingModel == "" {
		switch cfg.Model.Provider {
		case ProviderOllama:
			cfg.Model.EmbeddingModel = "nomic-embed-text"
		default:
			cfg.Model.EmbeddingModel = "text-embedding-004"
		}
	}
	if cfg.Model.Provider == ProviderOllama && cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = "http://localhost:11434"
	}
	if cfg.Model.RateBurst == 0 {
		cfg.Model.RateBurst = 1
	}
	if cfg.Model.Timeout == 0 {
		cfg.Model.Timeout = 20000
	}

	// Agent defaults
	if cfg.Agent.RetrievalLimit == 0 {
		cfg.Agent.RetrievalLimit = 3
	}
	if cfg.Agent.VoiceTextLimit == 0 {
		cfg.Agent.VoiceTextLimit = 200
	}
	if cfg.Agent.TopOpportunities == 0 {
		cfg.Agent.TopOpportunities = 5
	}
	if cfg.Agent.RecentLeads == 0 {
		cfg.Agent.RecentLeads = 3
	}
	if cfg.Agent.EmbedCacheSize == 0 {
		cfg.Agent.EmbedCacheSize = 1024
	}
	if cfg.Agent.EmbedCacheTTL == 0 {
		cfg.Agent.EmbedCacheTTL = 24 * 60 * 60 * 1000
	}
	if cfg.Agent.RequestTimeout == 0 {
		cfg.Agent.RequestTimeout = 30000
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-south-1"
	}
	if len(cfg.Notifications.ComplianceKeywords) == 0 {
		cfg.Notifications.ComplianceKeywords = DefaultComplianceKeywords()
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}
}

// DefaultComplianceKeywords lists phrases outbound messages must not contain.
func DefaultComplianceKeywords() []string {
	return []string{
		"guaranteed returns",
		"risk-free",
		"no risk",
		"assured profit",
		"tax-free",
		"best investment",
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	switch strings.ToLower(cfg.Knowledge.LexicalBackend) {
	case LexicalBackendPostgres:
	case LexicalBackendElasticsearch:
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch lexical backend")
		}
	default:
		return fmt.Errorf("knowledge.lexical_backend must be %q or %q", LexicalBackendPostgres, LexicalBackendElasticsearch)
	}

	if cfg.Knowledge.SimilarityThreshold < 0 || cfg.Knowledge.SimilarityThreshold >= 1 {
		return fmt.Errorf("knowledge.similarity_threshold must be in [0, 1)")
	}

	if cfg.Agent.EmbedCacheRedis && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when agent.embed_cache_redis is set")
	}

	switch cfg.Model.Provider {
	case ProviderGemini:
		if cfg.Model.APIKey == "" {
			return fmt.Errorf("model.api_key is required for the gemini provider")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("model.provider must be %q or %q", ProviderGemini, ProviderOllama)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    0,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

// KnowledgeURL returns the corpus connection string, defaulting to the
// transactional database.
func (c *Config) KnowledgeURL() string {
	if c.Knowledge.DatabaseURL != "" {
		return c.Knowledge.DatabaseURL
	}
	return c.Database.Postgres.GetURL()
}
