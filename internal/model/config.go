package model

import "time"

// Config holds all runtime settings.
// Field tags serve both the YAML config file and viper unmarshalling.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Detection    DetectionConfig    `yaml:"detection" mapstructure:"detection"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound fetching of documents
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// DetectionConfig holds the scoring and corroboration knobs
type DetectionConfig struct {
	NGramSize           int     `yaml:"ngram_size" mapstructure:"ngram_size"`
	SuspicionThreshold  float64 `yaml:"suspicion_threshold" mapstructure:"suspicion_threshold"`
	SentenceBudget      int     `yaml:"sentence_budget" mapstructure:"sentence_budget"`
	SearchMinChars      int     `yaml:"search_min_chars" mapstructure:"search_min_chars"`
	SemanticMinChars    int     `yaml:"semantic_min_chars" mapstructure:"semantic_min_chars"`
	SearchQueryMaxChars int     `yaml:"search_query_max_chars" mapstructure:"search_query_max_chars"`
	SearchMaxResults    int     `yaml:"search_max_results" mapstructure:"search_max_results"`
	ReferencePassages   int     `yaml:"reference_passages" mapstructure:"reference_passages"`
}

// SearchConfig configures the exact-phrase search capability
type SearchConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // google or "" (disabled)
	APIKey     string        `yaml:"-" mapstructure:"api_key"`         // Never written to disk
	CX         string        `yaml:"cx,omitempty" mapstructure:"cx"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
	CacheTTL   time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// Configured reports whether search credentials are present
func (c SearchConfig) Configured() bool {
	return c.APIKey != "" && c.CX != ""
}

// LLMConfig configures the paraphrase capability
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, openrouter, anthropic, ollama, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// CacheConfig controls the search response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Kind    string        `yaml:"kind" mapstructure:"kind"` // memory, lru, disk, layered
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Size    int           `yaml:"size" mapstructure:"size"`
}

// StoreConfig selects the result repository backend
type StoreConfig struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, sqlite, postgres, redis
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	SQLiteDSN string        `yaml:"sqlite_dsn,omitempty" mapstructure:"sqlite_dsn"`
	PGDSN     string        `yaml:"-" mapstructure:"pg_dsn"`
	RedisAddr string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	MaxInFlight     int           `yaml:"max_in_flight" mapstructure:"max_in_flight"`
	AnalyzeTimeout  time.Duration `yaml:"analyze_timeout" mapstructure:"analyze_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	SubmitRPS       float64       `yaml:"submit_rps" mapstructure:"submit_rps"`
	SubmitBurst     int           `yaml:"submit_burst" mapstructure:"submit_burst"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// TelemetryConfig configures tracing export
type TelemetryConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint,omitempty" mapstructure:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name" mapstructure:"service_name"`
	SampleRatio  float64 `yaml:"sample_ratio" mapstructure:"sample_ratio"`
	Insecure     bool    `yaml:"insecure" mapstructure:"insecure"`
}

// ConcurrencyConfig controls batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-host pacing of outbound calls
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Antiplagiat/0.3 (+https://github.com/ppiankov/antiplagiat)",
			MaxBodyBytes:  5_000_000,
			MaxRetries:    3,
			RespectRobots: true,
		},
		Detection: DefaultDetectionConfig(),
		Search: SearchConfig{
			Provider:   "google",
			BaseURL:    "https://www.googleapis.com",
			Timeout:    10 * time.Second,
			MaxRetries: 2,
			CacheTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:       "google/gemini-2.0-flash-exp:free",
			Timeout:     30,
			MaxTokens:   500,
			Temperature: 0.3,
		},
		Cache: CacheConfig{
			Enabled: true,
			Kind:    "memory",
			TTL:     24 * time.Hour,
			Size:    1024,
		},
		Store: StoreConfig{
			Backend:   "memory",
			TTL:       24 * time.Hour,
			SQLiteDSN: "antiplagiat.db",
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			MaxInFlight:     8,
			AnalyzeTimeout:  2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			SubmitRPS:       10,
			SubmitBurst:     20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "antiplagiat",
			SampleRatio: 1.0,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Dir: "results",
		},
	}
}

// DefaultDetectionConfig returns the detection constants used when nothing is configured
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		NGramSize:           5,
		SuspicionThreshold:  0.4,
		SentenceBudget:      3,
		SearchMinChars:      50,
		SemanticMinChars:    30,
		SearchQueryMaxChars: 200,
		SearchMaxResults:    3,
		ReferencePassages:   2,
	}
}
