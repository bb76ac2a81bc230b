package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the photodex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	AWS       AWSConfig       `yaml:"aws"`
	Detection DetectionConfig `yaml:"detection"`
	NLU       NLUConfig       `yaml:"nlu"`
	Cache     CacheConfig     `yaml:"cache"`
	Upload    UploadConfig    `yaml:"upload"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds search engine settings.
type IndexConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Name         string `yaml:"name"`
	MaxResults   int    `yaml:"max_results"`
	SignRequests bool   `yaml:"sign_requests"` // SigV4 for managed domains
	EnsureIndex  bool   `yaml:"ensure_index"`  // create the index with the photo mapping at startup
}

// AWSConfig holds AWS identity and endpoint settings.
type AWSConfig struct {
	Region          string `yaml:"region"`
	SigningService  string `yaml:"signing_service"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	S3Endpoint      string `yaml:"s3_endpoint"`
	S3PathStyle     bool   `yaml:"s3_path_style"`
}

// DetectionConfig holds label detection settings.
type DetectionConfig struct {
	MaxLabels     int     `yaml:"max_labels"`
	MinConfidence float32 `yaml:"min_confidence"`
}

// NLU providers.
const (
	NLUProviderNone   = ""
	NLUProviderLex    = "lex"
	NLUProviderOpenAI = "openai"
)

// NLUConfig holds keyword extraction provider settings. An empty provider disables the NLU tier.
type NLUConfig struct {
	Provider string       `yaml:"provider"`
	Lex      LexConfig    `yaml:"lex"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// Active returns the provider to use. A provider missing its identifiers is
// disabled, leaving only the fallback tokenizer.
func (c NLUConfig) Active() string {
	switch c.Provider {
	case NLUProviderLex:
		if c.Lex.BotID != "" && c.Lex.BotAliasID != "" {
			return NLUProviderLex
		}
	case NLUProviderOpenAI:
		if c.OpenAI.APIKey != "" {
			return NLUProviderOpenAI
		}
	}
	return NLUProviderNone
}

// LexConfig identifies the Lex V2 bot.
type LexConfig struct {
	BotID      string `yaml:"bot_id"`
	BotAliasID string `yaml:"bot_alias_id"`
	LocaleID   string `yaml:"locale_id"`
}

// OpenAIConfig holds OpenAI-compatible chat settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// CacheConfig holds keyword cache settings. No addrs disables the cache.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// UploadConfig holds photo upload settings. An empty bucket disables uploads.
type UploadConfig struct {
	Bucket   string `yaml:"bucket"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Name == "" {
		c.Index.Name = "photos"
	}
	if c.Index.MaxResults <= 0 {
		c.Index.MaxResults = 100
	}
	if c.AWS.SigningService == "" {
		c.AWS.SigningService = "es"
	}
	if c.Detection.MaxLabels <= 0 {
		c.Detection.MaxLabels = 10
	}
	if c.NLU.Lex.LocaleID == "" {
		c.NLU.Lex.LocaleID = "en_US"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 10 << 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Index.Endpoint == "" {
		return fmt.Errorf("index.endpoint is required")
	}
	if c.AWS.Region == "" {
		return fmt.Errorf("aws.region is required")
	}
	if c.AWS.AccessKeyID != "" && c.AWS.SecretAccessKey == "" {
		return fmt.Errorf("aws.secret_access_key is required with aws.access_key_id")
	}
	switch c.NLU.Provider {
	case NLUProviderNone, NLUProviderLex, NLUProviderOpenAI:
	default:
		return fmt.Errorf("nlu.provider must be \"\", %q or %q, got %q",
			NLUProviderLex, NLUProviderOpenAI, c.NLU.Provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
