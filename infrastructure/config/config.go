package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
)

const developmentJWTSecret = "development-secret-change-in-production"

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`

	// Storage configuration
	StorageBackend string `yaml:"storage_backend"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret      string        `yaml:"-"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	JWTAudience    []string      `yaml:"jwt_audience"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	BcryptCost     int           `yaml:"bcrypt_cost"`

	// Rate limiting
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
	RateLimitBackend  string        `yaml:"rate_limit_backend"`

	// Memory recall service
	RecallAPIKey          string        `yaml:"-"`
	RecallBaseURL         string        `yaml:"recall_base_url"`
	RecallTimeout         time.Duration `yaml:"recall_timeout"`
	RecallBreakerFailures int           `yaml:"recall_breaker_failures"`
	RecallBreakerCooldown time.Duration `yaml:"recall_breaker_cooldown"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		ServerAddress:   ":8090",
		Environment:     "development",
		ShutdownTimeout: 30 * time.Second,
		RequestTimeout:  30 * time.Second,

		StorageBackend: StorageMemory,

		AWSRegion:     "us-west-2",
		DynamoDBTable: "memoryhub",

		LogLevel: "info",

		JWTIssuer:      "memoryhub",
		JWTAudience:    []string{"memoryhub-api"},
		AccessTokenTTL: 30 * time.Minute,

		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBackend:  StorageMemory,

		RecallBaseURL:         "https://api.mem0.ai",
		RecallTimeout:         10 * time.Second,
		RecallBreakerFailures: 5,
		RecallBreakerCooldown: 30 * time.Second,

		AllowedOrigins: []string{"*"},

		EnableCORS: true,
	}
}

// LoadConfig loads configuration from, in increasing precedence: defaults,
// the YAML file named by CONFIG_FILE, and environment variables. mem0.env and
// .env files in the working directory are loaded into the environment first
// without overriding variables that are already set.
func LoadConfig() (*Config, error) {
	for _, file := range []string{"mem0.env", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = developmentJWTSecret
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_ADDRESS") == "" {
		c.ServerAddress = ":" + port
	}
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)

	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || c.LambdaFunctionName != "")

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.JWTSecret = getEnv("JWT_SECRET", getEnv("SECRET_KEY", c.JWTSecret))
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTAudience = getEnvList("JWT_AUDIENCE", c.JWTAudience)
	if minutes := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 0); minutes > 0 {
		c.AccessTokenTTL = time.Duration(minutes) * time.Minute
	}
	c.BcryptCost = getEnvInt("BCRYPT_COST", c.BcryptCost)

	c.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", c.RateLimitRequests)
	if seconds := getEnvInt("RATE_LIMIT_WINDOW", 0); seconds > 0 {
		c.RateLimitWindow = time.Duration(seconds) * time.Second
	}
	c.RateLimitBackend = getEnv("RATE_LIMIT_BACKEND", c.RateLimitBackend)

	c.RecallAPIKey = getEnv("RECALL_API_KEY", getEnv("MEM0_API_KEY", c.RecallAPIKey))
	c.RecallBaseURL = getEnv("RECALL_BASE_URL", c.RecallBaseURL)
	c.RecallTimeout = getEnvDuration("RECALL_TIMEOUT", c.RecallTimeout)
	c.RecallBreakerFailures = getEnvInt("RECALL_BREAKER_FAILURES", c.RecallBreakerFailures)
	c.RecallBreakerCooldown = getEnvDuration("RECALL_BREAKER_COOLDOWN", c.RecallBreakerCooldown)

	c.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	switch c.StorageBackend {
	case StorageMemory:
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.RateLimitBackend != StorageMemory && c.RateLimitBackend != StorageDynamoDB {
		return fmt.Errorf("unknown rate limit backend %q", c.RateLimitBackend)
	}
	if c.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesAWS reports whether any component needs an AWS client
func (c *Config) UsesAWS() bool {
	return c.StorageBackend == StorageDynamoDB ||
		c.RateLimitBackend == StorageDynamoDB ||
		c.EventBusName != "" ||
		(c.EnableMetrics && c.IsLambda)
}

// RecallEnabled reports whether memories are forwarded to the recall service
func (c *Config) RecallEnabled() bool {
	return c.RecallAPIKey != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings such as "15s"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
