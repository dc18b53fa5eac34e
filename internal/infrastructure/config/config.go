package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config application-wide configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	OpenTelemetry OpenTelemetryConfig
	Resilience    ResilienceConfig
	Providers     ProvidersConfig
	AdminAPI      AdminAPIConfig
	Environment   string
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig database settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// JWTConfig JWT auth settings for the submission and reporting API
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// OpenTelemetryConfig OpenTelemetry settings
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// ResilienceConfig retry and circuit-breaker settings
type ResilienceConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxBackoff       time.Duration
	FailureThreshold int
	FailureWindow    time.Duration
	Cooldown         time.Duration
}

// ProviderConfig settings for one outbound payment provider
type ProviderConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Timeout       time.Duration
}

// ProvidersConfig per-provider settings
type ProvidersConfig struct {
	SEPA  SEPAConfig
	IDEAL ProviderConfig
	Card  CardConfig
}

// SEPAConfig bank rail settings including the batch originator identity
type SEPAConfig struct {
	ProviderConfig
	OriginatorName string
	OriginatorIBAN string
}

// CardConfig card processor settings with the signed-timestamp tolerance
type CardConfig struct {
	ProviderConfig
	SignatureTolerance time.Duration
}

// AdminAPIConfig API-key-protected operational endpoints
type AdminAPIConfig struct {
	Enabled    bool
	APIKey     string
	AllowedIPs []string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "payrail_db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "payrail-server"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "payrail-server"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
		Resilience: ResilienceConfig{
			MaxRetries:       getEnvAsInt("RESILIENCE_MAX_RETRIES", 3),
			BaseDelay:        getEnvAsDuration("RESILIENCE_BASE_DELAY", 500*time.Millisecond),
			MaxBackoff:       getEnvAsDuration("RESILIENCE_MAX_BACKOFF", 30*time.Second),
			FailureThreshold: getEnvAsInt("RESILIENCE_FAILURE_THRESHOLD", 5),
			FailureWindow:    getEnvAsDuration("RESILIENCE_FAILURE_WINDOW", 5*time.Minute),
			Cooldown:         getEnvAsDuration("RESILIENCE_COOLDOWN", 5*time.Minute),
		},
		Providers: ProvidersConfig{
			SEPA: SEPAConfig{
				ProviderConfig: ProviderConfig{
					BaseURL:       getEnv("SEPA_BASE_URL", "https://bank.example.com/sepa"),
					APIKey:        getEnv("SEPA_API_KEY", ""),
					WebhookSecret: getEnv("SEPA_WEBHOOK_SECRET", ""),
					Timeout:       getEnvAsDuration("SEPA_TIMEOUT", 10*time.Second),
				},
				OriginatorName: getEnv("SEPA_ORIGINATOR_NAME", "Payrail B.V."),
				OriginatorIBAN: getEnv("SEPA_ORIGINATOR_IBAN", ""),
			},
			IDEAL: ProviderConfig{
				BaseURL:       getEnv("IDEAL_BASE_URL", "https://psp.example.com/v2"),
				APIKey:        getEnv("IDEAL_API_KEY", ""),
				WebhookSecret: getEnv("IDEAL_WEBHOOK_SECRET", ""),
				Timeout:       getEnvAsDuration("IDEAL_TIMEOUT", 10*time.Second),
			},
			Card: CardConfig{
				ProviderConfig: ProviderConfig{
					BaseURL:       getEnv("CARD_BASE_URL", "https://cards.example.com/v1"),
					APIKey:        getEnv("CARD_API_KEY", ""),
					WebhookSecret: getEnv("CARD_WEBHOOK_SECRET", ""),
					Timeout:       getEnvAsDuration("CARD_TIMEOUT", 10*time.Second),
				},
				SignatureTolerance: getEnvAsDuration("CARD_SIGNATURE_TOLERANCE", 5*time.Minute),
			},
		},
		AdminAPI: AdminAPIConfig{
			Enabled:    getEnvAsBool("ADMIN_API_ENABLED", false),
			APIKey:     getEnv("ADMIN_API_KEY", ""),
			AllowedIPs: getEnvAsSlice("ADMIN_API_ALLOWED_IPS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required settings.
func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Providers.SEPA.WebhookSecret == "" {
		return fmt.Errorf("SEPA_WEBHOOK_SECRET is required")
	}
	if c.Providers.IDEAL.WebhookSecret == "" {
		return fmt.Errorf("IDEAL_WEBHOOK_SECRET is required")
	}
	if c.Providers.Card.WebhookSecret == "" {
		return fmt.Errorf("CARD_WEBHOOK_SECRET is required")
	}
	if c.AdminAPI.Enabled && c.AdminAPI.APIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required when the admin API is enabled")
	}
	return nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// getEnv reads an environment variable with a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as a boolean.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as a comma-separated list.
func getEnvAsSlice(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// getEnvAsDuration reads an environment variable as a duration.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
