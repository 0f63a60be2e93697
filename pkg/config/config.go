package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MNhat168/sport-zone-sub002/pkg/client"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	KafkaBrokers []string
	KafkaEnabled bool

	GatewayBaseURL     string
	GatewayClientID    string
	GatewayAPIKey      string
	GatewayChecksumKey string
	GatewayReturnURL   string
	GatewayCancelURL   string

	PlatformFeePercent int
	PaymentGracePeriod time.Duration

	ResolveRetryAttempts int
	ResolveRetryDelay    time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		KafkaBrokers: strings.Split(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers), ","),
		KafkaEnabled: getEnvBool(EnvKafkaEnabled, true),

		GatewayBaseURL:     getEnvStr(EnvGatewayBaseURL, DefaultGatewayBaseURL),
		GatewayClientID:    getEnvStr(EnvGatewayClientID, ""),
		GatewayAPIKey:      getEnvStr(EnvGatewayAPIKey, ""),
		GatewayChecksumKey: getEnvStr(EnvGatewayChecksumKey, ""),
		GatewayReturnURL:   getEnvStr(EnvGatewayReturnURL, ""),
		GatewayCancelURL:   getEnvStr(EnvGatewayCancelURL, ""),

		PlatformFeePercent: getEnvNum(EnvPlatformFeePercent, DefaultPlatformFeePercent),
		PaymentGracePeriod: getEnvDuration(EnvPaymentGracePeriod, DefaultPaymentGracePeriod),

		ResolveRetryAttempts: getEnvNum(EnvResolveRetryAttempts, DefaultResolveRetryAttempts),
		ResolveRetryDelay:    getEnvDuration(EnvResolveRetryDelay, DefaultResolveRetryDelay),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		problems = append(problems, "KafkaBrokers cannot be empty when Kafka is enabled")
	}

	if cfg.PlatformFeePercent < 0 || cfg.PlatformFeePercent > 100 {
		problems = append(problems, fmt.Sprintf("PlatformFeePercent must be between 0 and 100, got: %d", cfg.PlatformFeePercent))
	}
	if cfg.PaymentGracePeriod <= 0 {
		problems = append(problems, fmt.Sprintf("PaymentGracePeriod must be positive, got: %s", cfg.PaymentGracePeriod))
	}
	if cfg.ResolveRetryAttempts < 1 {
		problems = append(problems, fmt.Sprintf("ResolveRetryAttempts must be at least 1, got: %d", cfg.ResolveRetryAttempts))
	}
	if cfg.ResolveRetryDelay < 0 {
		problems = append(problems, fmt.Sprintf("ResolveRetryDelay cannot be negative, got: %s", cfg.ResolveRetryDelay))
	}

	if cfg.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_enabled", cfg.KafkaEnabled,
		"gateway_base_url", cfg.GatewayBaseURL,
		"gateway_credentials_set", cfg.GatewayClientID != "" && cfg.GatewayAPIKey != "",
		"platform_fee_percent", cfg.PlatformFeePercent,
		"payment_grace_period", cfg.PaymentGracePeriod,
		"resolve_retry_attempts", cfg.ResolveRetryAttempts,
		"resolve_retry_delay", cfg.ResolveRetryDelay,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
