package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sportzone"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultKafkaBrokers = "localhost:9092"

	DefaultGatewayBaseURL = "https://api-merchant.payos.vn"

	DefaultPlatformFeePercent = 10
	DefaultPaymentGracePeriod = 5 * time.Minute

	DefaultResolveRetryAttempts = 3
	DefaultResolveRetryDelay    = 300 * time.Millisecond

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
