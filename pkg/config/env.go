package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaEnabled = "KAFKA_ENABLED"

	EnvGatewayBaseURL     = "PAYMENT_GATEWAY_BASE_URL"
	EnvGatewayClientID    = "PAYMENT_GATEWAY_CLIENT_ID"
	EnvGatewayAPIKey      = "PAYMENT_GATEWAY_API_KEY"
	EnvGatewayChecksumKey = "PAYMENT_GATEWAY_CHECKSUM_KEY"
	EnvGatewayReturnURL   = "PAYMENT_GATEWAY_RETURN_URL"
	EnvGatewayCancelURL   = "PAYMENT_GATEWAY_CANCEL_URL"

	EnvPlatformFeePercent = "PLATFORM_FEE_PERCENT"
	EnvPaymentGracePeriod = "PAYMENT_GRACE_PERIOD"

	EnvResolveRetryAttempts = "RESOLVE_RETRY_ATTEMPTS"
	EnvResolveRetryDelay    = "RESOLVE_RETRY_DELAY"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
