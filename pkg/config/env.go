package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"

	EnvHTTPCORSOrigins    = "STOREFRONT_HTTP_CORS_ORIGINS"
	EnvHTTPIdempotencyTTL = "STOREFRONT_HTTP_IDEMPOTENCY_TTL"

	EnvDBDSN      = "STOREFRONT_DB_DSN"
	EnvDBDriver   = "STOREFRONT_DB_DRIVER"
	EnvDBHost     = "STOREFRONT_DB_HOST"
	EnvDBPort     = "STOREFRONT_DB_PORT"
	EnvDBUser     = "STOREFRONT_DB_USER"
	EnvDBPassword = "STOREFRONT_DB_PASSWORD"
	EnvDBName     = "STOREFRONT_DB_NAME"
	EnvDBSSLMode  = "STOREFRONT_DB_SSLMODE"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"

	EnvCheckoutShippingFee       = "STOREFRONT_CHECKOUT_SHIPPING_FEE"
	EnvCheckoutFreeShippingAbove = "STOREFRONT_CHECKOUT_FREE_SHIPPING_THRESHOLD"
	EnvCheckoutCODEnabled        = "STOREFRONT_CHECKOUT_COD_ENABLED"
	EnvCheckoutReserveStock      = "STOREFRONT_CHECKOUT_RESERVE_STOCK"

	EnvOrdersStrictTransitions = "STOREFRONT_ORDERS_STRICT_TRANSITIONS"

	EnvCronInterval            = "STOREFRONT_CRON_INTERVAL"
	EnvCronOutboxRetentionDays = "STOREFRONT_CRON_OUTBOX_RETENTION_DAYS"

	EnvGCPProjectID         = "STOREFRONT_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic    = "STOREFRONT_PUBSUB_ORDERS_TOPIC"
	EnvPubSubWholesaleTopic = "STOREFRONT_PUBSUB_WHOLESALE_TOPIC"
	EnvPubSubOrdering       = "STOREFRONT_PUBSUB_MESSAGE_ORDERING"
)

// legacyDBEnvVars must all be set when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
