package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "BREWBOT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "BREWBOT_APP_ENV"
	EnvPort     = "BREWBOT_APP_PORT"
	EnvLogLevel = "BREWBOT_LOG_LEVEL"

	EnvDBDSN  = "BREWBOT_DB_DSN"
	EnvDBHost = "BREWBOT_DB_HOST"
	EnvDBUser = "BREWBOT_DB_USER"
	EnvDBName = "BREWBOT_DB_NAME"

	EnvRedisURL = "BREWBOT_REDIS_URL"

	EnvVerifyToken     = "BREWBOT_MESSENGER_VERIFY_TOKEN"
	EnvPageAccessToken = "BREWBOT_MESSENGER_PAGE_ACCESS_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
