package config

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "CHASEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "CHASEN_APP_ENV"
	EnvPort       = "CHASEN_APP_PORT"
	EnvDBDSN      = "CHASEN_DB_DSN"
	EnvDBHost     = "CHASEN_DB_HOST"
	EnvDBUser     = "CHASEN_DB_USER"
	EnvDBName     = "CHASEN_DB_NAME"
	EnvRedisURL   = "CHASEN_REDIS_URL"
	EnvJWTSecret  = "CHASEN_JWT_SECRET"
	EnvJWTIssuer  = "CHASEN_JWT_ISSUER"
	EnvJWTExpMins = "CHASEN_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
