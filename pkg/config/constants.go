package config

const (
	EnvPrefix = "SKYBOOK"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "SKYBOOK_APP_ENV"
	EnvPort     = "SKYBOOK_APP_PORT"
	EnvDBDSN    = "SKYBOOK_DB_DSN"
	EnvDBHost   = "SKYBOOK_DB_HOST"
	EnvDBUser   = "SKYBOOK_DB_USER"
	EnvDBName   = "SKYBOOK_DB_NAME"
	EnvRedisURL = "SKYBOOK_REDIS_URL"
	EnvGCPProj  = "SKYBOOK_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
