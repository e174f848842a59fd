package config

const (
	EnvPrefix = "GRAVADOR"

	AppEnvDev        = "dev"
	AppEnvProd       = "prod"
	AppEnvProduction = "production"

	EnvAppEnv   = "GRAVADOR_APP_ENV"
	EnvPort     = "GRAVADOR_APP_PORT"
	EnvLogLevel = "GRAVADOR_LOG_LEVEL"

	EnvDBDSN  = "GRAVADOR_DB_DSN"
	EnvDBHost = "GRAVADOR_DB_HOST"
	EnvDBUser = "GRAVADOR_DB_USER"
	EnvDBName = "GRAVADOR_DB_NAME"

	EnvRedisURL = "GRAVADOR_REDIS_URL"

	EnvJWTSecret = "GRAVADOR_JWT_SECRET"
	EnvJWTIssuer = "GRAVADOR_JWT_ISSUER"

	EnvAppmaxWebhookSecret = "APPMAX_WEBHOOK_SECRET"
	EnvAppmaxAllowUnsigned = "GRAVADOR_APPMAX_ALLOW_UNSIGNED"

	EnvMetaPixelID     = "GRAVADOR_META_PIXEL_ID"
	EnvMetaAccessToken = "GRAVADOR_META_ACCESS_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
