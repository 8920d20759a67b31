package config

// EnvPrefix is handed to envconfig; every tag below carries the full variable name.
const EnvPrefix = "ORDERFORM"

const (
	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"
)

const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
)

const (
	EnvAppEnv       = "ORDERFORM_APP_ENV"
	EnvPort         = "ORDERFORM_APP_PORT"
	EnvDBDriver     = "ORDERFORM_DB_DRIVER"
	EnvDBDSN        = "ORDERFORM_DB_DSN"
	EnvDBHost       = "ORDERFORM_DB_HOST"
	EnvDBUser       = "ORDERFORM_DB_USER"
	EnvDBName       = "ORDERFORM_DB_NAME"
	EnvGCPProjectID = "ORDERFORM_GCP_PROJECT_ID"
	EnvRedisURL     = "ORDERFORM_REDIS_URL"
	EnvJWTSecret    = "ORDERFORM_JWT_SECRET"
	EnvJWTIssuer    = "ORDERFORM_JWT_ISSUER"
	EnvOrdersTTL    = "ORDERFORM_SESSION_ORDERS_TTL"
	EnvOrdersTopic  = "ORDERFORM_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
