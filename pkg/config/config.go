package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	GCP          GCPConfig
	Firestore    FirestoreConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Session      SessionConfig
	PubSub       PubSubConfig
	Metrics      MetricsConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validateDriver(); err != nil {
		return nil, err
	}
	if cfg.DB.UsesSQL() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.DB.IsFirestore() && strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvDBDriver, DriverFirestore)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERFORM_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERFORM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ORDERFORM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERFORM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"ORDERFORM_DB_DRIVER" default:"firestore"`
	DSN    string `envconfig:"ORDERFORM_DB_DSN"`

	LegacyHost     string `envconfig:"ORDERFORM_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERFORM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERFORM_DB_USER"`
	LegacyPassword string `envconfig:"ORDERFORM_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERFORM_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERFORM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERFORM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERFORM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERFORM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERFORM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsFirestore reports whether orders live in Cloud Firestore.
func (db DBConfig) IsFirestore() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverFirestore)
}

// UsesSQL reports whether orders live in a GORM-backed database.
func (db DBConfig) UsesSQL() bool {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverPostgres, DriverSQLite:
		return true
	}
	return false
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type GCPConfig struct {
	ProjectID       string `envconfig:"ORDERFORM_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"ORDERFORM_GCP_CREDENTIALS_JSON"`
}

type FirestoreConfig struct {
	DatabaseID       string `envconfig:"ORDERFORM_FIRESTORE_DATABASE_ID" default:"(default)"`
	OrdersCollection string `envconfig:"ORDERFORM_FIRESTORE_ORDERS_COLLECTION" default:"orders"`
	// EmulatorHost mirrors FIRESTORE_EMULATOR_HOST so local runs can point at the emulator from .env.
	EmulatorHost string `envconfig:"ORDERFORM_FIRESTORE_EMULATOR_HOST"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERFORM_REDIS_URL"`
	Address      string        `envconfig:"ORDERFORM_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERFORM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERFORM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERFORM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERFORM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERFORM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERFORM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERFORM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"ORDERFORM_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"ORDERFORM_JWT_ISSUER" required:"true"`
	// ExpirationMinutes is only used when minting tokens for local tooling and tests.
	ExpirationMinutes int `envconfig:"ORDERFORM_JWT_EXPIRATION_MINUTES" default:"60"`
}

type SessionConfig struct {
	OrdersTTL time.Duration `envconfig:"ORDERFORM_SESSION_ORDERS_TTL" default:"12h"`
	// DeviceCookie names the cookie that identifies a browser for theme preferences.
	DeviceCookie string `envconfig:"ORDERFORM_SESSION_DEVICE_COOKIE" default:"of_device"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"ORDERFORM_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.OrdersTopic) != ""
}

type MetricsConfig struct {
	Namespace string `envconfig:"ORDERFORM_METRICS_NAMESPACE" default:"orderform"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ORDERFORM_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDERFORM_AUTO_MIGRATE" default:"false"`
}

func (db DBConfig) validateDriver() error {
	if db.IsFirestore() || db.UsesSQL() {
		return nil
	}
	return fmt.Errorf("unsupported %s %q (expected %s, %s or %s)", EnvDBDriver, db.Driver, DriverFirestore, DriverPostgres, DriverSQLite)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:orderform.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
