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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Workflow     WorkflowConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SKYBOOK_APP_ENV" required:"true"`
	Port         string `envconfig:"SKYBOOK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SKYBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKYBOOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SKYBOOK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SKYBOOK_DB_DSN"`
	Driver string `envconfig:"SKYBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SKYBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"SKYBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SKYBOOK_DB_USER"`
	LegacyPassword string `envconfig:"SKYBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SKYBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SKYBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKYBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKYBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKYBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKYBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKYBOOK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SKYBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"SKYBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKYBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKYBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKYBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKYBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKYBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKYBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`

	OrderCacheTTL time.Duration `envconfig:"SKYBOOK_REDIS_ORDER_CACHE_TTL" default:"1s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SKYBOOK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SKYBOOK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SKYBOOK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic         string `envconfig:"SKYBOOK_PUBSUB_ORDERS_TOPIC" default:"orders-events"`
	PaymentSubscription string `envconfig:"SKYBOOK_PUBSUB_PAYMENT_SUBSCRIPTION" default:"orders-events-payment"`
	TicketSubscription  string `envconfig:"SKYBOOK_PUBSUB_TICKET_SUBSCRIPTION" default:"orders-events-ticket"`
	OrderSubscription   string `envconfig:"SKYBOOK_PUBSUB_ORDER_SUBSCRIPTION" default:"orders-events-order"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SKYBOOK_OUTBOX_PUBLISH_BATCH_SIZE" default:"10"`
	PollIntervalMS int `envconfig:"SKYBOOK_OUTBOX_PUBLISH_POLL_MS" default:"2000"`
	MaxAttempts    int `envconfig:"SKYBOOK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type WorkflowConfig struct {
	// PollIntervalMS drives the snapshot poller cadence in workflow watchers.
	PollIntervalMS int    `envconfig:"SKYBOOK_WORKFLOW_POLL_MS" default:"800"`
	APIBaseURL     string `envconfig:"SKYBOOK_WORKFLOW_API_BASE_URL" default:"http://localhost:8080"`
}

func (w WorkflowConfig) PollInterval() time.Duration {
	if w.PollIntervalMS <= 0 {
		return 800 * time.Millisecond
	}
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SKYBOOK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
