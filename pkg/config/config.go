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
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Allocation   AllocationConfig
	Quote        QuoteConfig
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
	Env          string `envconfig:"EVDOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"EVDOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EVDOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EVDOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"EVDOCK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"EVDOCK_DB_DSN"`
	Driver string `envconfig:"EVDOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EVDOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"EVDOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EVDOCK_DB_USER"`
	LegacyPassword string `envconfig:"EVDOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"EVDOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"EVDOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EVDOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EVDOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EVDOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVDOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EVDOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EVDOCK_REDIS_ADDR"`
	Password     string        `envconfig:"EVDOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVDOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVDOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVDOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVDOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVDOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EVDOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"EVDOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"EVDOCK_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"EVDOCK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EVDOCK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"EVDOCK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EVDOCK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic             string `envconfig:"EVDOCK_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription      string `envconfig:"EVDOCK_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
	AllocationsTopic        string `envconfig:"EVDOCK_PUBSUB_ALLOCATIONS_TOPIC" required:"true"`
	AllocationsSubscription string `envconfig:"EVDOCK_PUBSUB_ALLOCATIONS_SUBSCRIPTION" required:"true"`
	InventoryTopic          string `envconfig:"EVDOCK_PUBSUB_INVENTORY_TOPIC" required:"true"`
	InventorySubscription   string `envconfig:"EVDOCK_PUBSUB_INVENTORY_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"EVDOCK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"EVDOCK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"EVDOCK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"EVDOCK_OUTBOX_RETENTION_DAYS" default:"30"`
}

type AllocationConfig struct {
	DefaultLeadTimeDays     int           `envconfig:"EVDOCK_ALLOCATION_LEAD_TIME_DAYS" default:"14"`
	ReconcileInterval       time.Duration `envconfig:"EVDOCK_ALLOCATION_RECONCILE_INTERVAL" default:"1m"`
	ReconcileStaleAfter     time.Duration `envconfig:"EVDOCK_ALLOCATION_RECONCILE_STALE_AFTER" default:"5m"`
	MaxCompensationAttempts int           `envconfig:"EVDOCK_ALLOCATION_MAX_COMPENSATION_ATTEMPTS" default:"5"`
}

type QuoteConfig struct {
	ValidityDays int `envconfig:"EVDOCK_QUOTE_VALIDITY_DAYS" default:"14"`
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
