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
	Redis        RedisConfig
	Stripe       StripeConfig
	Plans        PlansConfig
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
	Env          string `envconfig:"ATELIER_APP_ENV" required:"true"`
	Port         string `envconfig:"ATELIER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ATELIER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATELIER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ATELIER_DB_DSN"`
	Driver string `envconfig:"ATELIER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ATELIER_DB_HOST"`
	LegacyPort     int    `envconfig:"ATELIER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATELIER_DB_USER"`
	LegacyPassword string `envconfig:"ATELIER_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATELIER_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATELIER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ATELIER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ATELIER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ATELIER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATELIER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ATELIER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ATELIER_REDIS_ADDR"`
	Password     string        `envconfig:"ATELIER_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATELIER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATELIER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATELIER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATELIER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATELIER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATELIER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey             string `envconfig:"ATELIER_STRIPE_API_KEY"`
	WebhookSecret      string `envconfig:"ATELIER_STRIPE_WEBHOOK_SECRET"`
	Env                string `envconfig:"ATELIER_STRIPE_ENV" default:"test"`
	ConnectReturnURL   string `envconfig:"ATELIER_STRIPE_CONNECT_RETURN_URL"`
	ConnectRefreshURL  string `envconfig:"ATELIER_STRIPE_CONNECT_REFRESH_URL"`
	CheckoutSuccessURL string `envconfig:"ATELIER_STRIPE_CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `envconfig:"ATELIER_STRIPE_CHECKOUT_CANCEL_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PlansConfig carries the raw plan catalog override. When CatalogJSON is
// empty the built-in catalog ships; the fees package owns parsing and
// validation.
type PlansConfig struct {
	CatalogJSON string `envconfig:"ATELIER_PLAN_CATALOG_JSON"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ATELIER_AUTO_MIGRATE" default:"false"`
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
