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
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Appmax       AppmaxConfig
	Checkout     CheckoutConfig
	Conversions  ConversionsConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
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
	Env          string   `envconfig:"GRAVADOR_APP_ENV" required:"true"`
	Port         string   `envconfig:"GRAVADOR_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"GRAVADOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GRAVADOR_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"GRAVADOR_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, AppEnvProduction)
}

type ServiceConfig struct {
	Kind string `envconfig:"GRAVADOR_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GRAVADOR_DB_DSN"`
	Driver string `envconfig:"GRAVADOR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GRAVADOR_DB_HOST"`
	LegacyPort     int    `envconfig:"GRAVADOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRAVADOR_DB_USER"`
	LegacyPassword string `envconfig:"GRAVADOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRAVADOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRAVADOR_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"GRAVADOR_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"GRAVADOR_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"GRAVADOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRAVADOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GRAVADOR_REDIS_URL"`
	Address      string        `envconfig:"GRAVADOR_REDIS_ADDR"`
	Password     string        `envconfig:"GRAVADOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRAVADOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRAVADOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRAVADOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRAVADOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRAVADOR_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"GRAVADOR_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"GRAVADOR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GRAVADOR_JWT_ISSUER" default:"gravador-medico"`
	ExpirationMinutes int    `envconfig:"GRAVADOR_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GRAVADOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GRAVADOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GRAVADOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GRAVADOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GRAVADOR_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GRAVADOR_AUTO_MIGRATE" default:"false"`
}

// AppmaxConfig holds the payment gateway webhook settings. The secret keeps
// the gateway's own variable name so existing deployments carry over.
type AppmaxConfig struct {
	WebhookSecret  string        `envconfig:"APPMAX_WEBHOOK_SECRET"`
	AllowUnsigned  bool          `envconfig:"GRAVADOR_APPMAX_ALLOW_UNSIGNED" default:"false"`
	Tolerance      time.Duration `envconfig:"GRAVADOR_APPMAX_TIMESTAMP_TOLERANCE" default:"5m"`
	IdempotencyTTL time.Duration `envconfig:"GRAVADOR_APPMAX_IDEMPOTENCY_TTL" default:"10m"`
}

// UnsignedAllowed reports whether deliveries may skip signature checks when
// no secret is configured. Production never allows it.
func (c *Config) UnsignedAllowed() bool {
	if c == nil || c.App.IsProd() {
		return false
	}
	return c.Appmax.AllowUnsigned
}

type CheckoutConfig struct {
	RecoveryWindow time.Duration `envconfig:"GRAVADOR_CHECKOUT_RECOVERY_WINDOW" default:"24h"`
	AbandonAfter   time.Duration `envconfig:"GRAVADOR_CHECKOUT_ABANDON_AFTER" default:"1h"`
	IdempotencyTTL time.Duration `envconfig:"GRAVADOR_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type ConversionsConfig struct {
	PixelID     string        `envconfig:"GRAVADOR_META_PIXEL_ID"`
	AccessToken string        `envconfig:"GRAVADOR_META_ACCESS_TOKEN"`
	APIVersion  string        `envconfig:"GRAVADOR_META_API_VERSION" default:"v19.0"`
	BaseURL     string        `envconfig:"GRAVADOR_META_BASE_URL" default:"https://graph.facebook.com"`
	TestCode    string        `envconfig:"GRAVADOR_META_TEST_EVENT_CODE"`
	Timeout     time.Duration `envconfig:"GRAVADOR_META_TIMEOUT" default:"5s"`
	Currency    string        `envconfig:"GRAVADOR_META_CURRENCY" default:"BRL"`
}

// Enabled reports whether conversions can be sent at all.
func (c ConversionsConfig) Enabled() bool {
	return strings.TrimSpace(c.PixelID) != "" && strings.TrimSpace(c.AccessToken) != ""
}

type AdminConfig struct {
	BootstrapEmail    string `envconfig:"GRAVADOR_ADMIN_EMAIL"`
	BootstrapPassword string `envconfig:"GRAVADOR_ADMIN_PASSWORD"`
	BootstrapName     string `envconfig:"GRAVADOR_ADMIN_NAME" default:"Administrador"`
}

// RateLimitConfig throttles admin login per client IP and per email.
type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"GRAVADOR_LOGIN_RATE_WINDOW" default:"15m"`
	LoginIPLimit    int           `envconfig:"GRAVADOR_LOGIN_RATE_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"GRAVADOR_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"GRAVADOR_CRON_INTERVAL" default:"15m"`
	WebhookLogRetention time.Duration `envconfig:"GRAVADOR_CRON_WEBHOOK_LOG_RETENTION" default:"2160h"`
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
