package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "THRIFTBALES_DB_DSN"
	EnvDBHost = "THRIFTBALES_DB_HOST"
	EnvDBUser = "THRIFTBALES_DB_USER"
	EnvDBName = "THRIFTBALES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Email         EmailConfig
	SMS           SMSConfig
	Paystack      PaystackConfig
	Storage       StorageConfig
	Notify        NotifyConfig
	Reminder      ReminderConfig
	Verification  VerificationConfig
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
	Env          string `envconfig:"THRIFTBALES_APP_ENV" required:"true"`
	Port         string `envconfig:"THRIFTBALES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"THRIFTBALES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"THRIFTBALES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"THRIFTBALES_DB_DSN"`
	Driver string `envconfig:"THRIFTBALES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"THRIFTBALES_DB_HOST"`
	LegacyPort     int    `envconfig:"THRIFTBALES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"THRIFTBALES_DB_USER"`
	LegacyPassword string `envconfig:"THRIFTBALES_DB_PASSWORD"`
	LegacyName     string `envconfig:"THRIFTBALES_DB_NAME"`
	LegacySSLMode  string `envconfig:"THRIFTBALES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"THRIFTBALES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"THRIFTBALES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"THRIFTBALES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"THRIFTBALES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"THRIFTBALES_REDIS_URL" required:"true"`
	Password     string        `envconfig:"THRIFTBALES_REDIS_PASSWORD"`
	DB           int           `envconfig:"THRIFTBALES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"THRIFTBALES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"THRIFTBALES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"THRIFTBALES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"THRIFTBALES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"THRIFTBALES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"THRIFTBALES_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"THRIFTBALES_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"THRIFTBALES_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"THRIFTBALES_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"THRIFTBALES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"THRIFTBALES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"THRIFTBALES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"THRIFTBALES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"THRIFTBALES_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"THRIFTBALES_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"THRIFTBALES_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"THRIFTBALES_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"THRIFTBALES_AUTO_MIGRATE" default:"false"`
}

type EmailConfig struct {
	BaseURL string        `envconfig:"THRIFTBALES_EMAIL_BASE_URL" default:"https://api.resend.com"`
	APIKey  string        `envconfig:"THRIFTBALES_EMAIL_API_KEY"`
	Timeout time.Duration `envconfig:"THRIFTBALES_EMAIL_TIMEOUT" default:"10s"`
}

type SMSConfig struct {
	BaseURL string        `envconfig:"THRIFTBALES_SMS_BASE_URL"`
	APIKey  string        `envconfig:"THRIFTBALES_SMS_API_KEY"`
	Secret  string        `envconfig:"THRIFTBALES_SMS_SECRET"`
	Timeout time.Duration `envconfig:"THRIFTBALES_SMS_TIMEOUT" default:"10s"`
}

type PaystackConfig struct {
	BaseURL   string        `envconfig:"THRIFTBALES_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	SecretKey string        `envconfig:"THRIFTBALES_PAYSTACK_SECRET_KEY"`
	Timeout   time.Duration `envconfig:"THRIFTBALES_PAYSTACK_TIMEOUT" default:"15s"`
}

type StorageConfig struct {
	BaseURL    string        `envconfig:"THRIFTBALES_STORAGE_BASE_URL"`
	Bucket     string        `envconfig:"THRIFTBALES_STORAGE_BUCKET" default:"product-images"`
	ServiceKey string        `envconfig:"THRIFTBALES_STORAGE_SERVICE_KEY"`
	Timeout    time.Duration `envconfig:"THRIFTBALES_STORAGE_TIMEOUT" default:"30s"`
}

type NotifyConfig struct {
	FromEmail  string `envconfig:"THRIFTBALES_NOTIFY_FROM_EMAIL" default:"orders@thriftbales.co.za"`
	SalesEmail string `envconfig:"THRIFTBALES_NOTIFY_SALES_EMAIL" default:"sales@thriftbales.co.za"`
	StoreName  string `envconfig:"THRIFTBALES_NOTIFY_STORE_NAME" default:"Thrift Bales"`
}

type VerificationConfig struct {
	PinLength  int           `envconfig:"THRIFTBALES_PIN_LENGTH" default:"5"`
	PinTTL     time.Duration `envconfig:"THRIFTBALES_PIN_TTL" default:"10m"`
	SendWindow time.Duration `envconfig:"THRIFTBALES_PIN_SEND_WINDOW" default:"1m"`
	SendLimit  int           `envconfig:"THRIFTBALES_PIN_SEND_LIMIT" default:"3"`
}

type ReminderConfig struct {
	Interval   time.Duration `envconfig:"THRIFTBALES_REMINDER_INTERVAL" default:"24h"`
	MinimumAge time.Duration `envconfig:"THRIFTBALES_REMINDER_MINIMUM_AGE" default:"72h"`
	LockTTL    time.Duration `envconfig:"THRIFTBALES_REMINDER_LOCK_TTL" default:"23h"`
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
