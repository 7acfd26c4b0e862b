package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Paystack      PaystackConfig
	Rates         RatesConfig
	Mail          MailConfig
	Shop          ShopConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"ADEPA_APP_ENV" required:"true"`
	Port         string `envconfig:"ADEPA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ADEPA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ADEPA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ADEPA_DB_DSN"`
	Driver string `envconfig:"ADEPA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ADEPA_DB_HOST"`
	LegacyPort     int    `envconfig:"ADEPA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ADEPA_DB_USER"`
	LegacyPassword string `envconfig:"ADEPA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ADEPA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ADEPA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ADEPA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ADEPA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ADEPA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ADEPA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"ADEPA_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ADEPA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ADEPA_REDIS_ADDR"`
	Password     string        `envconfig:"ADEPA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ADEPA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ADEPA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ADEPA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ADEPA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ADEPA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ADEPA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ADEPA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ADEPA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ADEPA_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ADEPA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ADEPA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ADEPA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ADEPA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ADEPA_ARGON_KEY_LEN" default:"32"`
}

type PaystackConfig struct {
	SecretKey   string        `envconfig:"ADEPA_PAYSTACK_SECRET_KEY" required:"true"`
	BaseURL     string        `envconfig:"ADEPA_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackURL string        `envconfig:"ADEPA_PAYSTACK_CALLBACK_URL" required:"true"`
	Timeout     time.Duration `envconfig:"ADEPA_PAYSTACK_TIMEOUT" default:"15s"`
}

type RatesConfig struct {
	BaseURL         string        `envconfig:"ADEPA_RATES_BASE_URL" default:"https://open.er-api.com/v6"`
	RefreshInterval time.Duration `envconfig:"ADEPA_RATES_REFRESH_INTERVAL" default:"6h"`
	CacheTTL        time.Duration `envconfig:"ADEPA_RATES_CACHE_TTL" default:"12h"`
	Timeout         time.Duration `envconfig:"ADEPA_RATES_TIMEOUT" default:"10s"`
}

type MailConfig struct {
	APIKey      string `envconfig:"ADEPA_MAIL_API_KEY"`
	BaseURL     string `envconfig:"ADEPA_MAIL_BASE_URL" default:"https://api.sendgrid.com"`
	DefaultFrom string `envconfig:"ADEPA_MAIL_FROM_EMAIL" default:"no-reply@adepa.shop"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ADEPA_LOGIN_RATE_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"ADEPA_LOGIN_RATE_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"ADEPA_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"ADEPA_REGISTER_RATE_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"ADEPA_REGISTER_RATE_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"ADEPA_REGISTER_RATE_EMAIL_LIMIT" default:"3"`
}

type ShopConfig struct {
	BaseCurrency string `envconfig:"ADEPA_SHOP_BASE_CURRENCY" default:"GHS"`
	AdminEmail   string `envconfig:"ADEPA_SHOP_ADMIN_EMAIL" required:"true"`
	StoreName    string `envconfig:"ADEPA_SHOP_NAME" default:"Adepa"`
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
