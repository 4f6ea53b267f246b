package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Messenger MessengerConfig
	Session   SessionConfig
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
	Env          string `envconfig:"BREWBOT_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWBOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREWBOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREWBOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BREWBOT_DB_DSN"`
	Driver string `envconfig:"BREWBOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREWBOT_DB_HOST"`
	LegacyPort     int    `envconfig:"BREWBOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREWBOT_DB_USER"`
	LegacyPassword string `envconfig:"BREWBOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREWBOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREWBOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREWBOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREWBOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREWBOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREWBOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREWBOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREWBOT_REDIS_ADDR"`
	Password     string        `envconfig:"BREWBOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWBOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWBOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWBOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWBOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWBOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREWBOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MessengerConfig struct {
	VerifyToken     string        `envconfig:"BREWBOT_MESSENGER_VERIFY_TOKEN" required:"true"`
	PageAccessToken string        `envconfig:"BREWBOT_MESSENGER_PAGE_ACCESS_TOKEN" required:"true"`
	GraphBaseURL    string        `envconfig:"BREWBOT_MESSENGER_GRAPH_BASE_URL" default:"https://graph.facebook.com/v23.0"`
	SendTimeout     time.Duration `envconfig:"BREWBOT_MESSENGER_SEND_TIMEOUT" default:"10s"`
	WelcomeImageURL string        `envconfig:"BREWBOT_MESSENGER_WELCOME_IMAGE_URL"`
}

type SessionConfig struct {
	TTL        time.Duration `envconfig:"BREWBOT_SESSION_TTL" default:"24h"`
	EventDedup time.Duration `envconfig:"BREWBOT_EVENT_DEDUP_TTL" default:"10m"`
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
