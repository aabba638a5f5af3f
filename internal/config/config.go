package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Cart     CartConfig
	Admin    AdminConfig
	Mailer   MailerConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type LogConfig struct {
	Level string
}

// CartConfig selects the session cart store. Store is "memory" or "redis".
type CartConfig struct {
	Store     string
	RedisAddr string
	TTL       time.Duration
}

// AdminConfig carries the session signing secret and the elevation
// allow-list. Only emails on AllowedEmails ever receive the admin role.
type AdminConfig struct {
	AllowedEmails []string
	JWTSecret     string
	SessionTTL    time.Duration
}

// MailerConfig points at a Resend-style email API. An empty APIKey
// disables outbound email.
type MailerConfig struct {
	APIURL     string
	APIKey     string
	From       string
	AdminEmail string
	Timeout    time.Duration
}

type CatalogConfig struct {
	Path string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "fournil")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "fournil")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DB_MIGRATIONS_DIR", "migrations")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CART_STORE", "memory")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CART_TTL", "24h")
	viper.SetDefault("ADMIN_ALLOWED_EMAILS", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("SESSION_TTL", "12h")
	viper.SetDefault("MAILER_API_URL", "https://api.resend.com/emails")
	viper.SetDefault("MAILER_API_KEY", "")
	viper.SetDefault("MAILER_FROM", "")
	viper.SetDefault("MAILER_ADMIN_EMAIL", "")
	viper.SetDefault("MAILER_TIMEOUT", "10s")
	viper.SetDefault("CATALOG_PATH", "catalog.yaml")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	cartTTL, err := time.ParseDuration(viper.GetString("CART_TTL"))
	if err != nil {
		return nil, err
	}
	sessionTTL, err := time.ParseDuration(viper.GetString("SESSION_TTL"))
	if err != nil {
		return nil, err
	}
	mailerTimeout, err := time.ParseDuration(viper.GetString("MAILER_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			MigrationsDir:   viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Cart: CartConfig{
			Store:     viper.GetString("CART_STORE"),
			RedisAddr: viper.GetString("REDIS_ADDR"),
			TTL:       cartTTL,
		},
		Admin: AdminConfig{
			AllowedEmails: splitCSV(viper.GetString("ADMIN_ALLOWED_EMAILS")),
			JWTSecret:     viper.GetString("JWT_SECRET"),
			SessionTTL:    sessionTTL,
		},
		Mailer: MailerConfig{
			APIURL:     viper.GetString("MAILER_API_URL"),
			APIKey:     viper.GetString("MAILER_API_KEY"),
			From:       viper.GetString("MAILER_FROM"),
			AdminEmail: viper.GetString("MAILER_ADMIN_EMAIL"),
			Timeout:    mailerTimeout,
		},
		Catalog: CatalogConfig{
			Path: viper.GetString("CATALOG_PATH"),
		},
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
