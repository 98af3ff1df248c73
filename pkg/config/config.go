package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Backend       BackendConfig
	Auth          AuthConfig
	Session       SessionConfig
	Redis         RedisConfig
	Notifications NotificationConfig
	CORS          CORSConfig
	Log           LogConfig
	Export        ExportConfig
}

// BackendConfig points at the tuition REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig describes how the student's access token is located and verified.
type AuthConfig struct {
	JWTSecret  string
	CookieName string
}

// SessionConfig tunes the per-browser dashboard sessions.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NotificationConfig selects the toast store.
type NotificationConfig struct {
	RedisEnabled bool
	TTL          time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig toggles CSV/PDF export of the dashboard list.
type ExportConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:  v.GetString("JWT_SECRET"),
		CookieName: v.GetString("AUTH_COOKIE_NAME"),
	}

	cfg.Session = SessionConfig{
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 30*time.Minute),
		Secure:     cfg.Env == EnvProduction,
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Notifications = NotificationConfig{
		RedisEnabled: v.GetBool("ENABLE_REDIS_NOTIFICATIONS"),
		TTL:          parseDuration(v.GetString("NOTIFICATION_TTL"), 10*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Export = ExportConfig{Enabled: v.GetBool("ENABLE_EXPORT")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("AUTH_COOKIE_NAME", "access-token")

	v.SetDefault("SESSION_COOKIE_NAME", "tuition_session")
	v.SetDefault("SESSION_TTL", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_REDIS_NOTIFICATIONS", false)
	v.SetDefault("NOTIFICATION_TTL", "10m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_EXPORT", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
