package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	API       APIConfig
	Session   SessionConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Query     QueryConfig
	Storage   StorageConfig
	Dashboard DashboardConfig
}

// APIConfig describes the upstream REST backend.
type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	WithCredentials bool
}

// SessionConfig controls where credential cookies live and for how long.
type SessionConfig struct {
	Store     string
	File      string
	TTL       time.Duration
	KeyPrefix string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// QueryConfig tunes the client-side query cache.
type QueryConfig struct {
	CacheTTL       time.Duration
	RefetchWorkers int
	SearchDebounce time.Duration
}

// StorageConfig points at the directory downloaded backups are written to.
// Downloads older than BackupRetention are pruned at startup; zero keeps them.
type StorageConfig struct {
	BackupsDir      string
	BackupRetention time.Duration
}

// DashboardConfig governs dashboard composition.
type DashboardConfig struct {
	PageSize int
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.API = APIConfig{
		BaseURL:         strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout:         parseDuration(v.GetString("API_TIMEOUT"), 10*time.Second),
		WithCredentials: v.GetBool("API_WITH_CREDENTIALS"),
	}

	cfg.Session = SessionConfig{
		Store:     strings.ToLower(v.GetString("SESSION_STORE")),
		File:      v.GetString("SESSION_FILE"),
		TTL:       parseDuration(v.GetString("SESSION_TTL"), 7*24*time.Hour),
		KeyPrefix: v.GetString("SESSION_KEY_PREFIX"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Query = QueryConfig{
		CacheTTL:       parseDuration(v.GetString("QUERY_CACHE_TTL"), time.Minute),
		RefetchWorkers: v.GetInt("REFETCH_WORKERS"),
		SearchDebounce: parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
	}

	cfg.Storage = StorageConfig{
		BackupsDir:      v.GetString("BACKUPS_DIR"),
		BackupRetention: parseDuration(v.GetString("BACKUP_RETENTION"), 0),
	}

	cfg.Dashboard = DashboardConfig{PageSize: v.GetInt("DASHBOARD_PAGE_SIZE")}
	if cfg.Dashboard.PageSize <= 0 {
		cfg.Dashboard.PageSize = 100
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("API_WITH_CREDENTIALS", true)

	v.SetDefault("SESSION_STORE", SessionStoreFile)
	v.SetDefault("SESSION_FILE", "./.session.json")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_KEY_PREFIX", "console:session:")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("QUERY_CACHE_TTL", "60s")
	v.SetDefault("REFETCH_WORKERS", 2)
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")

	v.SetDefault("BACKUPS_DIR", "./backups")
	v.SetDefault("BACKUP_RETENTION", "720h")
	v.SetDefault("DASHBOARD_PAGE_SIZE", 100)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file")
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
