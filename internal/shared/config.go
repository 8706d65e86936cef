package shared

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv           string
	APIBaseURL       string
	BookingsUnderAPI bool
	ProbeTimeout     time.Duration
	RequestTimeout   time.Duration
	RateRPS          int
	PrefsPath        string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	CacheTTL         time.Duration
	PrefetchWorkers  int

	// stub server only
	HTTPAddr    string
	MetricsAddr string
}

// fileConfig mirrors the optional YAML config file. Env always wins.
type fileConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	RedisAddr  string `yaml:"redis_addr"`
	PrefsPath  string `yaml:"prefs_path"`
	AppEnv     string `yaml:"app_env"`
}

func Load() Config {
	// .env is a development convenience; ignore if absent.
	_ = godotenv.Load()

	fc := loadFile()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:           env("APP_ENV", or(fc.AppEnv, "prod")),
		APIBaseURL:       env("API_BASE_URL", or(fc.APIBaseURL, "http://localhost:8080")),
		BookingsUnderAPI: envBool("BOOKINGS_UNDER_API", true),
		ProbeTimeout:     time.Duration(atoi("PROBE_TIMEOUT_MS", 2000)) * time.Millisecond,
		RequestTimeout:   time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 20)) * time.Second,
		RateRPS:          atoi("RATE_RPS", 5),
		PrefsPath:        env("PREFS_PATH", or(fc.PrefsPath, defaultPrefsPath())),
		RedisAddr:        env("REDIS_ADDR", fc.RedisAddr),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		CacheTTL:         time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		PrefetchWorkers:  atoi("PREFETCH_WORKERS", 8),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		MetricsAddr:      env("METRICS_ADDR", ""),
	}
	return c
}

// loadFile reads $STAYBOOK_CONFIG, else ~/.config/staybook/config.yaml, if present.
func loadFile() fileConfig {
	var fc fileConfig
	path := os.Getenv("STAYBOOK_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fc
		}
		path = filepath.Join(home, ".config", "staybook", "config.yaml")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fc
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config file ignored")
		return fileConfig{}
	}
	return fc
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "staybook.db"
	}
	return filepath.Join(home, ".staybook", "prefs.db")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
