package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	GinMode     string `mapstructure:"GIN_MODE"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Upstream itinerary generator.
	ItineraryAPIURL  string        `mapstructure:"ITINERARY_API_URL"`
	ItineraryTimeout time.Duration `mapstructure:"ITINERARY_TIMEOUT"`

	// Google Maps: the server key calls the Directions API, the browser key loads the map widget.
	GoogleMapsAPIKey     string `mapstructure:"GOOGLE_MAPS_API_KEY"`
	GoogleMapsBrowserKey string `mapstructure:"GOOGLE_MAPS_BROWSER_KEY"`

	DisplayLocale string `mapstructure:"DISPLAY_LOCALE"`

	// Dashboard sessions.
	SessionStore   string        `mapstructure:"SESSION_STORE"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure   bool          `mapstructure:"COOKIE_SECURE"`
	AuthSignOutURL string        `mapstructure:"AUTH_SIGNOUT_URL"`

	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Itinerary archive. Disabled unless DATABASE_URL or DB_HOST is set.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// Comma separated proxy CIDRs whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
}

var defaults = map[string]interface{}{
	"PORT":                    "8080",
	"ENV":                     "development",
	"GIN_MODE":                "",
	"LOG_LEVEL":               "info",
	"FRONTEND_URL":            "",
	"ITINERARY_API_URL":       "https://march-cohort-kr64.onrender.com",
	"ITINERARY_TIMEOUT":       "0s",
	"GOOGLE_MAPS_API_KEY":     "",
	"GOOGLE_MAPS_BROWSER_KEY": "",
	"DISPLAY_LOCALE":          "en-IN",
	"SESSION_STORE":           "memory",
	"SESSION_TTL":             "24h",
	"COOKIE_SECURE":           false,
	"AUTH_SIGNOUT_URL":        "/",
	"REDIS_ADDR":              "localhost:6379",
	"REDIS_PASSWORD":          "",
	"REDIS_SESSION_DB":        0,
	"DATABASE_URL":            "",
	"DB_HOST":                 "",
	"DB_PORT":                 "5432",
	"DB_USER":                 "postgres",
	"DB_PASSWORD":             "postgres",
	"DB_NAME":                 "omtours",
	"DB_SSLMODE":              "disable",
	"MAX_REQUESTS_PER_MIN":    30,
	"TRUSTED_PROXIES":         "",
}

// Load reads .env (ignored when absent), then environment variables and an optional
// config.yaml in the working directory or ./config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ItineraryAPIURL = strings.TrimRight(cfg.ItineraryAPIURL, "/")
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ArchiveEnabled reports whether a Postgres archive has been configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != "" || c.DBHost != ""
}

// DSN returns DATABASE_URL when set, otherwise a DSN built from the DB_* values.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// AllowedOrigins returns the local dev origins plus every comma separated FRONTEND_URL entry.
func (c *Config) AllowedOrigins() []string {
	return append([]string{"http://localhost:5173", "http://localhost:3000"}, splitList(c.FrontendURL)...)
}

// TrustedProxyList returns the TRUSTED_PROXIES entries, nil when none are set.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
