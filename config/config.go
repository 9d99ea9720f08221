// Package config loads the console configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

type DatabaseOptions struct {
	// PCM holds the cost and master data.
	PCM string `env:"CONSOLE_DB_PCM" envDefault:"TcPCM_Test"`
	// Console holds the console's own bookkeeping tables.
	Console string `env:"CONSOLE_DB_CONSOLE" envDefault:"TcPCM_Console"`
}

// OAuthOptions configure the password-credentials grant used to obtain a
// bearer token for the query proxy. Leaving User empty disables the grant.
type OAuthOptions struct {
	ClientID     string `env:"CONSOLE_CLIENT_ID" envDefault:"TcPCM"`
	ClientSecret string `env:"CONSOLE_CLIENT_SECRET"`
	User         string `env:"CONSOLE_API_USER"`
	Password     string `env:"CONSOLE_API_PASSWORD"`
}

func (o OAuthOptions) Enabled() bool {
	return o.User != ""
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Databases  DatabaseOptions
	OAuth      OAuthOptions
	Prometheus PrometheusOptions

	ServerURL       string        `env:"CONSOLE_SERVER_URL" envDefault:"http://localhost"`
	APIPath         string        `env:"CONSOLE_API_PATH" envDefault:"/tcpcm"`
	HTTPTimeout     time.Duration `env:"CONSOLE_HTTP_TIMEOUT" envDefault:"30s"`
	PageSize        int           `env:"CONSOLE_PAGE_SIZE" envDefault:"15"`
	Debounce        time.Duration `env:"CONSOLE_DEBOUNCE" envDefault:"300ms"`
	DefaultLanguage string        `env:"CONSOLE_DEFAULT_LANG" envDefault:"ko"`
	SessionTTL      time.Duration `env:"CONSOLE_SESSION_TTL" envDefault:"2h"`
	SessionMax      int           `env:"CONSOLE_SESSION_MAX" envDefault:"1024"`
	MaxUploadSize   int64         `env:"CONSOLE_MAX_UPLOAD_SIZE" envDefault:"10485760"`
	AdminPassword   string        `env:"CONSOLE_ADMIN_PASSWORD"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadEnv loads the env files that exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads the env files and parses the process environment into a
// validated Configuration.
func Load(envFiles ...string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration for values the console cannot work with.
func (c *Configuration) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CONSOLE_SERVER_URL must be an absolute URL, got %q", c.ServerURL)
	}
	if c.APIPath != "" && !strings.HasPrefix(c.APIPath, "/") {
		return fmt.Errorf("CONSOLE_API_PATH must start with '/', got %q", c.APIPath)
	}
	if c.Databases.PCM == "" || c.Databases.Console == "" {
		return fmt.Errorf("database names must not be empty")
	}
	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("CONSOLE_PAGE_SIZE must be between 1 and 500, got %d", c.PageSize)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("CONSOLE_DEBOUNCE must be non-negative, got %s", c.Debounce)
	}
	if c.SessionMax < 1 {
		return fmt.Errorf("CONSOLE_SESSION_MAX must be positive, got %d", c.SessionMax)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", c.LogFormat)
	}
	if c.Prometheus.Enabled && !strings.HasPrefix(c.Prometheus.Path, "/") {
		return fmt.Errorf("PROMETHEUS_METRICS_PATH must start with '/', got %q", c.Prometheus.Path)
	}
	return nil
}

// APIBase is the root of the cost system's REST API (token and import endpoints).
func (c *Configuration) APIBase() string {
	return c.ServerURL + c.APIPath
}

// DebounceMillis is the client-side keystroke delay for search inputs.
func (c *Configuration) DebounceMillis() int64 {
	return c.Debounce.Milliseconds()
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Configuration) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(c.LogrusLogLevel())
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
