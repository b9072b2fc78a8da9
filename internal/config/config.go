package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Order    OrderConfig
	Feed     FeedConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the shared keys checked by the HTTP middleware. The
// gateway in front of the service authenticates end users.
type AuthConfig struct {
	APIKey      string
	AdminAPIKey string
}

// OrderConfig controls order number allocation.
type OrderConfig struct {
	NumberPrefix      string
	NumberMaxAttempts int
}

// FeedConfig holds the restock feed source. Feeds are read from S3 when
// enabled and from local disk otherwise.
type FeedConfig struct {
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Prefix  string // key prefix within the bucket, e.g. "restock/"
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server:   loadServer(),
		Database: loadDatabase(),
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey:      getEnv("API_KEY", ""),
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Order: OrderConfig{
			NumberPrefix:      getEnv("ORDER_NUMBER_PREFIX", "ORD"),
			NumberMaxAttempts: getEnvAsInt("ORDER_NUMBER_MAX_ATTEMPTS", 5),
		},
		Feed: loadFeed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServer() ServerConfig {
	return ServerConfig{
		Host: getEnv("SERVER_HOST", "0.0.0.0"),
		Port: getEnvAsInt("SERVER_PORT", 8080),
	}
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "storefront"),
		MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
		MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
		MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
	}
}

func loadFeed() FeedConfig {
	return FeedConfig{
		S3Enabled: getEnvAsBool("FEED_S3_ENABLED", false),
		S3Bucket:  getEnv("FEED_S3_BUCKET", ""),
		S3Region:  getEnv("FEED_S3_REGION", "us-east-1"),
		S3Prefix:  getEnv("FEED_S3_PREFIX", "restock/"),
	}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.Server.validate,
		c.Database.validate,
		c.Auth.validate,
		c.Order.validate,
		c.Logger.validate,
		c.Feed.validate,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

func (c *ServerConfig) validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	switch {
	case c.Host == "":
		return errors.New("database host is required")
	case !validPort(c.Port):
		return fmt.Errorf("invalid database port: %d", c.Port)
	case c.User == "":
		return errors.New("database user is required")
	case c.Database == "":
		return errors.New("database name is required")
	case c.MaxConnections < 1:
		return errors.New("database max connections must be at least 1")
	case c.MinConnections < 1:
		return errors.New("database min connections must be at least 1")
	case c.MinConnections > c.MaxConnections:
		return errors.New("database min connections cannot exceed max connections")
	}
	return nil
}

func (c *AuthConfig) validate() error {
	switch {
	case c.APIKey == "":
		return errors.New("API key is required")
	case c.AdminAPIKey == "":
		return errors.New("admin API key is required")
	case c.AdminAPIKey == c.APIKey:
		// Otherwise every client holding the API key would be an admin.
		return errors.New("admin API key must differ from the API key")
	}
	return nil
}

func (c *OrderConfig) validate() error {
	if c.NumberPrefix == "" {
		return errors.New("order number prefix is required")
	}
	if c.NumberMaxAttempts < 1 {
		return errors.New("order number max attempts must be at least 1")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (c *LoggerConfig) validate() error {
	if !validLogLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}
	return nil
}

func (c *FeedConfig) validate() error {
	if !c.S3Enabled {
		return nil
	}
	if c.S3Bucket == "" {
		return errors.New("feed S3 bucket is required when S3 is enabled")
	}
	if c.S3Region == "" {
		return errors.New("feed S3 region is required when S3 is enabled")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection URL. Credentials are
// escaped, so passwords may contain URL metacharacters.
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Address returns the listen address of the HTTP server.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// getEnv returns the variable, or def when it is unset or empty.
func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return def
}

// getEnvAsInt returns the variable parsed as an int, or def when it is
// unset or not a number.
func getEnvAsInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

// getEnvAsBool returns the variable parsed as a bool, or def when it is
// unset or unparsable.
func getEnvAsBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return b
}
