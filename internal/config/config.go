// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	AutoMigrate    bool   // apply embedded migrations on startup
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	LogLevel       string // debug, info, warn, error
	LogFormat      string // text or json
	AMQPURL        string // RabbitMQ URL; empty disables rental events
	RentalLogPath  string // file the rental event consumer appends to
}

// LoadDotEnv loads the given files (".env" when none) into the process
// environment. Variables that are already set win; missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration values from the environment and returns a
// Config. Missing or malformed required values cause the program to exit
// with a fatal log message.
func Load() Config {
	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse builds a Config from lookup, reporting the first missing or
// malformed required variable.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}
	cfg := Config{
		Env:            e.must("APP_ENV"),
		Port:           e.must("APP_PORT"),
		DBUser:         e.must("DB_USER"),
		DBPass:         e.str("DB_PASS", ""),
		DBHost:         e.must("DB_HOST"),
		DBPort:         e.must("DB_PORT"),
		DBName:         e.must("DB_NAME"),
		AutoMigrate:    e.str("DB_AUTO_MIGRATE", "true") == "true",
		JWTSecret:      e.must("JWT_SECRET"),
		AccessTTLMin:   e.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: e.mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     e.mustInt("BCRYPT_COST"),
		LogLevel:       e.str("LOG_LEVEL", "info"),
		LogFormat:      e.str("LOG_FORMAT", "text"),
		AMQPURL:        e.str("RABBITMQ_URL", e.str("AMQP_URL", "")),
		RentalLogPath:  e.str("RENTAL_LOG_PATH", "logs/rentals.log"),
	}
	return cfg, e.err
}

// DSN renders the MySQL data source name. parseTime maps DATETIME to
// time.Time, loc=UTC keeps times consistent and clientFoundRows makes
// RowsAffected count matched rows.
func (c Config) DSN() string {
	auth := c.DBUser
	if c.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", c.DBUser, c.DBPass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, c.DBHost, c.DBPort, c.DBName)
}

// env records the first failure so Parse can report it after reading
// every variable.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

// must retrieves the value of a required environment variable.
func (e *env) must(key string) string {
	v, ok := e.lookup(key)
	if (!ok || v == "") && e.err == nil {
		e.err = fmt.Errorf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func (e *env) mustInt(key string) int {
	s := e.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n
}
