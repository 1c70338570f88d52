package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses durations such as the reaper interval
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The types reflect how the
// values are used in the application: strings for identifiers and
// secrets, durations for TTLs and intervals.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to verify access tokens
	LockTTL      time.Duration // how long a seat lock stays valid
	ReapInterval time.Duration // how often expired locks are swept
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The seat lock TTL defaults to 15 minutes and the reaper interval to
// one minute when not configured.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),                          // environment (dev/test/prod)
		Port:         must("APP_PORT"),                         // port to bind the HTTP server
		DBUser:       must("DB_USER"),                          // database user
		DBPass:       os.Getenv("DB_PASS"),                     // database password (empty allowed)
		DBHost:       must("DB_HOST"),                          // database host
		DBPort:       must("DB_PORT"),                          // database port
		DBName:       must("DB_NAME"),                          // database name
		JWTSecret:    must("JWT_SECRET"),                       // secret used for verifying JWTs
		LockTTL:      minutes("LOCK_TTL_MIN", 15),              // seat lock TTL in minutes
		ReapInterval: duration("REAPER_INTERVAL", time.Minute), // sweep cadence for expired locks
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// minutes reads an integer environment variable and interprets it as
// a number of minutes, falling back to the default when unset.  An
// unparseable value is a fatal configuration error.
func minutes(key string, def int) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return time.Duration(def) * time.Minute
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return time.Duration(n) * time.Minute
}

// duration reads a Go duration string (e.g. "1m", "30s") from the
// environment, falling back to the default when unset.  An
// unparseable value is a fatal configuration error.
func duration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
