package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign session tokens
	SessionTTLHours int    // session token time-to-live in hours
	OtpTTLMin       int    // OTP challenge time-to-live in minutes
	OtpIssueGapSec  int    // minimum seconds between OTP issuances per email
	BcryptCost      int    // bcrypt cost for admin password hashing
	UploadDir       string // directory where uploaded paper files are stored
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The JWT secret is
// deliberately required: without it no protected endpoint can be served
// safely, so the service refuses to start.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                    // environment (dev/test/prod)
		Port:            must("APP_PORT"),                   // port to bind the HTTP server
		DBUser:          must("DB_USER"),                    // database user
		DBPass:          os.Getenv("DB_PASS"),               // database password (empty allowed)
		DBHost:          must("DB_HOST"),                    // database host
		DBPort:          must("DB_PORT"),                    // database port
		DBName:          must("DB_NAME"),                    // database name
		JWTSecret:       must("JWT_SECRET"),                 // secret used for signing session tokens
		SessionTTLHours: mustInt("SESSION_TTL_HOURS"),       // TTL for session tokens in hours
		OtpTTLMin:       envIntDef("OTP_TTL_MIN", 10),       // OTP validity window in minutes
		OtpIssueGapSec:  envIntDef("OTP_ISSUE_GAP_SEC", 60), // per-email re-issue throttle in seconds
		BcryptCost:      mustInt("BCRYPT_COST"),             // bcrypt cost factor
		UploadDir:       envStrDef("UPLOAD_DIR", "uploads"), // paper file storage directory
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envStrDef returns the value of an optional environment variable or the
// supplied default when it is unset or empty.
func envStrDef(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envIntDef is like envStrDef for integers.  Unparsable values fall back
// to the default rather than aborting startup.
func envIntDef(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
