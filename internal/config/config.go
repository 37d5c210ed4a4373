package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log" // log reports configuration errors and halts execution
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for costs and
// durations for lifetimes.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBDriver      string        // "mysql" or "sqlite3"
	DBUser        string        // database username (mysql)
	DBPass        string        // database password (optional)
	DBHost        string        // database host address (mysql)
	DBPort        string        // database port number (mysql)
	DBName        string        // database name (mysql)
	SQLitePath    string        // database file (sqlite3)
	JWTSecret     string        // secret used to sign bearer tokens
	AccessTTLMin  int           // bearer token time-to-live in minutes
	SessionTTL    time.Duration // lifetime of a browser session
	SessionStore  string        // "redis" or "sql"
	CookieSecure  bool          // mark the session cookie Secure
	BcryptCost    int           // bcrypt cost for password hashing
	LogLevel      string        // zerolog level name
	LogFormat     string        // "json" or "console"
	AdminEmail    string        // optional bootstrap admin
	AdminPassword string        // optional bootstrap admin password
}

// LoadDotEnv reads a .env file from the working directory when present.  A
// missing file is not an error; real environment variables always win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("could not load env file")
		}
	}
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  MySQL connection
// settings are only required when DB_DRIVER is mysql.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8000"),
		DBDriver:      strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		SQLitePath:    envStr("SQLITE_PATH", "moviereview.db"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  envInt("ACCESS_TOKEN_TTL_MIN", 60),
		SessionTTL:    envDur("SESSION_TTL", 14*24*time.Hour),
		SessionStore:  strings.ToLower(envStr("SESSION_STORE", "redis")),
		CookieSecure:  envBool("SESSION_COOKIE_SECURE", false),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFormat:     envStr("LOG_FORMAT", "json"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("missing required env var")
	}
	return v
}
