package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
//
// The token signing secret is deliberately not here: it is loaded by
// security/token at startup and its absence is startup-fatal there.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("KEYGATE_HTTP_ADDR", "0.0.0.0:5001"),
		LogLevel:  EnvString("KEYGATE_LOG_LEVEL", "info"),
		LogFormat: EnvString("KEYGATE_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("KEYGATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("KEYGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("KEYGATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("KEYGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("KEYGATE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("KEYGATE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("KEYGATE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("KEYGATE_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("KEYGATE_READINESS_REQUIRE_DB", false),
	}
}
