package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Import ImportConfig
	Log    LogConfig
}

// ImportConfig carries the two extraction policy flags read by the core.
type ImportConfig struct {
	// TreatAmbiguousAsInvoice allows a document that merely contains the
	// word "invoice" near the top to be imported as a purchase invoice.
	TreatAmbiguousAsInvoice bool
	// ImportStatementRows controls whether individual statement rows are
	// emitted; the statement header is always registered.
	ImportStatementRows bool
}

type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Import: ImportConfig{
			TreatAmbiguousAsInvoice: getEnvBool("IMPORT_TREAT_AMBIGUOUS_AS_INVOICE", true),
			ImportStatementRows:     getEnvBool("IMPORT_STATEMENT_ROWS", true),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
