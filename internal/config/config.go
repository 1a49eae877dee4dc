// Package config loads process configuration from the environment and the
// per-strategy AI settings files under trade-ai/.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings read once at startup.
type Config struct {
	MetricsAddr   string
	MaxLogSizeMB  int64
	MaxLogBackups int
	SchedulerPool int
}

// requiredSecretVars are critical and confidential; missing ones abort
// startup, present ones are only ever logged masked.
var requiredSecretVars = map[string]bool{
	"BYBIT_API_KEY":    true,
	"BYBIT_API_SECRET": true,
	"OPENAI_API_KEY":   true,
}

// Load reads .env into the process environment, verifies the required
// variables and returns the resolved config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	var missing []string
	for key := range requiredSecretVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("CRITICAL: Missing required environment variables: %v", missing)
	}

	logEnvFile()

	return &Config{
		MetricsAddr:   getEnv("METRICS_ADDR", ":9185"),
		MaxLogSizeMB:  int64(getEnvAsInt("MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups: getEnvAsInt("MAX_LOG_BACKUPS", 3),
		SchedulerPool: getEnvAsInt("SCHEDULER_POOL_SIZE", 4),
	}
}

// logEnvFile prints the .env contents with secret values masked, so a
// startup log shows exactly which configuration was picked up.
func logEnvFile() {
	envMap, err := godotenv.Read()
	if err != nil {
		return
	}
	log.Println("--- .env File Variables ---")
	for key, val := range envMap {
		if requiredSecretVars[key] {
			masked := "***"
			if len(val) > 4 {
				masked = "***" + val[len(val)-4:]
			}
			log.Printf("%s=%s", key, masked)
		} else {
			log.Printf("%s=%s", key, val)
		}
	}
	log.Println("---------------------------")
}
