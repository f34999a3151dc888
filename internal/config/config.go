package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	SessionSecret  string
	CatalogPath    string   // empty: built-in catalog
	ScanSeed       *uint64  // nil: non-deterministic scans
	AllowedOrigins []string
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8081"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS",
			"http://localhost:5173,http://localhost:8080")),
	}

	if v := os.Getenv("SCAN_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			log.Printf("WARNING: ignoring invalid SCAN_SEED %q: %v", v, err)
		} else {
			cfg.ScanSeed = &seed
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
