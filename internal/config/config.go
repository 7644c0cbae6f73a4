package config

import (
	"os"
	"strconv"
)

type Config struct {
	Detector Detector
	Encoder  Encoder
	Database Database
	Matching Matching
}

type Detector struct {
	URL string // detection service base URL, defaults to http://localhost:8000
}

type Encoder struct {
	URL string // embedding service base URL, defaults to http://localhost:8001
	Dim int    // embedding dimension, defaults to 512
}

type Database struct {
	URL           string // PostgreSQL connection URL
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the reference HNSW index (optional, rebuilt when empty)
}

type Matching struct {
	ReferencesFile string // YAML reference catalog, used when no database is configured
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Detector: Detector{
			URL: envString("DETECTOR_URL", "http://localhost:8000"),
		},
		Encoder: Encoder{
			URL: envString("ENCODER_URL", "http://localhost:8001"),
			Dim: envInt("EMBEDDING_DIM", 512),
		},
		Database: Database{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Matching: Matching{
			ReferencesFile: os.Getenv("REFERENCES_FILE"),
		},
	}
}
