// Package config holds the central GHOSTMAP configuration and the
// environment-variable loading used by cmd/ghostmap.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the central configuration for all GHOSTMAP components.
type Config struct {
	OutputDir string
	Verbose   bool

	// HTTP client
	RateLimit      float64 // requests per second
	MaxRetries     int
	RetryBackoff   float64 // exponential backoff multiplier
	RequestTimeout time.Duration
	UserAgents     []string
	Headers        map[string]string

	// Collector
	WaybackTimeout        time.Duration
	CommonCrawlTimeout    time.Duration
	MaxJSFileSize         int64
	JSDownloadConcurrency int

	// Auditor
	ProbeTimeout      time.Duration
	ProbeConcurrency  int
	ProbeMethods      []string
	FuzzConcurrency   int
	FuzzMode          string // "auto" or "all"

	// Risk scoring weights
	WeightUndocumented       int
	WeightActive             int
	WeightSensitiveKeywords  int
	WeightNoAuth             int
	WeightStaleness          int

	SensitiveKeywords []string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"GhostMap/1.0 (Security Research Tool)",
}

var defaultSensitiveKeywords = []string{
	"debug", "admin", "internal", "test", "staging", "dev",
	"backup", "old", "temp", "tmp", "secret", "private",
	"config", "setup", "install", "phpinfo", "console",
	"actuator", "health", "metrics", "env", "swagger",
	"graphql", "graphiql", "playground",
}

// Default returns a Config populated with GHOSTMAP's built-in defaults.
func Default() *Config {
	return &Config{
		OutputDir:               "data",
		Verbose:                 false,
		RateLimit:               2.0,
		MaxRetries:              3,
		RetryBackoff:            1.5,
		RequestTimeout:          30 * time.Second,
		UserAgents:              defaultUserAgents,
		Headers:                 map[string]string{},
		WaybackTimeout:          60 * time.Second,
		CommonCrawlTimeout:      60 * time.Second,
		MaxJSFileSize:           5 * 1024 * 1024,
		JSDownloadConcurrency:   5,
		ProbeTimeout:            10 * time.Second,
		ProbeConcurrency:        10,
		ProbeMethods:            []string{"HEAD", "GET"},
		FuzzConcurrency:         10,
		FuzzMode:                "auto",
		WeightUndocumented:      30,
		WeightActive:            25,
		WeightSensitiveKeywords: 20,
		WeightNoAuth:            15,
		WeightStaleness:         10,
		SensitiveKeywords:       defaultSensitiveKeywords,
	}
}

// Load builds a Config from defaults layered under a .env file (if present)
// and process environment variables. A missing .env file is not an error —
// GHOSTMAP has no required secrets, unlike the LLM credentials the teacher
// config demanded.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := Default()

	c.OutputDir = getEnvOrDefault("GHOSTMAP_OUTPUT_DIR", c.OutputDir)
	c.Verbose = getEnvOrDefault("GHOSTMAP_VERBOSE", "") == "true"
	c.RateLimit = getEnvFloatOrDefault("GHOSTMAP_RATE_LIMIT", c.RateLimit)
	c.MaxRetries = getEnvIntOrDefault("GHOSTMAP_MAX_RETRIES", c.MaxRetries)
	c.RetryBackoff = getEnvFloatOrDefault("GHOSTMAP_RETRY_BACKOFF", c.RetryBackoff)
	c.RequestTimeout = time.Duration(getEnvIntOrDefault("GHOSTMAP_REQUEST_TIMEOUT_SECONDS", int(c.RequestTimeout/time.Second))) * time.Second
	c.UserAgents = getEnvListOrDefault("GHOSTMAP_USER_AGENTS", c.UserAgents)
	c.ProbeConcurrency = getEnvIntOrDefault("GHOSTMAP_PROBE_CONCURRENCY", c.ProbeConcurrency)
	c.FuzzConcurrency = getEnvIntOrDefault("GHOSTMAP_FUZZ_CONCURRENCY", c.FuzzConcurrency)
	c.FuzzMode = getEnvOrDefault("GHOSTMAP_FUZZ_MODE", c.FuzzMode)
	c.SensitiveKeywords = getEnvListOrDefault("GHOSTMAP_SENSITIVE_KEYWORDS", c.SensitiveKeywords)

	return c, nil
}

// EnsureOutputDir creates the configured output directory if absent.
func (c *Config) EnsureOutputDir() error {
	return os.MkdirAll(c.OutputDir, 0o755)
}
