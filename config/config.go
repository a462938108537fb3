package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Region   string
	BaseURL  string
	PageSize int

	MinDelaySec int
	MaxDelaySec int

	FetchMode string
	ChromeBin string
	UserAgent string

	CSVOutputPath   string
	ChartOutputPath string
	SelectorsFile   string

	SkipMalformed bool

	PostgresDSN string
}

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Region:   getEnv("REGION", "westernmass"),
		BaseURL:  getEnv("BASE_URL", "https://%s.craigslist.org"),
		PageSize: getEnvInt("PAGE_SIZE", 120),

		MinDelaySec: getEnvInt("MIN_DELAY_SEC", 1),
		MaxDelaySec: getEnvInt("MAX_DELAY_SEC", 5),

		FetchMode: strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		ChromeBin: getEnv("CHROME_BIN", ""),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		CSVOutputPath:   getEnv("CSV_OUTPUT_PATH", "./craigslist.csv"),
		ChartOutputPath: getEnv("CHART_OUTPUT_PATH", "./craigslist.png"),
		SelectorsFile:   getEnv("SELECTORS_FILE", ""),

		SkipMalformed: getEnvBool("SKIP_MALFORMED", false),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
	}
}

// SiteURL returns the region's base URL, e.g. https://westernmass.craigslist.org.
func (c *Config) SiteURL() string {
	if strings.Contains(c.BaseURL, "%s") {
		return fmt.Sprintf(c.BaseURL, c.Region)
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("config: region is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page size must be positive, got %d", c.PageSize)
	}
	if c.MinDelaySec < 0 || c.MaxDelaySec < c.MinDelaySec {
		return fmt.Errorf("config: invalid delay range [%d, %d]", c.MinDelaySec, c.MaxDelaySec)
	}
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("config: unknown fetch mode %q", c.FetchMode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
		log.Printf("[config] Invalid int for %s=%q, using default %d", key, val, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
		log.Printf("[config] Invalid bool for %s=%q, using default %t", key, val, fallback)
	}
	return fallback
}
