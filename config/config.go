package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Fetch modes select the driver that downloads pages for the crawler.
const (
	FetchColly   = "colly"
	FetchBrowser = "browser"
)

// Sink names accepted in SINKS.
const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
	SinkMongo    = "mongo"
	SinkJSONL    = "jsonl"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MongoURI        string
	MongoDB         string
	MongoCollection string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	FetchMode      string
	UserAgent      string
	RespectRobots  bool

	BaseURL    string
	Cities     []string
	Categories []string
	SeedsFile  string

	Sinks         []string
	CSVOutputPath   string
	JSONLOutputPath string
	ChromeBin       string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
// A SEEDS_FILE, when set, replaces the cities and categories from env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "crawler"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "crawler123"),
		PostgresDB:       getEnv("POSTGRES_DB", "realestate_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "realestate"),
		MongoCollection: getEnv("MONGO_COLLECTION", "listings"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		FetchMode:      strings.ToLower(getEnv("FETCH_MODE", FetchColly)),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		RespectRobots: getEnvBool("RESPECT_ROBOTS", true),

		BaseURL:    strings.TrimRight(getEnv("BASE_URL", DefaultBaseURL), "/"),
		Cities:     getEnvList("CITIES", DefaultCities),
		Categories: getEnvList("CATEGORIES", DefaultCategories),
		SeedsFile:  getEnv("SEEDS_FILE", ""),

		Sinks:           lower(getEnvList("SINKS", []string{SinkCSV})),
		CSVOutputPath:   getEnv("CSV_OUTPUT_PATH", "./output/listings.csv"),
		JSONLOutputPath: getEnv("JSONL_OUTPUT_PATH", "./output/listings.jsonl"),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.SeedsFile != "" {
		seeds, err := LoadSeeds(cfg.SeedsFile)
		if err != nil {
			return nil, err
		}
		seeds.applyTo(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the crawler cannot run with.
func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchColly, FetchBrowser:
	default:
		return fmt.Errorf("config: unknown FETCH_MODE %q (want %s or %s)", c.FetchMode, FetchColly, FetchBrowser)
	}
	for _, s := range c.Sinks {
		switch s {
		case SinkCSV, SinkPostgres, SinkMongo, SinkJSONL:
		default:
			return fmt.Errorf("config: unknown sink %q in SINKS", s)
		}
	}
	if len(c.Cities) == 0 || len(c.Categories) == 0 {
		return fmt.Errorf("config: at least one city and one category are required")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("config: MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	return nil
}

// HasSink reports whether name is enabled in SINKS.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
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
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, trimming and dropping blanks.
// Entries keep their case: city slugs end up verbatim in records.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lower(list []string) []string {
	for i, s := range list {
		list[i] = strings.ToLower(s)
	}
	return list
}
