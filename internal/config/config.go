package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ObiAU/newsfanout/internal/models"
)

//go:embed sources.yaml
var defaultCatalog []byte

// ConfigurationError is fatal: nothing is queried until it is fixed.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

// Catalog is the source list file.
type Catalog struct {
	MaxArticles *int            `yaml:"max_articles"`
	Priority    []string        `yaml:"priority"`
	Sources     []models.Source `yaml:"sources"`
}

type Config struct {
	NewsAPIKey      string
	NewsAPIBaseURL  string
	Sources         []models.Source
	Priority        []string
	MaxArticles     int
	IncludeUnranked bool
	PageSize        int
	RequestTimeout  time.Duration
	CacheRetention  time.Duration
	CacheSize       int
	ServerPort      string
	AllowedOrigins  []string

	TelegramToken      string
	TelegramWebhookURL string
	OpenAIAPIKey       string
	OpenAIModel        string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present), the source catalog and the environment,
// then validates the result. catalogPath may be empty to use the
// NEWS_SOURCES_FILE variable or the embedded catalog.
func Load(catalogPath string) (*Config, error) {
	_ = godotenv.Load()

	if catalogPath == "" {
		catalogPath = os.Getenv("NEWS_SOURCES_FILE")
	}
	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}

	maxArticles := 10
	if catalog.MaxArticles != nil {
		maxArticles = *catalog.MaxArticles
	}

	cfg := &Config{
		NewsAPIKey:         getEnv("NEWS_API_KEY", ""),
		NewsAPIBaseURL:     getEnv("NEWS_API_BASE_URL", "https://newsapi.org"),
		Sources:            catalog.Sources,
		Priority:           getEnvAsList("NEWS_SOURCE_PRIORITY", catalog.Priority),
		MaxArticles:        getEnvAsInt("NEWS_MAX_ARTICLES", maxArticles),
		IncludeUnranked:    getEnvAsBool("NEWS_INCLUDE_UNRANKED", false),
		PageSize:           getEnvAsInt("NEWS_PAGE_SIZE", 20),
		RequestTimeout:     getEnvAsDuration("NEWS_REQUEST_TIMEOUT", 30*time.Second),
		CacheRetention:     getEnvAsDuration("CACHE_RETENTION", 5*time.Minute),
		CacheSize:          getEnvAsInt("CACHE_SIZE", 256),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:     getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		TelegramToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookURL: getEnv("TELEGRAM_WEBHOOK_URL", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCatalog parses the catalog at path, or the embedded one when path is
// empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigurationError{Field: "sources", Message: err.Error()}
		}
		data = raw
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, &ConfigurationError{Field: "sources", Message: fmt.Sprintf("parse catalog: %v", err)}
	}
	for i := range catalog.Sources {
		if catalog.Sources[i].Name == "" {
			catalog.Sources[i].Name = catalog.Sources[i].ID
		}
	}
	return &catalog, nil
}

func (c *Config) Validate() error {
	if c.NewsAPIKey == "" {
		return &ConfigurationError{Field: "NEWS_API_KEY", Message: "is required"}
	}
	if c.MaxArticles < 0 {
		return &ConfigurationError{Field: "NEWS_MAX_ARTICLES", Message: "must not be negative"}
	}
	if c.PageSize <= 0 {
		return &ConfigurationError{Field: "NEWS_PAGE_SIZE", Message: "must be positive"}
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if src.ID == "" {
			return &ConfigurationError{Field: "sources", Message: "source without id"}
		}
		if seen[src.ID] {
			return &ConfigurationError{Field: "sources", Message: fmt.Sprintf("duplicate source id %q", src.ID)}
		}
		seen[src.ID] = true

		switch src.Kind {
		case "", models.KindNewsAPI:
		case models.KindRSS:
			if src.URL == "" {
				return &ConfigurationError{Field: "sources", Message: fmt.Sprintf("rss source %q has no url", src.ID)}
			}
		default:
			return &ConfigurationError{Field: "sources", Message: fmt.Sprintf("source %q has unknown kind %q", src.ID, src.Kind)}
		}
	}
	return nil
}

// UnknownPriority returns priority ids that name no configured source.
func (c *Config) UnknownPriority() []string {
	known := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		known[src.ID] = true
	}
	var unknown []string
	for _, id := range c.Priority {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
