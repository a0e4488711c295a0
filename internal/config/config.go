package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

type Config struct {
	Port     int
	LogLevel string

	Store          string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	SessionSecret  string
	SecureCookies  bool
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	SuggestProvider string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
}

// Load reads the configuration from the process environment, after loading
// an optional .env file from the working directory. Variables already set in
// the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) Config {
	cfg := Config{
		Port:           3000,
		LogLevel:       "info",
		DatabaseURL:    getenv("DATABASE_URL"),
		MongoURI:       getenv("MONGODB_URI"),
		MongoDatabase:  "mysterymessage",
		SessionSecret:  getenv("SESSION_SECRET"),
		RateLimitRPS:   1,
		RateLimitBurst: 5,
		GoogleAPIKey:   getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:   getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getenv("OPENAI_BASE_URL"),
	}

	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			cfg.Port = p
		}
	}

	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	if v := strings.TrimSpace(getenv("MONGODB_DATABASE")); v != "" {
		cfg.MongoDatabase = v
	}

	if v := getenv("SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SecureCookies = b
		}
	}

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.RateLimitRPS = n
		}
	}

	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitBurst = n
		}
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(getenv("STORE")))
	if cfg.Store == "" {
		switch {
		case cfg.MongoURI != "":
			cfg.Store = StoreMongo
		case cfg.DatabaseURL != "":
			cfg.Store = StorePostgres
		default:
			cfg.Store = StoreMemory
		}
	}

	cfg.SuggestProvider = strings.ToLower(strings.TrimSpace(getenv("SUGGEST_PROVIDER")))
	if cfg.SuggestProvider == "" {
		switch {
		case cfg.GoogleAPIKey != "":
			cfg.SuggestProvider = ProviderGemini
		case cfg.OpenAIAPIKey != "":
			cfg.SuggestProvider = ProviderOpenAI
		default:
			cfg.SuggestProvider = ProviderStatic
		}
	}

	return cfg
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}
