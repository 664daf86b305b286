package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot and supporting services.
type Config struct {
	BotToken           string
	MySQLDSN           string
	NanoBananaAPIKey   string
	NanoBananaBaseURL  string
	NanoBananaModel    string
	NanoBananaFallback string
	GenerationTimeout  time.Duration
	StartingTokens     int
	CostPerSession     int
	CostPerPrompt      int
	HourlyLimit        int
	AdminIDs           []int64
	FacesPath          string
	SessionsPath       string
	ExamplesPath       string
	AdminListenAddr    string
	AdminUsername      string
	AdminPassword      string
	S3Endpoint         string
	S3Region           string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3PublicBaseURL    string
	S3UsePathStyle     bool
	S3Prefix           string
	MirrorResults      bool
	LogDebug           bool
}

// Load reads configuration from environment variables, applying sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	const defaultBaseURL = "https://api.artemox.com"

	cfg := Config{
		NanoBananaBaseURL:  normalizeBaseURL(getEnv("NANO_BANANA_BASE_URL", defaultBaseURL), defaultBaseURL),
		NanoBananaModel:    getEnv("NANO_BANANA_MODEL", "gemini-2.5-flash-image-preview"),
		NanoBananaFallback: strings.TrimSpace(os.Getenv("NANO_BANANA_FALLBACK_MODEL")),
		GenerationTimeout:  time.Second * time.Duration(getInt("GENERATION_TIMEOUT_SECONDS", 120)),
		StartingTokens:     getInt("STARTING_TOKENS", 10),
		CostPerSession:     getInt("COST_PER_SESSION", 5),
		CostPerPrompt:      getInt("COST_PER_PROMPT", 1),
		HourlyLimit:        getInt("HOURLY_LIMIT", 0),
		AdminIDs:           getInt64List("ADMIN_IDS"),
		FacesPath:          getEnv("FACES_PATH", filepath.Join("storage", "faces")),
		SessionsPath:       getEnv("SESSIONS_PATH", filepath.Join("storage", "sessions")),
		ExamplesPath:       getEnv("EXAMPLES_PATH", filepath.Join("storage", "examples")),
		AdminListenAddr:    getEnv("ADMIN_LISTEN_ADDR", ":8080"),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "change-me"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3Region:           os.Getenv("S3_REGION"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3PublicBaseURL:    os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:     getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:           getEnv("S3_PREFIX", "sessions"),
		LogDebug:           getBool("LOG_DEBUG", false),
	}

	cfg.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.NanoBananaAPIKey = os.Getenv("NANO_BANANA_API_KEY")
	cfg.MirrorResults = cfg.S3Bucket != ""

	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if cfg.MySQLDSN == "" {
		missing = append(missing, "MYSQL_DSN")
	}
	if cfg.NanoBananaAPIKey == "" {
		missing = append(missing, "NANO_BANANA_API_KEY")
	}
	if cfg.MirrorResults {
		if cfg.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
		if cfg.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if cfg.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if cfg.S3PublicBaseURL == "" {
			missing = append(missing, "S3_PUBLIC_BASE_URL")
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return cfg, nil
}

// normalizeBaseURL keeps the generation endpoint on a scheme+host form. A bare
// hostname in the env file would otherwise be parsed as a relative URL.
func normalizeBaseURL(raw string, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fallback
	}

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	if parsed.Host == "" {
		parsed.Host = parsed.Path
		parsed.Path = ""
	}

	return parsed.String()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt64List(key string) []int64 {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	// No env file is fine, the process environment may carry everything.
	return nil
}
