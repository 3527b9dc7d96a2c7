package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the terminal client's configuration.
type Config struct {
	APIURL      string
	APIPrefix   string
	HTTPTimeout time.Duration

	// Static bearer token. When empty and DevSecret is set, a token is minted
	// locally for DevUser.
	APIToken  string
	DevSecret string
	DevUser   string

	DictationCmd  string
	DictationLang string

	LogFile string
}

// ServerConfig is the development API server's configuration.
type ServerConfig struct {
	Port        string
	APIPrefix   string
	DevSecret   string
	CORSOrigins []string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[cfg] ignoring invalid %s=%q", key, v)
		return def
	}
	return n
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[cfg] could not load .env: %v", err)
	}
}

// Load reads .env (if present) and the environment.
func Load() Config {
	loadDotEnv()

	return Config{
		APIURL:      strings.TrimRight(getEnv("PREP_API_URL", "http://localhost:8000"), "/"),
		APIPrefix:   getEnv("PREP_API_PREFIX", "/api/v1"),
		HTTPTimeout: time.Duration(getIntEnv("PREP_HTTP_TIMEOUT", 0)) * time.Second,

		APIToken:  getEnv("PREP_API_TOKEN", ""),
		DevSecret: getEnv("PREP_DEV_SECRET", ""),
		DevUser:   getEnv("PREP_DEV_USER", "dev-user"),

		DictationCmd:  getEnv("PREP_DICTATION_CMD", ""),
		DictationLang: getEnv("PREP_DICTATION_LANG", "en-US"),

		LogFile: getEnv("PREP_LOG_FILE", ""),
	}
}

// LoadServer reads the development server settings.
func LoadServer() ServerConfig {
	loadDotEnv()

	return ServerConfig{
		Port:        getEnv("PORT", "8000"),
		APIPrefix:   getEnv("PREP_API_PREFIX", "/api/v1"),
		DevSecret:   getEnv("PREP_DEV_SECRET", "interview-prep-dev-secret"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
