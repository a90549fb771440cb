// Package config provides centralized configuration management.
// All DEBATE_* environment lookups live here.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when DEBATE_API_URL is unset.
const DefaultAPIURL = "http://localhost:5000/api"

// DefaultPageSize is the number of debates shown per page.
const DefaultPageSize = 6

// DebateEnv holds all debate client environment variables.
type DebateEnv struct {
	// APIURL is the REST API base URL (DEBATE_API_URL)
	APIURL string

	// VoteRoute selects the vote endpoint: "vote" or the deprecated "voting" (DEBATE_VOTE_ROUTE)
	VoteRoute string

	// PageSize is the default list page size (DEBATE_PAGE_SIZE)
	PageSize int

	// SessionStore selects session persistence: "sqlite" or "memory" (DEBATE_SESSION_STORE)
	SessionStore string

	// LogLevel is the minimum level written by the structured logger (DEBATE_LOG_LEVEL)
	LogLevel string

	// NoColor disables coloured CLI output (DEBATE_NO_COLOR)
	NoColor bool

	// HTTPTimeout bounds a single HTTP exchange at the transport (DEBATE_HTTP_TIMEOUT)
	HTTPTimeout time.Duration
}

var (
	env     *DebateEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call. Values from ~/.debate/.env and
// ./.env are applied first without overriding the real environment.
func Env() *DebateEnv {
	envOnce.Do(func() {
		LoadDotEnv()
		env = &DebateEnv{
			APIURL:       strings.TrimRight(getEnvDefault("DEBATE_API_URL", DefaultAPIURL), "/"),
			VoteRoute:    getEnvDefault("DEBATE_VOTE_ROUTE", "vote"),
			PageSize:     getEnvInt("DEBATE_PAGE_SIZE", DefaultPageSize),
			SessionStore: getEnvDefault("DEBATE_SESSION_STORE", "sqlite"),
			LogLevel:     getEnvDefault("DEBATE_LOG_LEVEL", "warn"),
			NoColor:      os.Getenv("DEBATE_NO_COLOR") == "1" || os.Getenv("NO_COLOR") != "",
			HTTPTimeout:  getEnvDuration("DEBATE_HTTP_TIMEOUT", 30*time.Second),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

// LoadDotEnv loads .env files into the process environment.
// Missing files are ignored and existing variables are never overridden.
func LoadDotEnv() {
	for _, f := range []string{GetPaths().EnvFile, ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// Paths holds standard client directory paths.
type Paths struct {
	// Home is the client home directory (~/.debate)
	Home string

	// Data is the data directory (~/.debate/data)
	Data string

	// EnvFile is the .env file path (~/.debate/.env)
	EnvFile string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
// DEBATE_HOME overrides the home directory.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home := os.Getenv("DEBATE_HOME")
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				userHome = "."
			}
			home = filepath.Join(userHome, ".debate")
		}

		paths = &Paths{
			Home:    home,
			Data:    filepath.Join(home, "data"),
			EnvFile: filepath.Join(home, ".env"),
		}
	})
	return paths
}

// ResetPaths resets the cached paths (for testing).
func ResetPaths() {
	pathsOnce = sync.Once{}
	paths = nil
}

// Path returns a path under the client home directory.
func Path(parts ...string) string {
	p := GetPaths()
	allParts := append([]string{p.Home}, parts...)
	return filepath.Join(allParts...)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
