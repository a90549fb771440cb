package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points DEBATE_HOME at a temp dir so no real .env leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DEBATE_HOME", dir)
	ResetPaths()
	ResetEnv()
	t.Cleanup(func() {
		ResetPaths()
		ResetEnv()
	})
	return dir
}

func TestEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DEBATE_API_URL", "https://debates.example.com/api/")
	t.Setenv("DEBATE_VOTE_ROUTE", "voting")
	t.Setenv("DEBATE_PAGE_SIZE", "9")
	t.Setenv("DEBATE_SESSION_STORE", "memory")
	t.Setenv("DEBATE_HTTP_TIMEOUT", "5s")

	e := Env()

	assert.Equal(t, "https://debates.example.com/api", e.APIURL)
	assert.Equal(t, "voting", e.VoteRoute)
	assert.Equal(t, 9, e.PageSize)
	assert.Equal(t, "memory", e.SessionStore)
	assert.Equal(t, 5*time.Second, e.HTTPTimeout)
}

func TestEnvDefaults(t *testing.T) {
	isolate(t)
	for _, k := range []string{"DEBATE_API_URL", "DEBATE_VOTE_ROUTE", "DEBATE_PAGE_SIZE", "DEBATE_SESSION_STORE", "DEBATE_HTTP_TIMEOUT"} {
		t.Setenv(k, "")
	}

	e := Env()

	assert.Equal(t, DefaultAPIURL, e.APIURL)
	assert.Equal(t, "vote", e.VoteRoute)
	assert.Equal(t, DefaultPageSize, e.PageSize)
	assert.Equal(t, "sqlite", e.SessionStore)
	assert.Equal(t, 30*time.Second, e.HTTPTimeout)
}

func TestEnvInvalidNumbersFallBack(t *testing.T) {
	isolate(t)
	t.Setenv("DEBATE_PAGE_SIZE", "-3")
	t.Setenv("DEBATE_HTTP_TIMEOUT", "soon")

	e := Env()

	assert.Equal(t, DefaultPageSize, e.PageSize)
	assert.Equal(t, 30*time.Second, e.HTTPTimeout)
}

func TestEnvSingleton(t *testing.T) {
	isolate(t)

	env1 := Env()
	env2 := Env()

	assert.Same(t, env1, env2)
}

func TestDotEnvDoesNotOverride(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DEBATE_VOTE_ROUTE=voting\nDEBATE_TEST_ONLY_KEY=from-file\n"), 0600))
	t.Setenv("DEBATE_VOTE_ROUTE", "vote")
	t.Cleanup(func() { os.Unsetenv("DEBATE_TEST_ONLY_KEY") })

	e := Env()

	assert.Equal(t, "vote", e.VoteRoute)
	assert.Equal(t, "from-file", os.Getenv("DEBATE_TEST_ONLY_KEY"))
}

func TestGetEnvDefault(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"env set", "DEBATE_TEST_KEY", "value", "default", "value"},
		{"env empty", "DEBATE_TEST_KEY", "", "default", "default"},
		{"env not set", "DEBATE_TEST_KEY_NOTSET", "", "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				t.Setenv(tt.key, tt.envVal)
			}
			assert.Equal(t, tt.want, getEnvDefault(tt.key, tt.fallback))
		})
	}
}

func TestGetPaths(t *testing.T) {
	dir := isolate(t)

	p := GetPaths()

	assert.Equal(t, dir, p.Home)
	assert.Equal(t, filepath.Join(dir, "data"), p.Data)
	assert.Equal(t, filepath.Join(dir, ".env"), p.EnvFile)
	assert.Equal(t, filepath.Join(dir, "data", "session.db"), Path("data", "session.db"))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, EnsureDir(dir))
}
