package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 2.0, c.RateLimit)
	assert.Equal(t, 30, c.WeightUndocumented)
	assert.Contains(t, c.SensitiveKeywords, "admin")
	assert.NotEmpty(t, c.UserAgents)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	os.Setenv("GHOSTMAP_RATE_LIMIT", "9.5")
	os.Setenv("GHOSTMAP_FUZZ_MODE", "all")
	defer os.Unsetenv("GHOSTMAP_RATE_LIMIT")
	defer os.Unsetenv("GHOSTMAP_FUZZ_MODE")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9.5, c.RateLimit)
	assert.Equal(t, "all", c.FuzzMode)
}

func TestGetEnvListOrDefaultSplitsAndTrims(t *testing.T) {
	os.Setenv("GHOSTMAP_SENSITIVE_KEYWORDS", "foo, bar ,baz")
	defer os.Unsetenv("GHOSTMAP_SENSITIVE_KEYWORDS")

	got := getEnvListOrDefault("GHOSTMAP_SENSITIVE_KEYWORDS", nil)
	assert.Equal(t, []string{"foo", "bar", "baz"}, got)
}
