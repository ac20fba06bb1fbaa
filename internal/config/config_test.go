package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditsEnabled(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{" on ", true},
		{"0", false},
		{"false", false},
		{"No", false},
		{"OFF", false},
		{"", true},
		{"maybe", true},
		{"2", true},
	}

	for _, tc := range cases {
		t.Run("value="+tc.value, func(t *testing.T) {
			t.Setenv("CREDITS_ENABLED", tc.value)
			assert.Equal(t, tc.want, CreditsEnabled())
		})
	}
}

func TestCreditsEnabledUnset(t *testing.T) {
	// t.Setenv registers restoration; unsetting afterwards covers the absent case.
	t.Setenv("CREDITS_ENABLED", "false")
	unsetenv(t, "CREDITS_ENABLED")

	assert.True(t, CreditsEnabled())
}

func TestCreditsEnabledIsReadPerCall(t *testing.T) {
	t.Setenv("CREDITS_ENABLED", "off")
	assert.False(t, CreditsEnabled())

	t.Setenv("CREDITS_ENABLED", "on")
	assert.True(t, CreditsEnabled())
}

func TestParseStringSlice(t *testing.T) {
	got := parseStringSlice("http://a.test, http://b.test,,")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, got)
	assert.Empty(t, parseStringSlice(""))
}

func unsetenv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}
