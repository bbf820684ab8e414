package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "custom")
	assert.Equal(t, "custom", LoadEnvString("TEST_STRING", "default"))

	t.Setenv("TEST_STRING", "")
	assert.Equal(t, "default", LoadEnvString("TEST_STRING", "default"))
}

func TestLoadEnvWithFallback_Valid(t *testing.T) {
	t.Setenv("TEST_CRON", "0 */6 * * *")
	result := LoadEnvWithFallback("TEST_CRON", "30 5 * * *", ValidateCronSchedule)
	assert.Equal(t, "0 */6 * * *", result.Value)
	assert.False(t, result.FallbackApplied)
	assert.Empty(t, result.Warnings)
}

func TestLoadEnvWithFallback_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_CRON", "not a cron")
	result := LoadEnvWithFallback("TEST_CRON", "30 5 * * *", ValidateCronSchedule)
	assert.Equal(t, "30 5 * * *", result.Value)
	assert.True(t, result.FallbackApplied)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "TEST_CRON")
}

func TestLoadEnvWithFallback_UnsetIsSilent(t *testing.T) {
	t.Setenv("TEST_CRON", "")
	result := LoadEnvWithFallback("TEST_CRON", "30 5 * * *", ValidateCronSchedule)
	assert.Equal(t, "30 5 * * *", result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "45s")
	result := LoadEnvDuration("TEST_TIMEOUT", time.Minute, ValidatePositiveDuration)
	assert.Equal(t, 45*time.Second, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_ParseFailure(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "soon")
	result := LoadEnvDuration("TEST_TIMEOUT", time.Minute, nil)
	assert.Equal(t, time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvDuration_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "-5s")
	result := LoadEnvDuration("TEST_TIMEOUT", time.Minute, ValidatePositiveDuration)
	assert.Equal(t, time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvInt(t *testing.T) {
	t.Setenv("TEST_PORT", "9200")
	result := LoadEnvInt("TEST_PORT", 9091, func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	})
	assert.Equal(t, 9200, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_OutOfRange(t *testing.T) {
	t.Setenv("TEST_PORT", "80")
	result := LoadEnvInt("TEST_PORT", 9091, func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	})
	assert.Equal(t, 9091, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvInt_NotANumber(t *testing.T) {
	t.Setenv("TEST_PORT", "many")
	result := LoadEnvInt("TEST_PORT", 9091, nil)
	assert.Equal(t, 9091, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		want     bool
		fallback bool
	}{
		{"true", true, false},
		{"1", true, false},
		{"T", true, false},
		{"false", false, false},
		{"0", false, false},
		{"yes", true, true}, // not an accepted token, default applies
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_FLAG", tt.value)
			result := LoadEnvBool("TEST_FLAG", true)
			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.fallback, result.FallbackApplied)
		})
	}
}
