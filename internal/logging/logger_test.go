package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", DEBUG, false},
		{"DEBUG", DEBUG, false},
		{"info", INFO, false},
		{"warn", WARN, false},
		{"error", ERROR, false},
		{"fatal", FATAL, false},
		{"verbose", -1, true},
		{"", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestPackageLogLevels(t *testing.T) {
	err := SetPackageLogLevels(map[string]string{
		"detect.skew": "debug",
		"detect.*":    "warn",
		"eventlog":    "error",
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, SetPackageLogLevels(map[string]string{}))
	}()

	// Exact match wins over wildcard
	assert.Equal(t, DEBUG, GetPackageLogLevel("detect.skew"))
	// Wildcard match
	assert.Equal(t, WARN, GetPackageLogLevel("detect.spill"))
	// Exact match without wildcard
	assert.Equal(t, ERROR, GetPackageLogLevel("eventlog"))
	// No override configured
	assert.Equal(t, LogLevel(-1), GetPackageLogLevel("render"))
	// Wildcard does not match the bare prefix
	assert.Equal(t, LogLevel(-1), GetPackageLogLevel("detect"))
}

func TestSetPackageLogLevels_InvalidLevel(t *testing.T) {
	err := SetPackageLogLevels(map[string]string{"detect.*": "chatty"})
	assert.Error(t, err)
}

func TestWithFieldImmutability(t *testing.T) {
	base := GetLogger("test")
	child := base.WithField("stage_id", 3)

	assert.Empty(t, base.fields)
	assert.Equal(t, 3, child.fields["stage_id"])

	grandchild := child.WithField("task_count", 10)
	assert.Len(t, child.fields, 1)
	assert.Len(t, grandchild.fields, 2)
}

func TestMatchesPattern(t *testing.T) {
	assert.True(t, matchesPattern("detect.skew", "detect.skew"))
	assert.True(t, matchesPattern("detect.skew", "detect.*"))
	assert.False(t, matchesPattern("aggregate", "detect.*"))
	assert.False(t, matchesPattern("detection", "detect.*"))
}
