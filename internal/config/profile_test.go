package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Default_IsValid(t *testing.T) {
	profile := Default()

	assert.NoError(t, profile.Validate())
	assert.Equal(t, 1800, profile.Pattern.WindowSec)
	assert.Equal(t, 0.95, profile.Classifier.ExtendedPercentile)
	assert.Equal(t, "+1", profile.Classifier.DomesticCountryCode)
}

func TestProfile_Validate_EmptyLexicon(t *testing.T) {
	profile := Default()
	profile.Classifier.SuspiciousKeywords = nil

	err := profile.Validate()
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, "classifier.suspicious_keywords", cfgErr.Field)
	assert.Contains(t, cfgErr.Error(), "invalid configuration")
}

func TestProfile_Validate_NegativeWindow(t *testing.T) {
	profile := Default()
	profile.Pattern.WindowSec = -300

	err := profile.Validate()
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, "pattern.window_sec", cfgErr.Field)
}

func TestProfile_Validate_PercentileOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, 1.5, -0.1} {
		profile := Default()
		profile.Classifier.ExtendedPercentile = p

		err := profile.Validate()
		require.Error(t, err)
		cfgErr, ok := err.(*ConfigError)
		require.True(t, ok)
		assert.Equal(t, "classifier.extended_percentile", cfgErr.Field)
	}
}

func TestProfile_Validate_LateNightHourOutOfRange(t *testing.T) {
	profile := Default()
	profile.Risk.LateNightEndHour = 24

	err := profile.Validate()
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, "risk.late_night_end_hour", cfgErr.Field)
}

func TestProfile_Validate_AllZeroWeights(t *testing.T) {
	profile := Default()
	profile.Risk.VolumeWeight = 0
	profile.Risk.CategoryWeight = 0
	profile.Risk.TemporalWeight = 0
	profile.Risk.ConcentrationWeight = 0
	profile.Risk.PatternWeight = 0

	err := profile.Validate()
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, "risk", cfgErr.Field)
}

func TestLoadProfile_EmptyPathReturnsDefaults(t *testing.T) {
	profile, err := LoadProfile("")

	require.NoError(t, err)
	assert.Equal(t, Default(), profile)
}

func TestLoadProfile_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := `
[pattern]
window_sec = 900

[classifier]
short_call_threshold_sec = 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	profile, err := LoadProfile(path)

	require.NoError(t, err)
	assert.Equal(t, 900, profile.Pattern.WindowSec)
	assert.Equal(t, 20, profile.Classifier.ShortCallThresholdSec)
	// Untouched values keep their defaults.
	assert.Equal(t, Default().Classifier.SuspiciousKeywords, profile.Classifier.SuspiciousKeywords)
}

func TestLoadProfile_InvalidValueRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pattern]\nwindow_sec = 0\n"), 0o644))

	_, err := LoadProfile(path)

	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, "pattern.window_sec", cfgErr.Field)
}
