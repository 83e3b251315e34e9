package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goyalyashpal/msvc-portable/internal/fetcher"
	"github.com/goyalyashpal/msvc-portable/internal/manifest"
	"github.com/goyalyashpal/msvc-portable/internal/msi"
	"github.com/goyalyashpal/msvc-portable/internal/utils/network"
)

func TestResolveRequestedLogLevelExplicitFlagWins(t *testing.T) {
	cmd := createRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "warn", "--verbose"}))
	defer func() { logLevel = "" }()

	assert.Equal(t, "warn", resolveRequestedLogLevel(cmd))
}

func TestResolveRequestedLogLevelVerboseFallback(t *testing.T) {
	cmd := createRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--verbose"}))

	assert.Equal(t, "debug", resolveRequestedLogLevel(cmd))
}

func TestResolveRequestedLogLevelUnset(t *testing.T) {
	cmd := createRootCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "", resolveRequestedLogLevel(cmd))
	assert.Equal(t, "", resolveRequestedLogLevel(nil))
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cfgFile = ""
	cmd := createRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--host", "arm64",
		"--target", "x64,arm64",
		"--workers", "4",
		"--version-select", "numeric",
		"--accept-license",
	}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "arm64", cfg.Host)
	assert.Equal(t, []string{"x64", "arm64"}, cfg.Targets)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "numeric", cfg.VersionSelect)
	assert.True(t, cfg.AcceptLicense)
	// Untouched fields keep defaults.
	assert.Equal(t, "msvc", cfg.Output)
	assert.Equal(t, "downloads", cfg.Cache)
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil-ish generic", errors.New("boom"), 1},
		{"fetch", &network.FetchError{URL: "u", Err: errors.New("io")}, 2},
		{"certificate", &network.CertificateError{URL: "u", Err: errors.New("x509")}, 3},
		{"unknown package", &manifest.UnknownPackageError{ID: "p"}, 4},
		{"unknown version", &manifest.UnknownVersionError{What: "MSVC", Version: "1"}, 5},
		{"no dependency", &manifest.NoDependencyError{ID: "p"}, 6},
		{"integrity", &fetcher.IntegrityError{Name: "f"}, 7},
		{"extraction", &msi.ExtractionError{Path: "a.msi", Err: errors.New("exit 1")}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitCodeWrappedErrors(t *testing.T) {
	err := fmt.Errorf("unpacking payload: %w", &fetcher.IntegrityError{Name: "f"})
	assert.Equal(t, 7, exitCode(err))

	// A certificate failure is more specific than the fetch failure that
	// wraps it.
	err = &network.FetchError{URL: "u", Err: &network.CertificateError{URL: "u", Err: errors.New("x509")}}
	assert.Equal(t, 3, exitCode(err))
}
