package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSVCVersionFromID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"microsoft.visualstudio.component.vc.14.40.17.10.x86.x64", "14.40"},
		{"microsoft.visualstudio.component.vc.14.29.16.11.x86.x64", "14.29"},
		// Non-numeric leading component is rejected.
		{"microsoft.visualstudio.component.vc.tools.x86.x64", ""},
		{"microsoft.visualstudio.component.vc.llvm.clang.x86.x64", ""},
		// Wrong suffix.
		{"microsoft.visualstudio.component.vc.14.40.17.10.arm64", ""},
		// Different family entirely.
		{"microsoft.visualcpp.runtimedebug.14", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MSVCVersionFromID(tt.id), "id %s", tt.id)
	}
}

func TestSDKVersionFromID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"microsoft.visualstudio.component.windows10sdk.19041", "19041"},
		{"microsoft.visualstudio.component.windows11sdk.22621", "22621"},
		// The final component must be fully numeric.
		{"microsoft.visualstudio.component.windows10sdk.ipoverusb", ""},
		{"microsoft.visualstudio.component.windows10sdk.19041beta", ""},
		{"microsoft.visualstudio.component.vc.14.40.17.10.x86.x64", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SDKVersionFromID(tt.id), "id %s", tt.id)
	}
}

func TestFullMSVCVersion(t *testing.T) {
	full, err := FullMSVCVersion("microsoft.visualstudio.component.vc.14.40.17.10.x86.x64")
	require.NoError(t, err)
	assert.Equal(t, "14.40.17.10", full)

	full, err = FullMSVCVersion("Microsoft.VisualStudio.Component.VC.14.29.16.11.x86.x64")
	require.NoError(t, err)
	assert.Equal(t, "14.29.16.11", full)

	_, err = FullMSVCVersion("too.short.id")
	require.Error(t, err)
}

func TestResolveExactVersion(t *testing.T) {
	available := map[string]string{"14.40": "id-a", "14.29": "id-b"}

	ver, id, err := Resolve("14.29", available, SelectLegacy, "MSVC")
	require.NoError(t, err)
	assert.Equal(t, "14.29", ver)
	assert.Equal(t, "id-b", id)
}

func TestResolveUnknownVersion(t *testing.T) {
	available := map[string]string{"14.40": "id-a"}

	_, _, err := Resolve("14.99", available, SelectLegacy, "MSVC")
	var unknown *UnknownVersionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "14.99", unknown.Version)
	assert.Equal(t, "MSVC", unknown.What)
}

// The legacy selection compares version strings as text, so "9.9" beats
// "10.0". This matches the original selection logic and is intentionally
// preserved; the numeric mode below is the corrected behavior.
func TestResolveLatestLegacyIsLexicographic(t *testing.T) {
	available := map[string]string{"10.0": "a", "9.9": "b"}

	ver, id, err := Resolve("", available, SelectLegacy, "MSVC")
	require.NoError(t, err)
	assert.Equal(t, "9.9", ver)
	assert.Equal(t, "b", id)
}

func TestResolveLatestNumeric(t *testing.T) {
	available := map[string]string{"10.0": "a", "9.9": "b"}

	ver, id, err := Resolve("", available, SelectNumeric, "MSVC")
	require.NoError(t, err)
	assert.Equal(t, "10.0", ver)
	assert.Equal(t, "a", id)
}

func TestResolveLatestNumericSDKBuilds(t *testing.T) {
	available := map[string]string{"19041": "a", "22621": "b", "9999": "c"}

	ver, _, err := Resolve("", available, SelectNumeric, "Windows SDK")
	require.NoError(t, err)
	assert.Equal(t, "22621", ver)

	// Legacy mode picks the same answer here only because the strings have
	// equal length.
	ver, _, err = Resolve("", available, SelectLegacy, "Windows SDK")
	require.NoError(t, err)
	assert.Equal(t, "9999", ver)
}

func TestResolveEmptyAvailable(t *testing.T) {
	_, _, err := Resolve("", map[string]string{}, SelectLegacy, "Windows SDK")
	var unknown *UnknownVersionError
	require.ErrorAs(t, err, &unknown)
}

func TestScanVersions(t *testing.T) {
	idx := BuildIndex([]PackageRecord{
		{ID: "Microsoft.VisualStudio.Component.VC.14.40.17.10.x86.x64"},
		{ID: "Microsoft.VisualStudio.Component.VC.Tools.x86.x64"},
		{ID: "Microsoft.VisualStudio.Component.Windows11SDK.22621"},
		{ID: "Microsoft.VisualStudio.Component.Windows10SDK.IpOverUsb"},
		{ID: "Microsoft.VC.14.40.17.10.CRT.Headers.base"},
	})

	msvc, sdk := ScanVersions(idx)
	assert.Equal(t, map[string]string{
		"14.40": "microsoft.visualstudio.component.vc.14.40.17.10.x86.x64",
	}, msvc)
	assert.Equal(t, map[string]string{
		"22621": "microsoft.visualstudio.component.windows11sdk.22621",
	}, sdk)
}
