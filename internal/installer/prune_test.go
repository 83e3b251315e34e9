package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPrune(t *testing.T) {
	out := t.TempDir()
	const msvcDir = "14.40.33807"
	const sdkDir = "10.0.22621.0"

	mkTree(t, out, []string{
		"Common7/IDE/devenv.exe",
		"VC/Tools/MSVC/" + msvcDir + "/Auxiliary/Build/vcvars64.bat",
		"VC/Tools/MSVC/" + msvcDir + "/bin/Hostx64/x64/cl.exe",
		"VC/Tools/MSVC/" + msvcDir + "/bin/Hostx64/x64/vctip.exe",
		"VC/Tools/MSVC/" + msvcDir + "/bin/Hostx86/x86/cl.exe",
		"VC/Tools/MSVC/" + msvcDir + "/lib/x64/msvcrt.lib",
		"VC/Tools/MSVC/" + msvcDir + "/lib/x64/store/msvcrt.lib",
		"VC/Tools/MSVC/" + msvcDir + "/lib/x64/uwp/msvcrt.lib",
		"Windows Kits/10/Catalogs/cat.txt",
		"Windows Kits/10/DesignTime/dt.txt",
		"Windows Kits/10/bin/" + sdkDir + "/x64/rc.exe",
		"Windows Kits/10/bin/" + sdkDir + "/arm64/rc.exe",
		"Windows Kits/10/bin/" + sdkDir + "/chpe/x.dll",
		"Windows Kits/10/Lib/" + sdkDir + "/ucrt/x64/libucrt.lib",
		"Windows Kits/10/Lib/" + sdkDir + "/ucrt/arm64/libucrt.lib",
		"Windows Kits/10/Lib/" + sdkDir + "/um/x64/kernel32.lib",
		"Windows Kits/10/Lib/" + sdkDir + "/um/arm/kernel32.lib",
		"Windows Kits/10/Lib/" + sdkDir + "/ucrt_enclave/e.lib",
		"stray.msi",
	})

	in := New(Options{Host: "x64", Targets: []string{"x64"}, OutputDir: out})
	in.prune(msvcDir, sdkDir)

	msvcRoot := filepath.Join(out, "VC", "Tools", "MSVC", msvcDir)
	kitsRoot := filepath.Join(out, "Windows Kits", "10")

	// Kept: the requested host/target toolchain and libs.
	assert.True(t, exists(filepath.Join(msvcRoot, "bin", "Hostx64", "x64", "cl.exe")))
	assert.True(t, exists(filepath.Join(msvcRoot, "lib", "x64", "msvcrt.lib")))
	assert.True(t, exists(filepath.Join(kitsRoot, "bin", sdkDir, "x64", "rc.exe")))
	assert.True(t, exists(filepath.Join(kitsRoot, "Lib", sdkDir, "ucrt", "x64", "libucrt.lib")))
	assert.True(t, exists(filepath.Join(kitsRoot, "Lib", sdkDir, "um", "x64", "kernel32.lib")))

	// Gone: IDE leftovers, non-desktop lib flavors, other architectures,
	// telemetry, stray MSIs.
	assert.False(t, exists(filepath.Join(out, "Common7")))
	assert.False(t, exists(filepath.Join(msvcRoot, "Auxiliary")))
	assert.False(t, exists(filepath.Join(msvcRoot, "bin", "Hostx86")))
	assert.False(t, exists(filepath.Join(msvcRoot, "bin", "Hostx64", "x64", "vctip.exe")))
	assert.False(t, exists(filepath.Join(msvcRoot, "lib", "x64", "store")))
	assert.False(t, exists(filepath.Join(msvcRoot, "lib", "x64", "uwp")))
	assert.False(t, exists(filepath.Join(kitsRoot, "Catalogs")))
	assert.False(t, exists(filepath.Join(kitsRoot, "DesignTime")))
	assert.False(t, exists(filepath.Join(kitsRoot, "bin", sdkDir, "arm64")))
	assert.False(t, exists(filepath.Join(kitsRoot, "bin", sdkDir, "chpe")))
	assert.False(t, exists(filepath.Join(kitsRoot, "Lib", sdkDir, "ucrt", "arm64")))
	assert.False(t, exists(filepath.Join(kitsRoot, "Lib", sdkDir, "um", "arm")))
	assert.False(t, exists(filepath.Join(kitsRoot, "Lib", sdkDir, "ucrt_enclave")))
	assert.False(t, exists(filepath.Join(out, "stray.msi")))
}

func TestFindDirWithPrefix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "System64"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SystemNotADir"), []byte("x"), 0644))

	found, err := findDirWithPrefix(dir, "System")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "System64"), found)

	_, err = findDirWithPrefix(dir, "Program")
	require.Error(t, err)
}

func TestCopyFileReplacesReadOnly(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dll")
	dst := filepath.Join(dir, "dst.dll")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0444))

	require.NoError(t, copyFile(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
