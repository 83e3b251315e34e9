package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/goyalyashpal/msvc-portable/internal/manifest"
	"github.com/goyalyashpal/msvc-portable/internal/msi"
)

const (
	runtimeDebugID = "microsoft.visualcpp.runtimedebug.14"
	diaSDKID       = "microsoft.visualc.140.dia.sdk.msi"
)

// msdiaByHost names the msdia140.dll flavor inside the DIA SDK tree for
// each host architecture.
var msdiaByHost = map[string]string{
	"x86":   "msdia140.dll",
	"x64":   "amd64/msdia140.dll",
	"arm64": "arm64/msdia140.dll",
}

// installRuntimeDebug places the debug CRT runtime DLLs into the MSVC bin
// folders. The real installer does not do this, but a portable toolchain
// without them cannot run debug builds.
func (in *Installer) installRuntimeDebug(msvcDir string) error {
	rec, err := in.index.First(runtimeDebugID, func(r *manifest.PackageRecord) bool {
		return r.Chip == in.opts.Host
	})
	if err != nil {
		return err
	}
	in.log.Infof("installing debug CRT runtime")

	msiName, err := in.fetchMSIPackage(rec, "crtd")
	if err != nil {
		return err
	}

	staging, cleanup, err := in.stagingDir()
	if err != nil {
		return err
	}
	defer cleanup()

	msiPath := filepath.Join(in.opts.CacheDir, "crtd", msiName)
	if err := msi.ExtractAdmin(in.opts.MsiexecTool, msiPath, staging); err != nil {
		return err
	}

	// Administrative install lands the DLLs in a System*/ folder.
	systemDir, err := findDirWithPrefix(staging, "System")
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(systemDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", systemDir, err)
	}
	for _, target := range in.opts.Targets {
		binDir := in.msvcBinDir(msvcDir, target)
		if err := os.MkdirAll(binDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", binDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			src := filepath.Join(systemDir, entry.Name())
			if err := copyFile(src, filepath.Join(binDir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// installDIASDK copies msdia140.dll into the MSVC bin folders so debug
// information access works without a Visual Studio install.
func (in *Installer) installDIASDK(msvcDir string) error {
	flavor, ok := msdiaByHost[in.opts.Host]
	if !ok {
		return fmt.Errorf("no msdia140.dll flavor for host %s", in.opts.Host)
	}

	recs, err := in.index.Lookup(diaSDKID)
	if err != nil {
		return err
	}
	in.log.Infof("installing DIA SDK")

	msiName, err := in.fetchMSIPackage(&recs[0], "dia")
	if err != nil {
		return err
	}

	staging, cleanup, err := in.stagingDir()
	if err != nil {
		return err
	}
	defer cleanup()

	msiPath := filepath.Join(in.opts.CacheDir, "dia", msiName)
	if err := msi.ExtractAdmin(in.opts.MsiexecTool, msiPath, staging); err != nil {
		return err
	}

	src := filepath.Join(staging,
		"Program Files", "Microsoft Visual Studio 14.0", "DIA SDK", "bin",
		filepath.FromSlash(flavor))
	for _, target := range in.opts.Targets {
		binDir := in.msvcBinDir(msvcDir, target)
		if err := os.MkdirAll(binDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", binDir, err)
		}
		if err := copyFile(src, filepath.Join(binDir, "msdia140.dll")); err != nil {
			return err
		}
	}
	return nil
}

// fetchMSIPackage downloads every payload of rec into the named cache
// sub-folder and returns the file name of the MSI among them.
func (in *Installer) fetchMSIPackage(rec *manifest.PackageRecord, subdir string) (string, error) {
	var msiName string
	for _, payload := range rec.Payloads {
		if _, err := in.dl.Fetch(payload.URL, payload.SHA256, subdir+"/"+payload.FileName); err != nil {
			return "", err
		}
		if strings.HasSuffix(payload.FileName, ".msi") {
			msiName = payload.FileName
		}
	}
	if msiName == "" {
		return "", fmt.Errorf("package %s carries no msi payload", rec.ID)
	}
	return msiName, nil
}

func (in *Installer) stagingDir() (string, func(), error) {
	dir := filepath.Join(in.opts.CacheDir, "tmp-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (in *Installer) msvcBinDir(msvcDir, target string) string {
	return filepath.Join(in.opts.OutputDir, "VC", "Tools", "MSVC", msvcDir,
		"bin", "Host"+in.opts.Host, target)
}

func findDirWithPrefix(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no %s* directory under %s", prefix, dir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	// The source may carry a read-only attribute; recreate rather than
	// write in place.
	_ = os.Remove(dst)
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return nil
}
