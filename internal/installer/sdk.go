package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goyalyashpal/msvc-portable/internal/fetcher"
	"github.com/goyalyashpal/msvc-portable/internal/manifest"
	"github.com/goyalyashpal/msvc-portable/internal/msi"
)

// installerPrefix is the fixed path marker SDK payload file names carry.
// Cross-referencing cabinet names against the payload list depends on
// matching it exactly, backslash included.
const installerPrefix = `Installers\`

// sdkInstallerNames lists the MSI sub-packages a portable toolchain needs:
// SDK tools (rc.exe, mt.exe), headers, libs, and the Universal CRT.
func sdkInstallerNames(targets []string) []string {
	names := []string{
		"Windows SDK for Windows Store Apps Tools-x86_en-us.msi",
		"Windows SDK for Windows Store Apps Headers-x86_en-us.msi",
		"Windows SDK Desktop Headers x86-x86_en-us.msi",
		"Windows SDK for Windows Store Apps Libs-x86_en-us.msi",
		"Universal CRT Headers Libraries and Sources-x86_en-us.msi",
	}
	for _, target := range targets {
		names = append(names, fmt.Sprintf("Windows SDK Desktop Libs %s-x86_en-us.msi", target))
	}
	return names
}

// installSDK follows the SDK component's dependency edge to the package
// carrying the installer payloads, downloads the MSI set, scans each MSI for
// the cabinets it references, downloads those, and lets the platform
// installer materialize everything into the output tree.
func (in *Installer) installSDK(res *Resolution) error {
	top, err := in.index.Lookup(res.SDKID)
	if err != nil {
		return err
	}
	pkg, err := manifest.ExpandDependency(in.index, &top[0])
	if err != nil {
		return err
	}
	in.log.Infof("installing Windows SDK from %s", pkg.ID)

	findPayload := func(name string) (*manifest.Payload, bool) {
		for i := range pkg.Payloads {
			if pkg.Payloads[i].FileName == installerPrefix+name {
				return &pkg.Payloads[i], true
			}
		}
		return nil, false
	}

	var msiPaths []string
	var cabJobs []fetcher.Job
	queued := make(map[string]bool)

	for _, name := range sdkInstallerNames(in.opts.Targets) {
		payload, ok := findPayload(name)
		if !ok {
			in.log.Warnf("%s not in SDK payload list, skipping", name)
			continue
		}
		data, err := in.dl.Fetch(payload.URL, payload.SHA256, name)
		if err != nil {
			return err
		}
		msiPaths = append(msiPaths, filepath.Join(in.opts.CacheDir, name))

		for cab, scanErr := range msi.ScanCabinets(data) {
			if scanErr != nil {
				in.log.Debugf("%s: ignoring undecodable cabinet reference: %v", name, scanErr)
				continue
			}
			cabFile := cab + ".cab"
			if queued[cabFile] {
				continue
			}
			queued[cabFile] = true
			cabPayload, ok := findPayload(cabFile)
			if !ok {
				// A false positive from the byte scan; the payload list is
				// the source of truth.
				in.log.Debugf("%s: scanned name %s not in payload list, ignoring", name, cabFile)
				continue
			}
			cabJobs = append(cabJobs, fetcher.Job{
				URL:    cabPayload.URL,
				SHA256: cabPayload.SHA256,
				Name:   cabFile,
			})
		}
	}

	if err := in.dl.FetchAll(cabJobs, in.opts.Workers); err != nil {
		return err
	}

	in.log.Infof("unpacking %d msi files", len(msiPaths))
	for _, msiPath := range msiPaths {
		if err := msi.ExtractAdmin(in.opts.MsiexecTool, msiPath, in.opts.OutputDir); err != nil {
			return err
		}
		// Administrative install drops a copy of the MSI next to the
		// extracted files; it has no business in the portable tree.
		if err := os.Remove(filepath.Join(in.opts.OutputDir, filepath.Base(msiPath))); err != nil && !os.IsNotExist(err) {
			in.log.Debugf("removing stray msi copy: %v", err)
		}
	}
	return nil
}
