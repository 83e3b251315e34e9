package installer

import (
	"fmt"

	"github.com/goyalyashpal/msvc-portable/internal/extract"
	"github.com/goyalyashpal/msvc-portable/internal/manifest"
)

// zipRoot is the marker VSIX payloads store their content under; everything
// outside it is packaging metadata.
const zipRoot = "Contents/"

// msvcPackageIDs instantiates the compiler package-name templates for one
// host and the requested targets: toolchain binaries, resources, CRT headers
// and libs, CRT source, and ASAN (x86/x64 only).
func msvcPackageIDs(ver, host string, targets []string) []string {
	ids := []string{
		fmt.Sprintf("microsoft.vc.%s.crt.headers.base", ver),
		fmt.Sprintf("microsoft.vc.%s.crt.source.base", ver),
		fmt.Sprintf("microsoft.vc.%s.asan.headers.base", ver),
	}
	for _, target := range targets {
		ids = append(ids,
			fmt.Sprintf("microsoft.vc.%s.tools.host%s.target%s.base", ver, host, target),
			fmt.Sprintf("microsoft.vc.%s.tools.host%s.target%s.res.base", ver, host, target),
			fmt.Sprintf("microsoft.vc.%s.crt.%s.desktop.base", ver, target),
			fmt.Sprintf("microsoft.vc.%s.crt.%s.store.base", ver, target),
		)
		if target == "x86" || target == "x64" {
			ids = append(ids, fmt.Sprintf("microsoft.vc.%s.asan.%s.base", ver, target))
		}
	}
	return ids
}

// installMSVC downloads every compiler package payload and unpacks its
// Contents/ tree into the output root. Records are disambiguated by
// language: the neutral variant or en-US wins.
func (in *Installer) installMSVC(res *Resolution) error {
	for _, id := range msvcPackageIDs(res.MSVCFull, in.opts.Host, in.opts.Targets) {
		rec, err := in.index.First(id, func(r *manifest.PackageRecord) bool {
			return r.Language == "" || r.Language == "en-US"
		})
		if err != nil {
			return err
		}
		in.log.Infof("installing %s", rec.ID)
		for _, payload := range rec.Payloads {
			data, err := in.dl.Fetch(payload.URL, payload.SHA256, payload.FileName)
			if err != nil {
				return err
			}
			if err := extract.Unzip(data, zipRoot, in.opts.OutputDir); err != nil {
				return fmt.Errorf("unpacking %s: %w", payload.FileName, err)
			}
		}
	}
	return nil
}
