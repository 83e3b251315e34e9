package installer

import (
	"os"
	"path/filepath"
	"slices"
)

// prune strips the extracted trees down to what a portable toolchain uses:
// IDE leftovers, store/UWP lib flavors, architectures other than the
// requested ones, and the telemetry uploader. Failures here are logged, not
// fatal; the toolchain is already usable.
func (in *Installer) prune(msvcDir, sdkDir string) {
	out := in.opts.OutputDir
	msvcRoot := filepath.Join(out, "VC", "Tools", "MSVC", msvcDir)
	kitsRoot := filepath.Join(out, "Windows Kits", "10")

	in.removeAll(filepath.Join(out, "Common7"))
	in.removeAll(filepath.Join(msvcRoot, "Auxiliary"))

	for _, target := range in.opts.Targets {
		for _, flavor := range []string{"store", "uwp", "enclave", "onecore"} {
			in.removeAll(filepath.Join(msvcRoot, "lib", target, flavor))
		}
	}

	for _, name := range []string{"Catalogs", "DesignTime"} {
		in.removeAll(filepath.Join(kitsRoot, name))
	}
	in.removeAll(filepath.Join(kitsRoot, "bin", sdkDir, "chpe"))
	in.removeAll(filepath.Join(kitsRoot, "Lib", sdkDir, "ucrt_enclave"))

	for _, arch := range AllTargets {
		if !slices.Contains(in.opts.Targets, arch) {
			in.removeAll(filepath.Join(kitsRoot, "Lib", sdkDir, "ucrt", arch))
			in.removeAll(filepath.Join(kitsRoot, "Lib", sdkDir, "um", arch))
		}
		if arch != in.opts.Host {
			in.removeAll(filepath.Join(out, "VC", "Tools", "MSVC", msvcDir, "bin", "Host"+arch))
			in.removeAll(filepath.Join(kitsRoot, "bin", sdkDir, arch))
		}
	}

	// vctip.exe phones telemetry home on every compiler run.
	for _, target := range in.opts.Targets {
		in.remove(filepath.Join(in.msvcBinDir(msvcDir, target), "vctip.exe"))
	}

	// Stray MSI copies at the output root.
	if strays, err := filepath.Glob(filepath.Join(out, "*.msi")); err == nil {
		for _, stray := range strays {
			in.remove(stray)
		}
	}
}

func (in *Installer) removeAll(path string) {
	if err := os.RemoveAll(path); err != nil {
		in.log.Debugf("pruning %s: %v", path, err)
	}
}

func (in *Installer) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		in.log.Debugf("pruning %s: %v", path, err)
	}
}
