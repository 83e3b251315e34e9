package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/goyalyashpal/msvc-portable/internal/fetcher"
	"github.com/goyalyashpal/msvc-portable/internal/manifest"
	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
	"github.com/goyalyashpal/msvc-portable/internal/utils/network"
)

// Architectures the channel publishes toolchains for. Others may work but
// are not advertised.
var (
	AllHosts   = []string{"x64", "x86", "arm64"}
	AllTargets = []string{"x64", "x86", "arm", "arm64"}
)

// Options is the configuration surface the CLI collaborator hands in.
type Options struct {
	Host        string
	Targets     []string
	MSVCVersion string
	SDKVersion  string
	Preview     bool
	OutputDir   string
	CacheDir    string
	CABundle    string
	Select      manifest.SelectMode
	Workers     int
	MsiexecTool string

	// ChannelURL overrides the release/preview channel endpoint; empty
	// selects the published aka.ms URL for the chosen channel.
	ChannelURL string
}

// Resolution is the outcome of manifest navigation: which component ids and
// versions a run will materialize, plus the license the user has to answer
// for. It is handed back to the CLI so the interactive prompt can happen
// outside the core.
type Resolution struct {
	MSVCVersion string // short form, e.g. "14.40"
	MSVCFull    string // package-name form, e.g. "14.40.17.10"
	MSVCID      string
	SDKVersion  string
	SDKID       string
	LicenseURL  string
}

// Installer drives the whole pipeline: manifests, version resolution,
// verified downloads, extraction, pruning. Sequential and all-or-nothing;
// a failure anywhere aborts the run.
type Installer struct {
	opts   Options
	client *network.Client
	dl     *fetcher.Downloader
	log    *zap.SugaredLogger

	channel *manifest.ChannelManifest
	index   *manifest.Index
}

// New wires an installer from options.
func New(opts Options) *Installer {
	client := network.NewClient(opts.CABundle)
	return &Installer{
		opts:   opts,
		client: client,
		dl:     fetcher.New(client, opts.CacheDir),
		log:    logger.Logger(),
	}
}

func (in *Installer) channelURL() string {
	if in.opts.ChannelURL != "" {
		return in.opts.ChannelURL
	}
	if in.opts.Preview {
		return manifest.ChannelPreviewURL
	}
	return manifest.ChannelURL
}

// loadIndex fetches the channel manifest, follows it to the product
// manifest, and indexes the package list. Idempotent per installer.
func (in *Installer) loadIndex() error {
	if in.index != nil {
		return nil
	}
	ch, err := manifest.FetchChannel(in.client, in.channelURL())
	if err != nil {
		return err
	}
	productURL, err := ch.ProductManifestURL(in.opts.Preview)
	if err != nil {
		return err
	}
	prod, err := manifest.FetchProduct(in.client, productURL)
	if err != nil {
		return err
	}
	in.channel = ch
	in.index = manifest.BuildIndex(prod.Packages)
	return nil
}

// Versions lists the MSVC and Windows SDK versions the channel advertises,
// sorted ascending as text.
func (in *Installer) Versions() (msvc, sdk []string, err error) {
	if err := in.loadIndex(); err != nil {
		return nil, nil, err
	}
	msvcAvail, sdkAvail := manifest.ScanVersions(in.index)
	for v := range msvcAvail {
		msvc = append(msvc, v)
	}
	for v := range sdkAvail {
		sdk = append(sdk, v)
	}
	sort.Strings(msvc)
	sort.Strings(sdk)
	return msvc, sdk, nil
}

// Resolve navigates the manifests and pins down the exact component ids and
// versions this run will install.
func (in *Installer) Resolve() (*Resolution, error) {
	if err := in.loadIndex(); err != nil {
		return nil, err
	}
	msvcAvail, sdkAvail := manifest.ScanVersions(in.index)

	msvcVer, msvcID, err := manifest.Resolve(in.opts.MSVCVersion, msvcAvail, in.opts.Select, "MSVC")
	if err != nil {
		return nil, err
	}
	msvcFull, err := manifest.FullMSVCVersion(msvcID)
	if err != nil {
		return nil, err
	}
	sdkVer, sdkID, err := manifest.Resolve(in.opts.SDKVersion, sdkAvail, in.opts.Select, "Windows SDK")
	if err != nil {
		return nil, err
	}
	license, err := in.channel.LicenseURL("en-us")
	if err != nil {
		return nil, err
	}

	in.log.Infof("resolved MSVC v%s (%s) and Windows SDK v%s", msvcFull, msvcVer, sdkVer)
	return &Resolution{
		MSVCVersion: msvcVer,
		MSVCFull:    msvcFull,
		MSVCID:      msvcID,
		SDKVersion:  sdkVer,
		SDKID:       sdkID,
		LicenseURL:  license,
	}, nil
}

// Run materializes the resolved toolchain into the output directory. The
// output tree is built incrementally and is not atomic; re-running against a
// populated cache skips the downloads but overwrites extracted files.
func (in *Installer) Run(res *Resolution) error {
	if err := os.MkdirAll(in.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.MkdirAll(in.opts.CacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := in.installMSVC(res); err != nil {
		return err
	}
	if err := in.installSDK(res); err != nil {
		return err
	}

	// The on-disk directory names carry the authoritative versions; the
	// manifest's component version and the installed folder name differ.
	msvcDir, err := firstDirEntry(filepath.Join(in.opts.OutputDir, "VC", "Tools", "MSVC"))
	if err != nil {
		return fmt.Errorf("locating installed MSVC tools: %w", err)
	}
	sdkDir, err := firstDirEntry(filepath.Join(in.opts.OutputDir, "Windows Kits", "10", "bin"))
	if err != nil {
		return fmt.Errorf("locating installed Windows SDK: %w", err)
	}

	if err := in.installRuntimeDebug(msvcDir); err != nil {
		return err
	}
	if err := in.installDIASDK(msvcDir); err != nil {
		return err
	}

	in.prune(msvcDir, sdkDir)

	if err := in.writeSetupScripts(msvcDir, sdkDir); err != nil {
		return err
	}

	in.log.Infof("total downloaded: %d MB", in.dl.TotalBytes()>>20)
	return nil
}

// firstDirEntry returns the name of the first entry in dir, which for the
// trees this tool builds is the single version folder.
func firstDirEntry(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%s is empty", dir)
	}
	return entries[0].Name(), nil
}
