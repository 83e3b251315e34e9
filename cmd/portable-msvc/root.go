package main

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goyalyashpal/msvc-portable/internal/config"
	"github.com/goyalyashpal/msvc-portable/internal/installer"
	"github.com/goyalyashpal/msvc-portable/internal/manifest"
	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
)

var (
	cfgFile  string
	logLevel string

	showVersions bool
)

func createRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portable-msvc",
		Short: "Download a portable MSVC toolchain and Windows SDK",
		Long: `portable-msvc resolves the Visual Studio channel manifests, downloads the
MSVC compiler and Windows SDK packages with digest verification, and unpacks
them into a relocatable toolchain directory, without the Visual Studio
installer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(resolveRequestedLogLevel(cmd))
			return nil
		},
		RunE: run,
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML configuration file")
	flags.BoolVar(&showVersions, "show-versions", false, "show available MSVC and Windows SDK versions")
	flags.Bool("accept-license", false, "automatically accept the license")
	flags.String("msvc-version", "", "get a specific MSVC version")
	flags.String("sdk-version", "", "get a specific Windows SDK version")
	flags.Bool("preview", false, "use the preview channel")
	flags.String("host", "", fmt.Sprintf("host architecture (%s)", strings.Join(installer.AllHosts, ", ")))
	flags.String("target", "", fmt.Sprintf("target architectures, comma separated (%s)", strings.Join(installer.AllTargets, ", ")))
	flags.String("output", "", "output directory")
	flags.String("cache", "", "download cache directory")
	flags.String("ca-bundle", "", "alternate CA bundle for certificate verification retries")
	flags.String("version-select", "", "latest-version comparison: legacy (textual) or numeric")
	flags.Int("workers", 0, "concurrent cabinet downloads")
	flags.String("msiexec", "", "path to the msiexec tool")

	pf := cmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolP("verbose", "v", false, "shortcut for --log-level debug")

	return cmd
}

// resolveRequestedLogLevel prefers the explicit --log-level flag and falls
// back to debug when --verbose was set.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && cmd.Flags().Changed("verbose") && verbose {
		return "debug"
	}
	return ""
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !slices.Contains(installer.AllHosts, cfg.Host) {
		return fmt.Errorf("unknown host architecture %q", cfg.Host)
	}
	for _, target := range cfg.Targets {
		if !slices.Contains(installer.AllTargets, target) {
			return fmt.Errorf("unknown target architecture %q", target)
		}
	}

	inst := installer.New(installer.Options{
		Host:        cfg.Host,
		Targets:     cfg.Targets,
		MSVCVersion: cfg.MsvcVersion,
		SDKVersion:  cfg.SdkVersion,
		Preview:     cfg.Preview,
		OutputDir:   cfg.Output,
		CacheDir:    cfg.Cache,
		CABundle:    cfg.CABundle,
		Select:      manifest.SelectMode(cfg.VersionSelect),
		Workers:     cfg.Workers,
		MsiexecTool: cfg.MsiexecPath,
	})

	if showVersions {
		msvc, sdk, err := inst.Versions()
		if err != nil {
			return err
		}
		fmt.Println("MSVC versions:", strings.Join(msvc, " "))
		fmt.Println("Windows SDK versions:", strings.Join(sdk, " "))
		return nil
	}

	res, err := inst.Resolve()
	if err != nil {
		return err
	}
	fmt.Printf("Downloading MSVC v%s and Windows SDK v%s\n", res.MSVCFull, res.SDKVersion)

	if !cfg.AcceptLicense {
		accepted, err := promptLicense(res.LicenseURL)
		if err != nil {
			return err
		}
		if !accepted {
			return nil
		}
	}

	return inst.Run(res)
}

// loadConfig merges defaults, the optional YAML file, and flag overrides,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("target") {
		raw, _ := flags.GetString("target")
		cfg.Targets = strings.Split(raw, ",")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("cache") {
		cfg.Cache, _ = flags.GetString("cache")
	}
	if flags.Changed("msvc-version") {
		cfg.MsvcVersion, _ = flags.GetString("msvc-version")
	}
	if flags.Changed("sdk-version") {
		cfg.SdkVersion, _ = flags.GetString("sdk-version")
	}
	if flags.Changed("preview") {
		cfg.Preview, _ = flags.GetBool("preview")
	}
	if flags.Changed("accept-license") {
		cfg.AcceptLicense, _ = flags.GetBool("accept-license")
	}
	if flags.Changed("ca-bundle") {
		cfg.CABundle, _ = flags.GetString("ca-bundle")
	}
	if flags.Changed("version-select") {
		cfg.VersionSelect, _ = flags.GetString("version-select")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("msiexec") {
		cfg.MsiexecPath, _ = flags.GetString("msiexec")
	}
	return cfg, nil
}

func promptLicense(url string) (bool, error) {
	fmt.Printf("Do you accept the Visual Studio license at %s [Y/N] ? ", url)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer = strings.TrimSpace(answer)
	return answer != "" && strings.EqualFold(answer[:1], "y"), nil
}
