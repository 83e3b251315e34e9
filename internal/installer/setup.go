package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// setupTemplate is the environment script dropped at the output root, one
// per target. %~dp0 makes it relocatable with the tree.
const setupTemplate = `@echo off

set VSCMD_ARG_HOST_ARCH={{HOST}}
set VSCMD_ARG_TGT_ARCH={{TARGET}}

set MSVC_VERSION={{MSVCV}}
set SDK_VERSION={{SDKV}}

set MSVC_ROOT=%~dp0VC\Tools\MSVC\{{MSVCV}}
set SDK_INCLUDE=%~dp0Windows Kits\10\Include\{{SDKV}}
set SDK_LIBS=%~dp0Windows Kits\10\Lib\{{SDKV}}

set VCToolsInstallDir=%MSVC_ROOT%\
set VCToolsVersion={{MSVCV}}
set WindowsSDKVersion={{SDKV}}\

set PATH=%MSVC_ROOT%\bin\Host{{HOST}}\{{TARGET}};%~dp0Windows Kits\10\bin\{{SDKV}}\{{HOST}};%~dp0Windows Kits\10\bin\{{SDKV}}\{{HOST}}\ucrt;%PATH%
set INCLUDE=%MSVC_ROOT%\include;%SDK_INCLUDE%\ucrt;%SDK_INCLUDE%\shared;%SDK_INCLUDE%\um;%SDK_INCLUDE%\winrt;%SDK_INCLUDE%\cppwinrt
set LIB=%MSVC_ROOT%\lib\{{TARGET}};%SDK_LIBS%\ucrt\{{TARGET}};%SDK_LIBS%\um\{{TARGET}}
`

// renderSetupScript fills the template for one host/target pair.
func renderSetupScript(host, target, msvcDir, sdkDir string) string {
	replacer := strings.NewReplacer(
		"{{HOST}}", host,
		"{{TARGET}}", target,
		"{{MSVCV}}", msvcDir,
		"{{SDKV}}", sdkDir,
	)
	return replacer.Replace(setupTemplate)
}

// writeSetupScripts drops setup_<target>.bat at the output root for every
// requested target.
func (in *Installer) writeSetupScripts(msvcDir, sdkDir string) error {
	for _, target := range in.opts.Targets {
		script := renderSetupScript(in.opts.Host, target, msvcDir, sdkDir)
		path := filepath.Join(in.opts.OutputDir, fmt.Sprintf("setup_%s.bat", target))
		if err := os.WriteFile(path, []byte(script), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		in.log.Infof("wrote %s", path)
	}
	return nil
}
