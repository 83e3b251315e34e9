package msi

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
)

// DefaultTool is the platform installer invoked for MSI payloads.
const DefaultTool = "msiexec.exe"

// ExtractionError reports a non-zero exit from the installer tool.
type ExtractionError struct {
	Path   string
	Output string
	Err    error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extracting %s: %v", e.Path, e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// ExtractAdmin unpacks an MSI into targetDir using the installer's
// administrative install mode, quiet and non-interactive. The tool owns the
// MSI format; only its exit code and the populated target directory matter
// here. An empty tool falls back to DefaultTool.
func ExtractAdmin(tool, msiPath, targetDir string) error {
	if tool == "" {
		tool = DefaultTool
	}
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving target directory: %w", err)
	}

	cmd := exec.Command(tool, "/a", msiPath, "/quiet", "/qn", "TARGETDIR="+absTarget)
	logger.Logger().Debugf("Exec: [%s]", strings.Join(cmd.Args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ExtractionError{Path: msiPath, Output: string(output), Err: err}
	}
	return nil
}
