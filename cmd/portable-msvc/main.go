package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goyalyashpal/msvc-portable/internal/fetcher"
	"github.com/goyalyashpal/msvc-portable/internal/manifest"
	"github.com/goyalyashpal/msvc-portable/internal/msi"
	"github.com/goyalyashpal/msvc-portable/internal/utils/network"
)

func main() {
	root := createRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy onto distinct non-zero statuses so
// callers can tell a bad request from a bad download. There is no
// partial-success code; the tool is all-or-nothing per invocation.
func exitCode(err error) int {
	var (
		fetchErr       *network.FetchError
		certErr        *network.CertificateError
		unknownPkg     *manifest.UnknownPackageError
		unknownVersion *manifest.UnknownVersionError
		noDependency   *manifest.NoDependencyError
		integrityErr   *fetcher.IntegrityError
		extractionErr  *msi.ExtractionError
	)
	switch {
	case errors.As(err, &certErr):
		return 3
	case errors.As(err, &fetchErr):
		return 2
	case errors.As(err, &unknownPkg):
		return 4
	case errors.As(err, &unknownVersion):
		return 5
	case errors.As(err, &noDependency):
		return 6
	case errors.As(err, &integrityErr):
		return 7
	case errors.As(err, &extractionErr):
		return 8
	default:
		return 1
	}
}
