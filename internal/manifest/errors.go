package manifest

import "fmt"

// UnknownPackageError reports a package or channel-item id absent from the
// manifest graph.
type UnknownPackageError struct {
	ID string
}

func (e *UnknownPackageError) Error() string { return fmt.Sprintf("unknown package %q", e.ID) }

// UnknownVersionError reports a requested version the channel does not
// advertise. What names the component family ("MSVC", "Windows SDK").
type UnknownVersionError struct {
	What    string
	Version string
}

func (e *UnknownVersionError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("no %s versions available", e.What)
	}
	return fmt.Sprintf("unknown %s version: %s", e.What, e.Version)
}

// NoDependencyError reports a package record that should reference the
// record carrying the installer payloads but lists no dependencies at all.
type NoDependencyError struct {
	ID string
}

func (e *NoDependencyError) Error() string {
	return fmt.Sprintf("package %q has no dependencies", e.ID)
}
