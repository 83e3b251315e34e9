package manifest

import (
	"strings"

	"github.com/blang/semver/v4"
)

// SelectMode chooses how the "latest" version is picked when none is
// requested explicitly.
type SelectMode string

const (
	// SelectLegacy compares version strings as text, like the original
	// selection logic: "9.9" beats "10.0". Kept as observable behavior.
	SelectLegacy SelectMode = "legacy"
	// SelectNumeric compares versions numerically via semver, so "10.0"
	// beats "9.9".
	SelectNumeric SelectMode = "numeric"
)

const (
	msvcKeyPrefix = "microsoft.visualstudio.component.vc."
	msvcKeySuffix = ".x86.x64"
	sdk10Prefix   = "microsoft.visualstudio.component.windows10sdk."
	sdk11Prefix   = "microsoft.visualstudio.component.windows11sdk."
)

// MSVCVersionFromID extracts the short toolset version ("14.40") from a
// compiler component id, or "" when the id is not a compiler component.
// The id must already be lowercase, which Index keys guarantee.
func MSVCVersionFromID(id string) string {
	if !strings.HasPrefix(id, msvcKeyPrefix) || !strings.HasSuffix(id, msvcKeySuffix) {
		return ""
	}
	parts := strings.Split(id, ".")
	if len(parts) < 6 {
		return ""
	}
	ver := parts[4] + "." + parts[5]
	if ver[0] < '0' || ver[0] > '9' {
		return ""
	}
	return ver
}

// SDKVersionFromID extracts the SDK build number ("22621") from a Windows
// 10/11 SDK component id, or "" when the id is not one.
func SDKVersionFromID(id string) string {
	if !strings.HasPrefix(id, sdk10Prefix) && !strings.HasPrefix(id, sdk11Prefix) {
		return ""
	}
	parts := strings.Split(id, ".")
	ver := parts[len(parts)-1]
	if !isNumeric(ver) {
		return ""
	}
	return ver
}

// FullMSVCVersion turns a compiler component id into the full toolset
// version the package names embed: the dot components between the "vc."
// marker and the trailing ".x86.x64" (e.g. "14.40.17.10").
func FullMSVCVersion(id string) (string, error) {
	parts := strings.Split(strings.ToLower(id), ".")
	if len(parts) < 7 {
		return "", &UnknownVersionError{What: "MSVC", Version: id}
	}
	return strings.Join(parts[4:len(parts)-2], "."), nil
}

// ScanVersions walks the index keys and collects the advertised MSVC and
// Windows SDK versions, each mapped to its component id. When several ids
// yield the same version the survivor is unspecified, matching the original
// behavior.
func ScanVersions(x *Index) (msvc, sdk map[string]string) {
	msvc = make(map[string]string)
	sdk = make(map[string]string)
	for _, id := range x.IDs() {
		if ver := MSVCVersionFromID(id); ver != "" {
			msvc[ver] = id
		} else if ver := SDKVersionFromID(id); ver != "" {
			sdk[ver] = id
		}
	}
	return msvc, sdk
}

// Resolve picks a version from available. A non-empty request must match a
// key exactly (case-sensitive) or the resolution fails; otherwise the
// maximum available version is selected under the given mode.
func Resolve(requested string, available map[string]string, mode SelectMode, what string) (version, id string, err error) {
	if requested != "" {
		id, ok := available[requested]
		if !ok {
			return "", "", &UnknownVersionError{What: what, Version: requested}
		}
		return requested, id, nil
	}
	if len(available) == 0 {
		return "", "", &UnknownVersionError{What: what}
	}

	var best string
	for ver := range available {
		if best == "" || versionLess(best, ver, mode) {
			best = ver
		}
	}
	return best, available[best], nil
}

func versionLess(a, b string, mode SelectMode) bool {
	if mode == SelectNumeric {
		va, errA := semver.ParseTolerant(a)
		vb, errB := semver.ParseTolerant(b)
		if errA == nil && errB == nil {
			return va.LT(vb)
		}
	}
	return a < b
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
