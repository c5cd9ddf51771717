package interp

import "golang.org/x/mod/semver"

// EngineVersion is the rvm binary's own --version banner, distinct from
// rsiFormatVersion (the RSI container's version field). Spec.md §6.1 -v.
const EngineVersion = "v0.1.0"

// VersionCheck is --vs-check's result (spec.md §6.1 -vc): whether an RSI
// file's format version is one this engine can load, and a human line
// describing the comparison.
type VersionCheck struct {
	FileVersion   string
	EngineSupports string
	Compatible    bool
	Message       string
}

// CheckRSIVersion compares an RSI header's format version against the
// version this build of the engine writes, using semantic-version
// precedence rather than string equality so a loader built against v1.1.0
// still accepts files stamped v1.0.x (spec.md §6.3's format-evolution
// intent; "no cross-profile RSI stability guarantee" only disclaims
// cross-*profile* compatibility, not cross-patch).
func CheckRSIVersion(hdr *RSIHeader) VersionCheck {
	vc := VersionCheck{FileVersion: hdr.Version, EngineSupports: rsiFormatVersion}
	if !hdr.HasVersion {
		vc.Message = "RSI file carries no version header (minified profile); compatibility cannot be verified"
		vc.Compatible = hdr.Profile == ProfileMinified
		return vc
	}
	if !semver.IsValid(hdr.Version) {
		vc.Message = "malformed RSI version string: " + hdr.Version
		return vc
	}
	if semver.Major(hdr.Version) != semver.Major(rsiFormatVersion) {
		vc.Message = "incompatible RSI major version: file is " + hdr.Version + ", engine writes " + rsiFormatVersion
		return vc
	}
	cmp := semver.Compare(hdr.Version, rsiFormatVersion)
	vc.Compatible = true
	switch {
	case cmp == 0:
		vc.Message = "RSI version " + hdr.Version + " matches engine format exactly"
	case cmp < 0:
		vc.Message = "RSI version " + hdr.Version + " predates engine format " + rsiFormatVersion + "; loadable"
	default:
		vc.Message = "RSI version " + hdr.Version + " is newer than engine format " + rsiFormatVersion + "; loadable within the same major version"
	}
	return vc
}
