package shlink

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
)

// Minimum server versions of optional features.
const (
	minVersionShortCodeLength = ">= 2.1.0"
	minVersionListingDomains  = ">= 2.4.0"
	minVersionQrCodeSvg       = ">= 2.4.0"
	minVersionQrCodeMargin    = ">= 2.4.0"
	minVersionQrCodeSizeQuery = ">= 2.5.0"
)

// versionMatches reports whether version satisfies constraint.
// An empty version supports nothing. Anything that is not semver is a development build
// and supports everything.
func versionMatches(version, constraint string) bool {
	version = strings.TrimSpace(version)
	switch strings.ToLower(version) {
	case "":
		return false
	case "latest", "dev", "develop":
		return true
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return true
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	// Pre-releases of a matching version count as that version.
	if v.Prerelease() != "" {
		stripped, err := v.SetPrerelease("")
		if err == nil {
			v = &stripped
		}
	}
	return c.Check(v)
}

// SupportsShortCodeLength reports whether the server accepts a custom short code length.
func SupportsShortCodeLength(version string) bool {
	return versionMatches(version, minVersionShortCodeLength)
}

// SupportsListingDomains reports whether the server can list its domains.
func SupportsListingDomains(version string) bool {
	return versionMatches(version, minVersionListingDomains)
}

// QRCapabilities returns the QR code parameters accepted by a server version.
func QRCapabilities(version string) qrcode.Capabilities {
	return qrcode.Capabilities{
		UseSizeInPath:     !versionMatches(version, minVersionQrCodeSizeQuery),
		SvgIsSupported:    versionMatches(version, minVersionQrCodeSvg),
		MarginIsSupported: versionMatches(version, minVersionQrCodeMargin),
	}
}
