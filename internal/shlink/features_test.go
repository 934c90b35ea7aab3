package shlink

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
)

func TestVersionMatches(t *testing.T) {
	tests := []struct {
		version    string
		constraint string
		want       bool
	}{
		{"2.4.0", ">= 2.4.0", true},
		{"v2.4.1", ">= 2.4.0", true},
		{"2.3.9", ">= 2.4.0", false},
		{"2.5.0-rc.1", ">= 2.5.0", true},
		{"", ">= 1.0.0", false},
		{"latest", ">= 9.0.0", true},
		{"feature-branch", ">= 9.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.version+tt.constraint, func(t *testing.T) {
			assert.Equal(t, tt.want, versionMatches(tt.version, tt.constraint))
		})
	}
}

func TestFeatureChecks(t *testing.T) {
	assert.False(t, SupportsShortCodeLength("2.0.5"))
	assert.True(t, SupportsShortCodeLength("2.1.0"))
	assert.False(t, SupportsListingDomains("2.3.0"))
	assert.True(t, SupportsListingDomains("3.0.0"))
}

func TestQRCapabilities(t *testing.T) {
	tests := []struct {
		version string
		want    qrcode.Capabilities
	}{
		{"2.3.0", qrcode.Capabilities{UseSizeInPath: true}},
		{"2.4.0", qrcode.Capabilities{UseSizeInPath: true, SvgIsSupported: true, MarginIsSupported: true}},
		{"2.5.0", qrcode.Capabilities{SvgIsSupported: true, MarginIsSupported: true}},
		{"3.7.2", qrcode.Capabilities{SvgIsSupported: true, MarginIsSupported: true}},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, QRCapabilities(tt.version))
		})
	}
}

func TestQRCapabilities_BuildURL(t *testing.T) {
	opts := qrcode.Options{Size: 300, Format: qrcode.FormatSVG}
	assert.Equal(t, "https://s.test/abc/qr-code/300",
		qrcode.BuildURL("https://s.test/abc", opts, QRCapabilities("2.3.1")))
	assert.Equal(t, "https://s.test/abc/qr-code?size=300&format=svg",
		qrcode.BuildURL("https://s.test/abc", opts, QRCapabilities("2.8.0")))
}
