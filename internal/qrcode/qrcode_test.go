package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		opts     Options
		caps     Capabilities
		expected string
	}{
		{
			name:     "size in path with svg",
			base:     "foo.com",
			opts:     Options{Size: 530, Format: FormatSVG},
			caps:     Capabilities{UseSizeInPath: true, SvgIsSupported: true},
			expected: "foo.com/qr-code/530?format=svg",
		},
		{
			name:     "size in path with png",
			base:     "foo.com",
			opts:     Options{Size: 530, Format: FormatPNG},
			caps:     Capabilities{UseSizeInPath: true, SvgIsSupported: true},
			expected: "foo.com/qr-code/530?format=png",
		},
		{
			name:     "legacy server omits svg format",
			base:     "bar.io",
			opts:     Options{Size: 870, Format: FormatSVG},
			caps:     Capabilities{},
			expected: "bar.io/qr-code?size=870",
		},
		{
			name:     "size query comes first",
			base:     "bar.io",
			opts:     Options{Size: 200, Format: FormatPNG},
			caps:     Capabilities{SvgIsSupported: true},
			expected: "bar.io/qr-code?size=200&format=png",
		},
		{
			name:     "size query with svg",
			base:     "bar.io",
			opts:     Options{Size: 200, Format: FormatSVG},
			caps:     Capabilities{SvgIsSupported: true},
			expected: "bar.io/qr-code?size=200&format=svg",
		},
		{
			name:     "png is always sent",
			base:     "foo.net",
			opts:     Options{Size: 480, Format: FormatPNG},
			caps:     Capabilities{UseSizeInPath: true},
			expected: "foo.net/qr-code/480?format=png",
		},
		{
			name:     "no query at all",
			base:     "foo.net",
			opts:     Options{Size: 480, Format: FormatSVG},
			caps:     Capabilities{UseSizeInPath: true},
			expected: "foo.net/qr-code/480",
		},
		{
			name:     "margin ignored when unsupported",
			base:     "shlink.io",
			opts:     Options{Size: 123, Format: FormatSVG, Margin: 10},
			caps:     Capabilities{UseSizeInPath: true},
			expected: "shlink.io/qr-code/123",
		},
		{
			name:     "margin when supported",
			base:     "shlink.io",
			opts:     Options{Size: 456, Format: FormatPNG, Margin: 10},
			caps:     Capabilities{UseSizeInPath: true, SvgIsSupported: true, MarginIsSupported: true},
			expected: "shlink.io/qr-code/456?format=png&margin=10",
		},
		{
			name:     "zero margin is omitted",
			base:     "shlink.io",
			opts:     Options{Size: 456, Format: FormatPNG},
			caps:     Capabilities{UseSizeInPath: true, SvgIsSupported: true, MarginIsSupported: true},
			expected: "shlink.io/qr-code/456?format=png",
		},
		{
			name:     "all query params",
			base:     "s.test/abc",
			opts:     Options{Size: 300, Format: FormatSVG, Margin: 5},
			caps:     Capabilities{SvgIsSupported: true, MarginIsSupported: true},
			expected: "s.test/abc/qr-code?size=300&format=svg&margin=5",
		},
		{
			name:     "negative size is not validated",
			base:     "s.test",
			opts:     Options{Size: -1, Format: FormatPNG},
			caps:     Capabilities{UseSizeInPath: true, SvgIsSupported: true},
			expected: "s.test/qr-code/-1?format=png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildURL(tt.base, tt.opts, tt.caps))
		})
	}
}

func TestBuildURL_Deterministic(t *testing.T) {
	opts := Options{Size: 250, Format: FormatPNG, Margin: 3}
	caps := Capabilities{SvgIsSupported: true, MarginIsSupported: true}

	first := BuildURL("example.com/x", opts, caps)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildURL("example.com/x", opts, caps))
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatSVG, ParseFormat("SVG", FormatPNG))
	assert.Equal(t, FormatPNG, ParseFormat(" png ", FormatSVG))
	assert.Equal(t, FormatPNG, ParseFormat("gif", FormatPNG))
	assert.Equal(t, FormatSVG, ParseFormat("", FormatSVG))
}
