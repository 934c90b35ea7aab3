// Package qrcode builds the URLs of QR code images served by a Shlink server.
package qrcode

import (
	"strconv"
	"strings"
)

// Format is the image format of a QR code.
type Format string

const (
	// FormatSVG requests a vector image.
	FormatSVG Format = "svg"
	// FormatPNG requests a raster image.
	FormatPNG Format = "png"
)

// ParseFormat converts a string into a Format, falling back to def for unknown values.
func ParseFormat(s string, def Format) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG
	case FormatPNG:
		return FormatPNG
	default:
		return def
	}
}

// Options are the requested properties of the QR code image.
type Options struct {
	Format Format
	Size   int
	Margin int
}

// Capabilities describes which QR code parameters a server version accepts.
type Capabilities struct {
	UseSizeInPath     bool
	SvgIsSupported    bool
	MarginIsSupported bool
}

// BuildURL returns the QR code URL for resourceBase, usually a short URL.
// Inputs are not validated.
func BuildURL(resourceBase string, opts Options, caps Capabilities) string {
	var b strings.Builder
	b.WriteString(resourceBase)
	b.WriteString("/qr-code")

	var query []string
	if caps.UseSizeInPath {
		b.WriteString("/")
		b.WriteString(strconv.Itoa(opts.Size))
	} else {
		query = append(query, "size="+strconv.Itoa(opts.Size))
	}

	// Legacy servers only render svg and reject the parameter.
	if opts.Format != FormatSVG || caps.SvgIsSupported {
		query = append(query, "format="+string(opts.Format))
	}

	if opts.Margin > 0 && caps.MarginIsSupported {
		query = append(query, "margin="+strconv.Itoa(opts.Margin))
	}

	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(query, "&"))
	}

	return b.String()
}
