package domain

import "strings"

// Format is an image encoding the service accepts and re-encodes.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
	FormatAVIF Format = "avif"
)

var supportedFormats = []Format{FormatJPEG, FormatPNG, FormatWEBP, FormatAVIF}

// SupportedFormats returns the allow-list in a stable order.
func SupportedFormats() []Format {
	out := make([]Format, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// ParseFormat maps a detected format name onto the allow-list.
func ParseFormat(name string) (Format, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "jpg" {
		name = "jpeg"
	}
	for _, f := range supportedFormats {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

func (f Format) String() string {
	return string(f)
}

func (f Format) ContentType() string {
	return "image/" + string(f)
}
