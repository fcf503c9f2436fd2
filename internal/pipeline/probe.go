package pipeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/dunamismax/pixelpress/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	xwebp "golang.org/x/image/webp"
)

const (
	DefaultMaxBytes  int64 = 20_000_000
	DefaultMaxPixels int64 = 0x3FFF * 0x3FFF
)

var errNoHeaderDecoder = errors.New("no header decoder for format")

// Limits bound the work a single upload may cause.
type Limits struct {
	MaxBytes  int64
	MaxPixels int64
}

func (l Limits) withDefaults() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	if l.MaxPixels <= 0 {
		l.MaxPixels = DefaultMaxPixels
	}
	return l
}

// Prober learns the true format, dimensions and size of an upload from its
// bytes. Client supplied content types are never consulted.
type Prober struct {
	limits Limits
}

func NewProber(limits Limits) Prober {
	return Prober{limits: limits.withDefaults()}
}

func (p Prober) Probe(data []byte) (domain.ProbeResult, error) {
	name, detected := sniffFormat(data)
	if name == "" {
		return domain.ProbeResult{}, domain.UnsupportedEncoding(detected)
	}

	cfg, err := decodeConfig(name, data)
	if err != nil {
		if errors.Is(err, errNoHeaderDecoder) {
			// An image type with no decoder here is never in the allow-list.
			return domain.ProbeResult{}, domain.UnsupportedFormat(name)
		}
		return domain.ProbeResult{}, domain.CorruptImage(fmt.Errorf("decode %s header: %w", name, err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return domain.ProbeResult{}, domain.CorruptImage(fmt.Errorf("%s header has invalid dimensions %dx%d", name, cfg.Width, cfg.Height))
	}

	pixels := int64(cfg.Width) * int64(cfg.Height)
	if pixels > p.limits.MaxPixels {
		return domain.ProbeResult{}, domain.PixelLimitExceeded(pixels, p.limits.MaxPixels)
	}

	format, ok := domain.ParseFormat(name)
	if !ok {
		return domain.ProbeResult{}, domain.UnsupportedFormat(name)
	}

	size := int64(len(data))
	if size == 0 || size > p.limits.MaxBytes {
		return domain.ProbeResult{}, domain.ProbedSizeExceeded(size, p.limits.MaxBytes)
	}

	return domain.ProbeResult{
		Format: format,
		Size:   size,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// sniffFormat returns the short image format name ("jpeg", "gif", ...) and
// the detected MIME type. name is empty when the bytes are not an image.
func sniffFormat(data []byte) (name, detected string) {
	if isAVIF(data) {
		return "avif", "image/avif"
	}

	detected, _, _ = strings.Cut(mimetype.Detect(data).String(), ";")
	detected = strings.TrimSpace(detected)
	subtype, ok := strings.CutPrefix(detected, "image/")
	if !ok {
		return "", detected
	}

	switch subtype {
	case "jpg", "pjpeg":
		return "jpeg", detected
	case "x-ms-bmp", "x-bmp":
		return "bmp", detected
	case "tiff-fx":
		return "tiff", detected
	case "x-icon", "vnd.microsoft.icon":
		return "ico", detected
	case "vnd.adobe.photoshop":
		return "psd", detected
	}
	subtype = strings.TrimSuffix(subtype, "+xml")
	subtype = strings.TrimPrefix(subtype, "x-")
	subtype = strings.TrimPrefix(subtype, "vnd.")
	return subtype, detected
}

// isAVIF reports whether data opens with an ISO-BMFF ftyp box naming an AVIF brand.
func isAVIF(data []byte) bool {
	if len(data) < 16 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "avif", "avis":
		return true
	}

	boxSize := int(binary.BigEndian.Uint32(data[0:4]))
	if boxSize > len(data) {
		boxSize = len(data)
	}
	for off := 16; off+4 <= boxSize; off += 4 {
		switch string(data[off : off+4]) {
		case "avif", "avis":
			return true
		}
	}
	return false
}

func decodeConfig(name string, data []byte) (image.Config, error) {
	r := bytes.NewReader(data)
	switch name {
	case "jpeg":
		return jpeg.DecodeConfig(r)
	case "png":
		return png.DecodeConfig(r)
	case "webp":
		return xwebp.DecodeConfig(r)
	case "avif":
		return avif.DecodeConfig(r)
	case "gif":
		return gif.DecodeConfig(r)
	case "bmp":
		return bmp.DecodeConfig(r)
	case "tiff":
		return tiff.DecodeConfig(r)
	default:
		return image.Config{}, fmt.Errorf("%w: %s", errNoHeaderDecoder, name)
	}
}
