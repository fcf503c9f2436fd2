package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/dunamismax/pixelpress/internal/domain"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	xwebp "golang.org/x/image/webp"
)

const (
	webpMethod = 4
	avifSpeed  = 8
)

type stdlibEncoder struct{}

func (e stdlibEncoder) Encode(ctx context.Context, input []byte, format domain.Format, quality int) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	src, err := decodeImage(format, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
	}

	return encodeImage(src, format, quality)
}

func decodeImage(format domain.Format, input []byte) (image.Image, error) {
	r := bytes.NewReader(input)
	switch format {
	case domain.FormatJPEG:
		return jpeg.Decode(r)
	case domain.FormatPNG:
		return png.Decode(r)
	case domain.FormatWEBP:
		return decodeWEBP(input)
	case domain.FormatAVIF:
		return avif.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// decodeWEBP tries the pure Go decoder first. It cannot read animated
// (VP8X+ANIM) files, so those go through libwebp, which yields the first frame.
func decodeWEBP(input []byte) (image.Image, error) {
	img, err := xwebp.Decode(bytes.NewReader(input))
	if err == nil {
		return img, nil
	}
	img, fallbackErr := webp.Decode(bytes.NewReader(input))
	if fallbackErr != nil {
		return nil, fmt.Errorf("%v; libwebp: %w", err, fallbackErr)
	}
	return img, nil
}

func encodeImage(img image.Image, format domain.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case domain.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case domain.FormatPNG:
		// image/png is lossless only; compression effort is the one knob it has.
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case domain.FormatWEBP:
		if err := webp.Encode(&buf, img, webp.Options{Quality: quality, Method: webpMethod}); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	case domain.FormatAVIF:
		opts := avif.Options{Quality: quality, QualityAlpha: quality, Speed: avifSpeed}
		if err := avif.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode avif: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	return buf.Bytes(), nil
}
