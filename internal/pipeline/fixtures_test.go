package pipeline

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/dunamismax/pixelpress/internal/domain"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"golang.org/x/image/bmp"
)

func buildTestImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: uint8((x*31 + y*17) % 256),
				A: 255,
			})
		}
	}
	return img
}

func encodeFixture(t testing.TB, name string, w, h int) []byte {
	t.Helper()

	img := buildTestImage(w, h)
	var (
		buf bytes.Buffer
		err error
	)
	switch name {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	case "png":
		err = png.Encode(&buf, img)
	case "webp":
		err = webp.Encode(&buf, img, webp.Options{Quality: 95, Method: webpMethod})
	case "avif":
		err = avif.Encode(&buf, img, avif.Options{Quality: 90, QualityAlpha: 90, Speed: avifSpeed})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	default:
		t.Fatalf("no fixture encoder for %s", name)
	}
	if err != nil {
		t.Fatalf("encode %s fixture: %v", name, err)
	}
	return buf.Bytes()
}

// animatedWEBPFixture assembles a two-frame animated WebP (VP8X + ANIM +
// ANMF) from single-frame encodes.
func animatedWEBPFixture(t testing.TB, w, h int) []byte {
	t.Helper()

	var frames [][]byte
	hasAlpha := false
	for i := 0; i < 2; i++ {
		img := buildTestImage(w, h)
		if i == 1 {
			for p := range img.Pix {
				if p%4 != 3 {
					img.Pix[p] = 255 - img.Pix[p]
				}
			}
		}
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, webp.Options{Quality: 90, Method: webpMethod}); err != nil {
			t.Fatalf("encode webp frame: %v", err)
		}
		frame, alpha := webpImageChunks(t, buf.Bytes())
		hasAlpha = hasAlpha || alpha
		frames = append(frames, frame)
	}

	flags := byte(0x02)
	if hasAlpha {
		flags |= 0x10
	}
	vp8x := make([]byte, 10)
	vp8x[0] = flags
	putUint24(vp8x[4:], uint32(w-1))
	putUint24(vp8x[7:], uint32(h-1))

	anim := make([]byte, 6) // background colour, loop count 0

	var body bytes.Buffer
	body.WriteString("WEBP")
	writeRIFFChunk(&body, "VP8X", vp8x)
	writeRIFFChunk(&body, "ANIM", anim)
	for _, frame := range frames {
		header := make([]byte, 16)
		putUint24(header[6:], uint32(w-1))
		putUint24(header[9:], uint32(h-1))
		putUint24(header[12:], 100)
		writeRIFFChunk(&body, "ANMF", append(header, frame...))
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// webpImageChunks returns the ALPH/VP8/VP8L chunks of a still WebP, ready to
// be embedded in an ANMF frame.
func webpImageChunks(t testing.TB, data []byte) (chunks []byte, alpha bool) {
	t.Helper()

	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Fatal("not a RIFF WEBP stream")
	}
	for off := 12; off+8 <= len(data); {
		fourCC := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		end := off + 8 + size + size%2
		if end > len(data) {
			end = len(data)
		}
		switch fourCC {
		case "ALPH":
			alpha = true
			chunks = append(chunks, data[off:end]...)
		case "VP8 ", "VP8L":
			chunks = append(chunks, data[off:end]...)
		}
		off = end
	}
	if len(chunks) == 0 {
		t.Fatal("webp stream has no image chunk")
	}
	return chunks, alpha
}

func writeRIFFChunk(buf *bytes.Buffer, fourCC string, payload []byte) {
	buf.WriteString(fourCC)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func supportedFormatNames() []string {
	names := make([]string, 0, 4)
	for _, f := range domain.SupportedFormats() {
		names = append(names, f.String())
	}
	return names
}
