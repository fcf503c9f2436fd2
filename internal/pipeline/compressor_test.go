package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dunamismax/pixelpress/internal/domain"
)

func TestCompressReturnsSameFormat(t *testing.T) {
	compressor, err := NewCompressor(Limits{})
	if err != nil {
		t.Fatalf("new compressor: %v", err)
	}

	for _, name := range supportedFormatNames() {
		t.Run(name, func(t *testing.T) {
			input := encodeFixture(t, name, 64, 48)

			outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
				Data:         input,
				DeclaredSize: int64(len(input)),
				Quality:      80,
			})
			if !outcome.OK() {
				t.Fatalf("expected success, got %v", outcome.Failure)
			}
			if outcome.Success.Format != domain.Format(name) {
				t.Fatalf("expected format %s, got %s", name, outcome.Success.Format)
			}
			if outcome.Success.OriginalSize != int64(len(input)) {
				t.Fatalf("expected original size %d, got %d", len(input), outcome.Success.OriginalSize)
			}
			if len(outcome.Success.Data) == 0 {
				t.Fatal("expected encoded bytes")
			}
		})
	}
}

func TestCompressNonImageIsProbeFailure(t *testing.T) {
	compressor := newCompressor(Limits{}, panicEncoder{})

	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:    []byte("GIF? no, just text pretending to be a picture"),
		Quality: 50,
	})
	if outcome.OK() {
		t.Fatal("expected failure for non-image input")
	}
	if outcome.Failure.Kind != domain.KindProbeFailed {
		t.Fatalf("expected probe_failed, got %s", outcome.Failure.Kind)
	}
}

func TestCompressTruncatedBodyIsCorrupt(t *testing.T) {
	compressor, err := NewCompressor(Limits{})
	if err != nil {
		t.Fatalf("new compressor: %v", err)
	}

	input := encodeFixture(t, "jpeg", 64, 64)
	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:    input[:len(input)/2],
		Quality: 50,
	})
	if outcome.OK() {
		t.Fatal("expected failure for truncated jpeg")
	}
	if outcome.Failure.Kind != domain.KindProbeFailed || outcome.Failure.Reason != domain.ReasonCorrupt {
		t.Fatalf("expected corrupt probe failure, got %s/%s", outcome.Failure.Kind, outcome.Failure.Reason)
	}
}

func TestCompressEncoderFailureHidesDiagnostics(t *testing.T) {
	compressor := newCompressor(Limits{}, failingEncoder{err: errors.New("libfoo: colourspace 17 not handled")})

	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:    encodeFixture(t, "png", 16, 16),
		Quality: 50,
	})
	if outcome.OK() {
		t.Fatal("expected encode failure")
	}
	if outcome.Failure.Kind != domain.KindEncodeFailed {
		t.Fatalf("expected encode_failed, got %s", outcome.Failure.Kind)
	}
	if strings.Contains(outcome.Failure.Message, "libfoo") {
		t.Fatalf("internal diagnostic leaked: %q", outcome.Failure.Message)
	}
}

func TestCompressRecoversEncoderPanic(t *testing.T) {
	compressor := newCompressor(Limits{}, panicEncoder{})

	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:    encodeFixture(t, "png", 16, 16),
		Quality: 50,
	})
	if outcome.OK() {
		t.Fatal("expected failure after encoder panic")
	}
	if outcome.Failure.Kind != domain.KindEncodeFailed {
		t.Fatalf("expected encode_failed, got %s", outcome.Failure.Kind)
	}
}

func TestCompressEmptyEncoderOutputFails(t *testing.T) {
	compressor := newCompressor(Limits{}, failingEncoder{})

	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:    encodeFixture(t, "png", 16, 16),
		Quality: 50,
	})
	if outcome.OK() || outcome.Failure.Kind != domain.KindEncodeFailed {
		t.Fatalf("expected encode_failed for empty output, got %+v", outcome)
	}
}

func TestCompressCanceledBeforeEncode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	compressor := newCompressor(Limits{}, panicEncoder{})
	outcome := compressor.Compress(ctx, domain.CompressionRequest{
		Data:    encodeFixture(t, "png", 16, 16),
		Quality: 50,
	})
	if outcome.OK() || outcome.Failure.Kind != domain.KindEncodeFailed {
		t.Fatalf("expected encode_failed for canceled request, got %+v", outcome)
	}
}

func TestCompressRejectsUnnormalisedQuality(t *testing.T) {
	compressor := newCompressor(Limits{}, panicEncoder{})
	input := encodeFixture(t, "png", 8, 8)

	for _, q := range []int{0, -1, 101} {
		outcome := compressor.Compress(context.Background(), domain.CompressionRequest{Data: input, Quality: q})
		if outcome.OK() || outcome.Failure.Kind != domain.KindInvalidQuality {
			t.Fatalf("quality %d: expected invalid_quality, got %+v", q, outcome)
		}
	}
}

func TestCompressOversizedInputIgnoresDeclaredSize(t *testing.T) {
	input := encodeFixture(t, "png", 64, 64)
	compressor := newCompressor(Limits{MaxBytes: int64(len(input)) - 1}, panicEncoder{})

	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:         input,
		DeclaredSize: 10,
		Quality:      50,
	})
	if outcome.OK() || outcome.Failure.Kind != domain.KindSizeExceeded {
		t.Fatalf("expected size_exceeded, got %+v", outcome)
	}
	if outcome.Failure.Reason != domain.ReasonProbed {
		t.Fatalf("expected probed reason, got %s", outcome.Failure.Reason)
	}
}

func BenchmarkCompressJPEG(b *testing.B) {
	input := encodeFixture(b, "jpeg", 1920, 1080)
	compressor, err := NewCompressor(Limits{})
	if err != nil {
		b.Fatalf("new compressor: %v", err)
	}

	req := domain.CompressionRequest{Data: input, Quality: 75}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if outcome := compressor.Compress(context.Background(), req); !outcome.OK() {
			b.Fatalf("compress: %v", outcome.Failure)
		}
	}
}

func BenchmarkCompressPNG(b *testing.B) {
	input := encodeFixture(b, "png", 1920, 1080)
	compressor, err := NewCompressor(Limits{})
	if err != nil {
		b.Fatalf("new compressor: %v", err)
	}

	req := domain.CompressionRequest{Data: input, Quality: 75}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if outcome := compressor.Compress(context.Background(), req); !outcome.OK() {
			b.Fatalf("compress: %v", outcome.Failure)
		}
	}
}

type failingEncoder struct {
	err error
}

func (e failingEncoder) Encode(context.Context, []byte, domain.Format, int) ([]byte, error) {
	return nil, e.err
}

type panicEncoder struct{}

func (panicEncoder) Encode(context.Context, []byte, domain.Format, int) ([]byte, error) {
	panic("encoder blew up")
}

func TestCompressAnimatedWEBPKeepsFormat(t *testing.T) {
	compressor, err := NewCompressor(Limits{})
	if err != nil {
		t.Fatalf("new compressor: %v", err)
	}
	input := animatedWEBPFixture(t, 48, 32)

	outcome := compressor.Compress(context.Background(), domain.CompressionRequest{
		Data:    input,
		Quality: 60,
	})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v (%v)", outcome.Failure, outcome.Failure.Err)
	}
	if outcome.Success.Format != domain.FormatWEBP {
		t.Fatalf("expected webp, got %s", outcome.Success.Format)
	}
	if outcome.Success.Width != 48 || outcome.Success.Height != 32 {
		t.Fatalf("expected 48x32, got %dx%d", outcome.Success.Width, outcome.Success.Height)
	}
}
