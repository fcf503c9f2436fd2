package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dunamismax/pixelpress/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Compressor runs probe then encode for one validated request. It holds no
// per-request state and is safe for concurrent use.
type Compressor struct {
	prober  Prober
	encoder Encoder
	tracer  trace.Tracer
}

func NewCompressor(limits Limits) (*Compressor, error) {
	encoder, err := newEncoder()
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}
	return newCompressor(limits, encoder), nil
}

func newCompressor(limits Limits, encoder Encoder) *Compressor {
	return &Compressor{
		prober:  NewProber(limits),
		encoder: encoder,
		tracer:  otel.Tracer("pixelpress/pipeline"),
	}
}

func (c *Compressor) Compress(ctx context.Context, req domain.CompressionRequest) domain.Outcome {
	if req.Quality <= 0 {
		return domain.Failed(domain.QualityTooLow())
	}
	if req.Quality > domain.MaxQuality {
		return domain.Failed(domain.QualityTooHigh())
	}

	probe, err := c.probe(ctx, req.Data)
	if err != nil {
		return domain.Failed(err)
	}

	data, err := c.encode(ctx, req.Data, probe, req.Quality)
	if err != nil {
		return domain.Failed(err)
	}

	return domain.Succeeded(domain.Compressed{
		Data:         data,
		Format:       probe.Format,
		OriginalSize: probe.Size,
		Width:        probe.Width,
		Height:       probe.Height,
	})
}

func (c *Compressor) probe(ctx context.Context, data []byte) (domain.ProbeResult, error) {
	_, span := c.tracer.Start(ctx, "pipeline.probe")
	defer span.End()

	result, err := c.prober.Probe(data)
	if err != nil {
		recordFailure(span, err)
		return domain.ProbeResult{}, err
	}

	span.SetAttributes(
		attribute.String("image.format", result.Format.String()),
		attribute.Int64("image.bytes", result.Size),
		attribute.Int("image.width", result.Width),
		attribute.Int("image.height", result.Height),
	)
	return result, nil
}

func (c *Compressor) encode(ctx context.Context, input []byte, probe domain.ProbeResult, quality int) (out []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "pipeline.encode")
	span.SetAttributes(
		attribute.String("image.format", probe.Format.String()),
		attribute.Int("image.quality", quality),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = domain.EncodeFailed(fmt.Errorf("encoder panic: %v", r))
			recordFailure(span, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		failure := domain.EncodeFailed(err)
		recordFailure(span, failure)
		return nil, failure
	}

	data, err := c.encoder.Encode(ctx, input, probe.Format, quality)
	if err != nil {
		var failure *domain.Error
		if errors.Is(err, ErrDecode) {
			failure = domain.CorruptImage(err)
		} else {
			failure = domain.EncodeFailed(err)
		}
		recordFailure(span, failure)
		return nil, failure
	}
	if len(data) == 0 {
		failure := domain.EncodeFailed(fmt.Errorf("%s encoder produced no data", probe.Format))
		recordFailure(span, failure)
		return nil, failure
	}

	span.SetAttributes(attribute.Int("image.output_bytes", len(data)))
	return data, nil
}

func recordFailure(span trace.Span, err error) {
	span.RecordError(err)
	if de := domain.AsError(err); de != nil {
		span.SetAttributes(
			attribute.String("error.kind", string(de.Kind)),
			attribute.String("error.reason", string(de.Reason)),
		)
	}
	span.SetStatus(codes.Error, err.Error())
}
