// Command compress runs the upload pipeline against a local file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dunamismax/pixelpress/internal/config"
	"github.com/dunamismax/pixelpress/internal/domain"
	"github.com/dunamismax/pixelpress/internal/pipeline"
	"github.com/dunamismax/pixelpress/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	quality := flag.String("quality", "", "target quality 1-100 (default 50)")
	out := flag.String("out", "", "output path, - for stdout (default <input>.min<ext>)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-quality N] [-out path] <image>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := telemetry.NewLogger(telemetry.LogConfig{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	qualitySet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "quality" {
			qualitySet = true
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Startup(); err != nil {
		logger.Fatal("codec runtime startup failed", zap.Error(err))
	}
	defer pipeline.Shutdown()

	input := flag.Arg(0)
	limits := pipeline.Limits{MaxBytes: cfg.Limits.MaxUploadBytes, MaxPixels: cfg.Limits.MaxInputPixels}
	compressed, err := compressFile(ctx, input, *quality, qualitySet, limits, logger)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			logger.Error("compression rejected",
				zap.String("file", input),
				zap.String("kind", string(de.Kind)),
				zap.String("reason", string(de.Reason)),
				zap.NamedError("cause", de.Err),
			)
			fmt.Fprintln(os.Stderr, de.Message)
		} else {
			logger.Error("compression failed", zap.String("file", input), zap.Error(err))
		}
		exit(stop, 1)
	}

	dest := *out
	if dest == "" {
		dest = defaultOutputPath(input, compressed.Format)
	}
	if err := writeOutput(dest, compressed.Data); err != nil {
		logger.Error("write output failed", zap.String("out", dest), zap.Error(err))
		exit(stop, 1)
	}

	logger.Info("image compressed",
		zap.String("file", input),
		zap.String("out", dest),
		zap.String("format", compressed.Format.String()),
		zap.Int64("original_bytes", compressed.OriginalSize),
		zap.Int("compressed_bytes", len(compressed.Data)),
	)
}

func compressFile(ctx context.Context, path, rawQuality string, qualitySet bool, limits pipeline.Limits, logger *zap.Logger) (*domain.Compressed, error) {
	q, defaulted, err := domain.ParseQuality(rawQuality, qualitySet)
	if err != nil {
		return nil, err
	}
	if defaulted {
		logger.Warn("quality not specified, using default", zap.Int("quality", q))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	maxBytes := limits.MaxBytes
	if maxBytes <= 0 {
		maxBytes = pipeline.DefaultMaxBytes
	}
	if info.Size() > maxBytes {
		return nil, domain.DeclaredSizeExceeded(info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	compressor, err := pipeline.NewCompressor(limits)
	if err != nil {
		return nil, err
	}

	outcome := compressor.Compress(ctx, domain.CompressionRequest{
		Data:             data,
		DeclaredSize:     info.Size(),
		Quality:          q,
		QualityDefaulted: defaulted,
	})
	if outcome.Failure != nil {
		return nil, outcome.Failure
	}
	return outcome.Success, nil
}

// exit runs cleanup that os.Exit would skip.
func exit(stop context.CancelFunc, code int) {
	stop()
	pipeline.Shutdown()
	os.Exit(code)
}

func defaultOutputPath(input string, format domain.Format) string {
	ext := filepath.Ext(input)
	if ext == "" {
		ext = "." + format.String()
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".min" + ext
}

func writeOutput(dest string, data []byte) error {
	if dest == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}
