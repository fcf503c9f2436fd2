package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dunamismax/pixelpress/internal/domain"
	"github.com/dunamismax/pixelpress/internal/pipeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const DefaultUploadPath = "/api/upload"

type compressor interface {
	Compress(ctx context.Context, req domain.CompressionRequest) domain.Outcome
}

type Options struct {
	Logger                *zap.Logger
	Compressor            compressor
	UploadPath            string
	MaxUploadBytes        int64
	RateLimiter           RateLimiter
	RateLimitUserIDHeader string
	// RateLimitBytesPerToken weights uploads by declared size. Zero charges
	// one token per upload.
	RateLimitBytesPerToken int64
	Tracer                 trace.Tracer
}

type Server struct {
	logger                 *zap.Logger
	compressor             compressor
	uploadPath             string
	maxUploadBytes         int64
	rateLimiter            RateLimiter
	rateLimitUserIDHeader  string
	rateLimitBytesPerToken int64
	tracer                 trace.Tracer
	metrics                *metrics
	mux                    *http.ServeMux
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	uploadPath := strings.TrimSpace(opts.UploadPath)
	if uploadPath == "" {
		uploadPath = DefaultUploadPath
	}
	maxUploadBytes := opts.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = pipeline.DefaultMaxBytes
	}
	userHeader := strings.TrimSpace(opts.RateLimitUserIDHeader)
	if userHeader == "" {
		userHeader = "X-User-ID"
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("pixelpress/api")
	}

	s := &Server{
		logger:                 logger,
		compressor:             opts.Compressor,
		uploadPath:             uploadPath,
		maxUploadBytes:         maxUploadBytes,
		rateLimiter:            opts.RateLimiter,
		rateLimitUserIDHeader:  userHeader,
		rateLimitBytesPerToken: opts.RateLimitBytesPerToken,
		tracer:                 tracer,
		metrics:                newMetrics(),
		mux:                    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.withRateLimit(h)
	h = s.withTracing(h)
	h = s.metrics.withHTTPMetrics(s.routeLabel, h)
	h = s.withRequestLogging(h)
	h = withRequestID(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.metricsHandler())
	s.mux.HandleFunc("POST "+s.uploadPath, s.handleUpload)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	outcome := s.compress(w, r)
	s.metrics.observeOutcome(outcome)
	s.logOutcome(r, outcome)
	writeOutcome(w, outcome)
}

func (s *Server) compress(w http.ResponseWriter, r *http.Request) domain.Outcome {
	req, err := readUpload(w, r, s.maxUploadBytes)
	if err != nil {
		return domain.Failed(err)
	}
	if req.QualityDefaulted {
		s.logger.Warn("quality not specified, using default",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Int("quality", req.Quality),
		)
	}
	if s.compressor == nil {
		return domain.Failed(domain.EncodeFailed(errors.New("compressor is not configured")))
	}
	return s.compressor.Compress(r.Context(), req)
}

func (s *Server) logOutcome(r *http.Request, outcome domain.Outcome) {
	requestID := requestIDFrom(r.Context())
	if outcome.Failure != nil {
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("kind", string(outcome.Failure.Kind)),
			zap.String("reason", string(outcome.Failure.Reason)),
			zap.String("message", outcome.Failure.Message),
		}
		if outcome.Failure.Err != nil {
			fields = append(fields, zap.Error(outcome.Failure.Err))
		}
		if outcome.Failure.Kind == domain.KindEncodeFailed {
			s.logger.Error("compression failed", fields...)
			return
		}
		s.logger.Warn("upload rejected", fields...)
		return
	}
	if outcome.Success != nil {
		s.logger.Info("image compressed",
			zap.String("request_id", requestID),
			zap.String("format", outcome.Success.Format.String()),
			zap.Int64("original_bytes", outcome.Success.OriginalSize),
			zap.Int("compressed_bytes", len(outcome.Success.Data)),
		)
	}
}

func (s *Server) routeLabel(path string) string {
	switch {
	case path == s.uploadPath:
		return s.uploadPath
	case strings.HasPrefix(path, "/healthz"):
		return "/healthz"
	case strings.HasPrefix(path, "/metrics"):
		return "/metrics"
	default:
		return "other"
	}
}
