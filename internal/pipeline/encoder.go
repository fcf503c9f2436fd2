package pipeline

import (
	"context"
	"errors"

	"github.com/dunamismax/pixelpress/internal/domain"
)

// ErrDecode marks failures to decode the full source image, as opposed to
// failures while producing the output.
var ErrDecode = errors.New("decode source image")

// Encoder re-encodes input in its own format at the given quality (1-100).
type Encoder interface {
	Encode(ctx context.Context, input []byte, format domain.Format, quality int) ([]byte, error)
}

// errRuntimeStopped is returned by NewCompressor before Startup or after Shutdown.
var errRuntimeStopped = errors.New("codec runtime is not started")
