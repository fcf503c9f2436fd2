//go:build govips && cgo

package pipeline

import (
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

// Backend names the codec implementation compiled into this binary.
const Backend = "libvips"

var vipsState struct {
	once    sync.Once
	mu      sync.Mutex
	running bool
}

// Startup initialises libvips once per process. libvips cannot be restarted
// after Shutdown.
func Startup() error {
	vipsState.once.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelWarning)
		// No operation cache: nothing from one upload may serve another.
		vips.Startup(&vips.Config{})
		vips.ClearCache()

		vipsState.mu.Lock()
		vipsState.running = true
		vipsState.mu.Unlock()
	})
	return nil
}

func Shutdown() {
	vipsState.mu.Lock()
	defer vipsState.mu.Unlock()
	if vipsState.running {
		vips.Shutdown()
		vipsState.running = false
	}
}

func newEncoder() (Encoder, error) {
	vipsState.mu.Lock()
	defer vipsState.mu.Unlock()
	if !vipsState.running {
		return nil, errRuntimeStopped
	}
	return govipsEncoder{}, nil
}
