//go:build !govips || !cgo

package pipeline

// Backend names the codec implementation compiled into this binary.
const Backend = "pure-go"

// Startup and Shutdown are no-ops for the pure Go codecs.
func Startup() error { return nil }

func Shutdown() {}

func newEncoder() (Encoder, error) {
	return stdlibEncoder{}, nil
}
