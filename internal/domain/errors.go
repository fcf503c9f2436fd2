package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of ways a compression request can fail.
type ErrorKind string

const (
	KindMissingOrInvalidFile ErrorKind = "missing_or_invalid_file"
	KindInvalidQuality       ErrorKind = "invalid_quality"
	KindProbeFailed          ErrorKind = "probe_failed"
	KindUnsupportedFormat    ErrorKind = "unsupported_format"
	KindSizeExceeded         ErrorKind = "size_exceeded"
	KindEncodeFailed         ErrorKind = "encode_failed"
)

// ErrorReason narrows ProbeFailed and SizeExceeded. Other kinds leave it empty.
type ErrorReason string

const (
	ReasonPixelLimit  ErrorReason = "pixel_limit"
	ReasonUnsupported ErrorReason = "unsupported_encoding"
	ReasonCorrupt     ErrorReason = "corrupt"
	ReasonDeclared    ErrorReason = "declared"
	ReasonProbed      ErrorReason = "probed"
)

const (
	MsgMissingOrInvalidFile = "no file uploaded or the file is not valid"
	MsgQualityTooLow        = "quality must be greater than 0%"
	MsgQualityTooHigh       = "quality must be less than 100%"
	MsgPixelLimit           = "image exceeds the allowed pixel limit"
	MsgFormatNotSupported   = "the image format is not supported"
	MsgCorruptOrUnsupported = "unsupported file format or corrupted file"
	MsgSizeExceeded         = "unknown or too large file size, >20MB"
	MsgEncodeFailed         = "failed to compress image"
)

// Error is the single failure value that travels from any pipeline stage to
// the response builder. Message is safe to show to the caller; Err is not.
type Error struct {
	Kind    ErrorKind
	Reason  ErrorReason
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and reason so callers can test against the Err* templates below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

var (
	ErrMissingOrInvalidFile = &Error{Kind: KindMissingOrInvalidFile}
	ErrInvalidQuality       = &Error{Kind: KindInvalidQuality}
	ErrProbeFailed          = &Error{Kind: KindProbeFailed}
	ErrUnsupportedFormat    = &Error{Kind: KindUnsupportedFormat}
	ErrSizeExceeded         = &Error{Kind: KindSizeExceeded}
	ErrEncodeFailed         = &Error{Kind: KindEncodeFailed}
)

func MissingOrInvalidFile(cause error) *Error {
	return &Error{Kind: KindMissingOrInvalidFile, Message: MsgMissingOrInvalidFile, Err: cause}
}

func QualityTooLow() *Error {
	return &Error{Kind: KindInvalidQuality, Message: MsgQualityTooLow}
}

func QualityTooHigh() *Error {
	return &Error{Kind: KindInvalidQuality, Message: MsgQualityTooHigh}
}

func PixelLimitExceeded(pixels, limit int64) *Error {
	return &Error{
		Kind:    KindProbeFailed,
		Reason:  ReasonPixelLimit,
		Message: MsgPixelLimit,
		Err:     fmt.Errorf("%d pixels over limit %d", pixels, limit),
	}
}

func UnsupportedEncoding(detected string) *Error {
	return &Error{
		Kind:    KindProbeFailed,
		Reason:  ReasonUnsupported,
		Message: MsgFormatNotSupported,
		Err:     fmt.Errorf("detected %s", detected),
	}
}

func CorruptImage(cause error) *Error {
	return &Error{Kind: KindProbeFailed, Reason: ReasonCorrupt, Message: MsgCorruptOrUnsupported, Err: cause}
}

func UnsupportedFormat(name string) *Error {
	return &Error{Kind: KindUnsupportedFormat, Message: fmt.Sprintf("unsupported file format: %s", name)}
}

func DeclaredSizeExceeded(size, limit int64) *Error {
	return &Error{
		Kind:    KindSizeExceeded,
		Reason:  ReasonDeclared,
		Message: MsgSizeExceeded,
		Err:     fmt.Errorf("declared %d bytes over limit %d", size, limit),
	}
}

func ProbedSizeExceeded(size, limit int64) *Error {
	return &Error{
		Kind:    KindSizeExceeded,
		Reason:  ReasonProbed,
		Message: MsgSizeExceeded,
		Err:     fmt.Errorf("measured %d bytes, limit %d", size, limit),
	}
}

func EncodeFailed(cause error) *Error {
	return &Error{Kind: KindEncodeFailed, Message: MsgEncodeFailed, Err: cause}
}

// AsError returns err as a *Error. Anything that is not already one is
// reported as an encode failure so the caller never sees raw internals.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return EncodeFailed(err)
}
