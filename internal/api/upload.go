package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dunamismax/pixelpress/internal/domain"
)

const (
	fileField    = "file"
	qualityField = "quality"

	// Room for multipart boundaries, part headers and the quality field.
	multipartOverhead    = 1 << 20
	maxQualityFieldBytes = 64
)

// readUpload turns a multipart upload into a CompressionRequest. It only
// checks presence, the request-level size bound and the quality rules; the
// image bytes themselves are judged by the prober.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (domain.CompressionRequest, error) {
	bodyLimit := maxBytes + multipartOverhead
	if r.ContentLength > bodyLimit {
		return domain.CompressionRequest{}, domain.DeclaredSizeExceeded(r.ContentLength, maxBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	mr, err := r.MultipartReader()
	if err != nil {
		return domain.CompressionRequest{}, domain.MissingOrInvalidFile(err)
	}

	var (
		data        []byte
		haveFile    bool
		rawQuality  string
		haveQuality bool
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.CompressionRequest{}, bodyError(err, maxBytes)
		}

		switch part.FormName() {
		case fileField:
			if haveFile {
				break
			}
			if part.FileName() == "" {
				part.Close()
				return domain.CompressionRequest{}, domain.MissingOrInvalidFile(errors.New("file field is not binary content"))
			}
			data, err = io.ReadAll(part)
			if err != nil {
				part.Close()
				return domain.CompressionRequest{}, bodyError(err, maxBytes)
			}
			haveFile = true
		case qualityField:
			if haveQuality {
				break
			}
			raw, err := io.ReadAll(io.LimitReader(part, maxQualityFieldBytes))
			if err != nil {
				part.Close()
				return domain.CompressionRequest{}, bodyError(err, maxBytes)
			}
			rawQuality = string(raw)
			haveQuality = true
		}
		part.Close()
	}

	if !haveFile || len(data) == 0 {
		return domain.CompressionRequest{}, domain.MissingOrInvalidFile(errors.New("no file part in upload"))
	}

	quality, defaulted, err := domain.ParseQuality(rawQuality, haveQuality)
	if err != nil {
		return domain.CompressionRequest{}, err
	}

	return domain.CompressionRequest{
		Data:             data,
		DeclaredSize:     r.ContentLength,
		Quality:          quality,
		QualityDefaulted: defaulted,
	}, nil
}

func bodyError(err error, maxBytes int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.DeclaredSizeExceeded(tooLarge.Limit, maxBytes)
	}
	return domain.MissingOrInvalidFile(fmt.Errorf("read multipart body: %w", err))
}
