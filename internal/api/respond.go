package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dunamismax/pixelpress/internal/domain"
)

const (
	HeaderOriginalSize   = "X-Original-Size"
	HeaderCompressedSize = "X-Compressed-Size"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeOutcome is the single exit of the upload route. Every failure kind
// maps to 400 with a JSON error body.
func writeOutcome(w http.ResponseWriter, outcome domain.Outcome) {
	switch {
	case outcome.Failure != nil:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: outcome.Failure.Message})
	case outcome.Success != nil:
		writeImage(w, outcome.Success)
	default:
		failure := domain.EncodeFailed(errors.New("empty outcome"))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: failure.Message})
	}
}

func writeImage(w http.ResponseWriter, c *domain.Compressed) {
	h := w.Header()
	h.Set("Content-Type", c.Format.ContentType())
	h.Set("Content-Length", strconv.Itoa(len(c.Data)))
	h.Set(HeaderOriginalSize, strconv.FormatInt(c.OriginalSize, 10))
	h.Set(HeaderCompressedSize, strconv.Itoa(len(c.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.Data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
