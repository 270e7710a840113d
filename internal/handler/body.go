package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Request body errors.
var (
	errUnsupportedMediaType = errors.New("content type must be application/json")
	errInvalidJSON          = errors.New("invalid JSON body")
	errNoData               = errors.New("no data provided")
	errBodyTooLarge         = errors.New("request body too large")
)

// decodeJSONObject reads a non-empty JSON object from the request body into dst.
//
// A missing or non-JSON Content-Type yields errUnsupportedMediaType. A body that
// is empty, malformed, or not an object yields errInvalidJSON. `null` and `{}`
// yield errNoData.
func decodeJSONObject(r *http.Request, dst any) error {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		return errUnsupportedMediaType
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return errInvalidJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return errInvalidJSON
	}
	if len(fields) == 0 {
		return errNoData
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// isJSONContentType accepts application/json and application/*+json.
func isJSONContentType(header string) bool {
	if header == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}

// writeBodyError maps a decodeJSONObject error to its HTTP response.
func writeBodyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUnsupportedMediaType):
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	case errors.Is(err, errNoData):
		writeError(w, http.StatusBadRequest, "No data provided")
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	}
}
