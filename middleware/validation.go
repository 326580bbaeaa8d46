// Package middleware holds the HTTP middleware applied in front of the
// generation endpoint.
package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidationConfig holds settings for the input validation middleware.
type ValidationConfig struct {
	// MaxBodySize is the maximum allowed request body size in bytes.
	// Defaults to 1MB if zero.
	MaxBodySize int64 `yaml:"maxBodySize" json:"maxBodySize"`

	// AllowedContentTypes lists the accepted Content-Type values for
	// body-bearing requests. Defaults to ["application/json"].
	AllowedContentTypes []string `yaml:"allowedContentTypes" json:"allowedContentTypes"`

	// ValidateJSON rejects JSON bodies that are not well-formed.
	ValidateJSON bool `yaml:"validateJSON" json:"validateJSON"`
}

const defaultMaxBodySize = 1 << 20

// DefaultValidationConfig returns the limits used by the server.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxBodySize:         defaultMaxBodySize,
		AllowedContentTypes: []string{"application/json"},
		ValidateJSON:        true,
	}
}

// InputValidation returns middleware that checks body size, content type
// and JSON well-formedness before the request reaches a handler. Rejections
// use the API error shape.
func InputValidation(cfg ValidationConfig) func(http.Handler) http.Handler {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ct := r.Header.Get("Content-Type")
			if ct != "" && !contentTypeAllowed(ct, cfg.AllowedContentTypes) {
				writeError(w, http.StatusUnsupportedMediaType, "unsupported content type")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBodySize)
			if !cfg.ValidateJSON || !(ct == "" || isJSONContentType(ct)) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "failed to read request body")
				return
			}
			if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
				writeError(w, http.StatusBadRequest, "malformed JSON in request body")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// contentTypeAllowed prefix-matches so charset parameters pass.
func contentTypeAllowed(ct string, allowed []string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, a := range allowed {
		if strings.HasPrefix(ct, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

func isJSONContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
