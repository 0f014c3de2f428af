// Package handlers implements the JSON HTTP endpoints: admin
// authentication, the category/subcategory/article hierarchy, the
// dashboard, and the proxies to generative-text, OCR and speech services.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"blogdesk/internal/ai"
	"blogdesk/internal/ocr"
	"blogdesk/internal/speech"
)

// ResponseCache caches serialized listing responses. Implementations
// swallow their own errors; a nil ResponseCache disables caching.
// InvalidateAll must move the value Generation reports.
type ResponseCache interface {
	Generation(ctx context.Context) (string, bool)
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	InvalidateAll(ctx context.Context)
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeMessage sends {"message": msg}, the error shape of the core API.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"message": msg})
}

// writeProxyError sends {"error": msg}, the error shape of the proxies.
func writeProxyError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// internalError logs err and answers 500 without leaking details.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	writeMessage(w, r, http.StatusInternalServerError, "Internal server error")
}

// serveCached answers from rc when the request URI is cached, otherwise
// builds the body, sends it and stores it. The key carries the cache
// generation read before build, so a write committing in between leaves
// the stored body unreachable.
func serveCached(w http.ResponseWriter, r *http.Request, rc ResponseCache, build func() (any, error)) {
	var key string
	if rc != nil {
		gen, ok := rc.Generation(r.Context())
		if !ok {
			rc = nil
		}
		key = gen + ":" + r.URL.RequestURI()
	}
	if rc != nil {
		if body, ok := rc.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	v, err := build()
	if err != nil {
		internalError(w, r, "list query failed", err)
		return
	}

	// Encode like render.JSON so cached and fresh bodies are identical.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		internalError(w, r, "encode response", err)
		return
	}

	if rc != nil {
		rc.Set(r.Context(), key, buf.Bytes())
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

// pathID parses the {name} URL parameter as a positive integer id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// providerStatus extracts the upstream status and message from a typed
// provider error. ok is false for errors that did not come from a provider.
func providerStatus(err error) (status int, msg string, ok bool) {
	var (
		aiErr  *ai.ProviderError
		engErr *ocr.EngineError
		trErr  *ocr.TranslateError
		ttsErr *speech.ProviderError
	)
	switch {
	case errors.As(err, &aiErr):
		status, msg = aiErr.StatusCode, aiErr.Message
	case errors.As(err, &engErr):
		msg = engErr.Message
	case errors.As(err, &trErr):
		status, msg = trErr.StatusCode, trErr.Message
	case errors.As(err, &ttsErr):
		status, msg = ttsErr.StatusCode, ttsErr.Message
	default:
		return 0, "", false
	}
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return status, msg, true
}
