// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"blogdesk/internal/ai"
	"blogdesk/internal/ocr"
)

// --- External-service proxies ---
//
// These handlers are stateless request translators in front of Gemini,
// tesseract, Google Translate and Google TTS. They answer errors as
// {"error": "..."}; upstream failures keep the upstream status when it is
// an HTTP error status and become 502 otherwise.

const (
	defaultOCRLang       = "eng+khm"
	defaultTranslateLang = "en"
	defaultSpeechLang    = "en"
	noResponseText       = "No response generated"
)

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Proxy groups the external-service handlers.
type Proxy struct {
	gemini     ai.Provider // nil when no API key is configured
	ocr        *ocr.Service
	translator Translator
	speech     Synthesizer
}

// NewProxy creates a new Proxy handler group. gemini may be nil.
func NewProxy(gemini ai.Provider, ocrService *ocr.Service, translator Translator, speech Synthesizer) *Proxy {
	return &Proxy{gemini: gemini, ocr: ocrService, translator: translator, speech: speech}
}

// fail maps err to a proxy error response.
func (p *Proxy) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if status, msg, ok := providerStatus(err); ok {
		slog.Warn(op+" upstream error", "error", err, "status", status)
		writeProxyError(w, r, status, msg)
		return
	}
	if errors.Is(err, ocr.ErrUnsupportedImage) {
		writeProxyError(w, r, http.StatusBadRequest, "Unsupported image format")
		return
	}
	if errors.Is(err, context.Canceled) {
		slog.Debug(op+" canceled by client", "path", r.URL.Path)
		return
	}
	slog.Error(op+" failed", "error", err, "path", r.URL.Path)
	writeProxyError(w, r, http.StatusInternalServerError, "Internal server error")
}

// Gemini forwards {"prompt": "..."} to the generative model.
func (p *Proxy) Gemini(w http.ResponseWriter, r *http.Request) {
	// An empty object counts as no payload; a whitespace prompt is sent as is.
	var body map[string]any
	if err := render.DecodeJSON(r.Body, &body); err != nil || len(body) == 0 {
		writeProxyError(w, r, http.StatusBadRequest, "No JSON payload received")
		return
	}
	prompt, ok := body["prompt"].(string)
	if !ok || prompt == "" {
		writeProxyError(w, r, http.StatusBadRequest, "Invalid prompt provided")
		return
	}
	if p.gemini == nil {
		writeProxyError(w, r, http.StatusServiceUnavailable, "Gemini API key is not configured")
		return
	}

	text, err := p.gemini.Generate(r.Context(), prompt)
	if err != nil {
		p.fail(w, r, "gemini", err)
		return
	}
	if text == "" {
		text = noResponseText
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"responseText": text})
}

// formField returns the multipart value of key and whether it was sent.
func formField(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// OCR recognizes the text in the uploaded "image" and translates it into
// translate_to (default "en"; empty disables translation).
func (p *Proxy) OCR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeProxyError(w, r, http.StatusBadRequest, "No image uploaded")
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		writeProxyError(w, r, http.StatusBadRequest, "No image uploaded")
		return
	}

	lang, ok := formField(r, "lang")
	if !ok || strings.TrimSpace(lang) == "" {
		lang = defaultOCRLang
	}
	target, ok := formField(r, "translate_to")
	if !ok {
		target = defaultTranslateLang
	}

	f, err := files[0].Open()
	if err != nil {
		p.fail(w, r, "ocr", err)
		return
	}
	defer f.Close()

	text, err := p.ocr.Recognize(r.Context(), f, lang)
	if err != nil {
		p.fail(w, r, "ocr", err)
		return
	}

	translated := ""
	if target = strings.TrimSpace(target); target != "" {
		out, err := p.translator.Translate(r.Context(), text, target)
		if err != nil {
			p.fail(w, r, "translate", err)
			return
		}
		translated = strings.TrimSpace(out)
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"text": text, "translated": translated})
}

// OCRBulk recognizes every uploaded "images[]" (or "images") file and
// returns the results in upload order.
func (p *Proxy) OCRBulk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeProxyError(w, r, http.StatusBadRequest, "No images uploaded")
		return
	}
	files := r.MultipartForm.File["images[]"]
	if len(files) == 0 {
		files = r.MultipartForm.File["images"]
	}
	if len(files) == 0 {
		writeProxyError(w, r, http.StatusBadRequest, "No images uploaded")
		return
	}

	lang, ok := formField(r, "lang")
	if !ok || strings.TrimSpace(lang) == "" {
		lang = defaultOCRLang
	}

	inputs := make([]ocr.Input, len(files))
	for i, fh := range files {
		inputs[i] = ocr.Input{
			Filename: fh.Filename,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		}
	}

	results, err := p.ocr.RecognizeAll(r.Context(), inputs, lang)
	if err != nil {
		p.fail(w, r, "bulk ocr", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]ocr.Result{"results": results})
}

// OCRExport renders {"text", "type"} as a downloadable TXT or PDF file.
func (p *Proxy) OCRExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
		Type string `json:"type"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil || body.Text == "" {
		writeProxyError(w, r, http.StatusBadRequest, "No text provided")
		return
	}

	doc, err := ocr.Export(body.Text, body.Type)
	if errors.Is(err, ocr.ErrUnsupportedExport) {
		writeProxyError(w, r, http.StatusBadRequest, "Invalid export type")
		return
	}
	if err != nil {
		p.fail(w, r, "ocr export", err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Write(doc.Body)
}

// TTS speaks {"text", "lang"} and streams the MP3 inline.
func (p *Proxy) TTS(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
		Lang string `json:"lang"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeProxyError(w, r, http.StatusBadRequest, "No text provided")
		return
	}
	if body.Lang == "" {
		body.Lang = defaultSpeechLang
	}

	audio, err := p.speech.Synthesize(r.Context(), body.Text, body.Lang)
	if err != nil {
		p.fail(w, r, "tts", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `inline; filename="speech.mp3"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Write(audio)
}
