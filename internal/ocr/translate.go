package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTranslateBaseURL is the public Google Translate web endpoint host.
const DefaultTranslateBaseURL = "https://translate.googleapis.com"

// TranslateError reports a failed translation call.
type TranslateError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TranslateError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("translate: status %d: %s", e.StatusCode, e.Message)
	}
	return "translate: " + e.Message
}

func (e *TranslateError) Unwrap() error { return e.Err }

// Translator calls the keyless translate_a/single endpoint with automatic
// source language detection.
type Translator struct {
	baseURL string
	client  *http.Client
}

// NewTranslator creates a Translator. An empty baseURL selects
// DefaultTranslateBaseURL.
func NewTranslator(baseURL string) *Translator {
	if baseURL == "" {
		baseURL = DefaultTranslateBaseURL
	}
	return &Translator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Translate returns text translated into target. Blank text is returned
// unchanged without a request.
func (t *Translator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	query := url.Values{
		"client": {"gtx"},
		"sl":     {"auto"},
		"tl":     {target},
		"dt":     {"t"},
	}
	form := url.Values{"q": {text}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/translate_a/single?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &TranslateError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &TranslateError{Message: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &TranslateError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	out, err := parseTranslation(body)
	if err != nil {
		return "", &TranslateError{Message: "unexpected response", Err: err}
	}
	return out, nil
}

// parseTranslation joins the translated segments of a response shaped like
// [[["Hello","Bonjour",null,null,10],...],null,"fr",...].
func parseTranslation(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(top) == 0 || string(top[0]) == "null" {
		return "", nil
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(seg[0], &s); err != nil {
			continue
		}
		b.WriteString(s)
	}
	return b.String(), nil
}
