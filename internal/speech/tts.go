// Package speech synthesizes MP3 audio from text using the keyless Google
// Translate text-to-speech endpoint.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultBaseURL is the Google Translate host serving translate_tts.
	DefaultBaseURL = "https://translate.google.com"

	// MaxChunk is the longest text the endpoint accepts per request, in runes.
	MaxChunk = 200
)

// ProviderError reports a failed synthesis request.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tts: status %d: %s", e.StatusCode, e.Message)
	}
	return "tts: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Client fetches speech for text chunk by chunk and concatenates the MP3
// frames, which players handle as a single stream.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize returns MP3 audio speaking text in lang.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := Split(text, MaxChunk)
	if len(chunks) == 0 {
		return nil, &ProviderError{Message: "no text to speak"}
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := c.fetch(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return nil, err
		}
	}
	return audio.Bytes(), nil
}

func (c *Client) fetch(ctx context.Context, dst *bytes.Buffer, chunk, lang string, idx, total int) error {
	q := url.Values{
		"ie":      {"UTF-8"},
		"q":       {chunk},
		"tl":      {lang},
		"client":  {"tw-ob"},
		"total":   {strconv.Itoa(total)},
		"idx":     {strconv.Itoa(idx)},
		"textlen": {strconv.Itoa(utf8.RuneCountInString(chunk))},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return &ProviderError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	if _, err := io.Copy(dst, io.LimitReader(resp.Body, 10<<20)); err != nil {
		return &ProviderError{Message: "read audio", Err: err}
	}
	return nil
}

// Split breaks text into chunks of at most limit runes, cutting at
// whitespace where possible. Words longer than limit are hard-split.
func Split(text string, limit int) []string {
	var (
		chunks []string
		cur    []rune
	)
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			chunks = append(chunks, s)
		}
		cur = cur[:0]
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > limit {
			flush()
			chunks = append(chunks, string(w[:limit]))
			w = w[limit:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= limit:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			flush()
			cur = append(cur, w...)
		}
	}
	flush()
	return chunks
}
