// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates an httptest.Server that responds with the given status
// code and body bytes. The caller must call Close on the returned server.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
}

// geminiSuccessBody builds a JSON body matching the Gemini generateContent
// response format with a single candidate containing the given text.
func geminiSuccessBody(text string) []byte {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

func TestGeminiGenerate_Success(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, geminiSuccessBody("Hello from Gemini"))
	defer srv.Close()

	p := NewGemini(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	got, err := p.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got != "Hello from Gemini" {
		t.Errorf("Generate: got %q", got)
	}
}

func TestGeminiGenerate_VerifiesRequest(t *testing.T) {
	var (
		capturedHeaders http.Header
		capturedBody    []byte
		capturedPath    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		capturedBody, _ = io.ReadAll(r.Body)
		capturedPath = r.URL.Path
		w.Write(geminiSuccessBody("ok"))
	}))
	defer srv.Close()

	p := NewGemini(ProviderConfig{APIKey: "gemini-api-key-123", BaseURL: srv.URL + "/"})
	if _, err := p.Generate(context.Background(), "user prompt"); err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}

	if got := capturedHeaders.Get("x-goog-api-key"); got != "gemini-api-key-123" {
		t.Errorf("x-goog-api-key: got %q", got)
	}
	if got := capturedHeaders.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q", got)
	}
	if want := "/v1beta/models/gemini-1.5-flash:generateContent"; capturedPath != want {
		t.Errorf("request path: got %q, want %q", capturedPath, want)
	}

	var reqBody geminiRequest
	if err := json.Unmarshal(capturedBody, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if len(reqBody.Contents) != 1 || len(reqBody.Contents[0].Parts) != 1 || reqBody.Contents[0].Parts[0].Text != "user prompt" {
		t.Errorf("request contents: got %+v", reqBody.Contents)
	}
}

func TestGeminiGenerate_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests,
		[]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	defer srv.Close()

	_, err := NewGemini(ProviderConfig{APIKey: "k", BaseURL: srv.URL}).Generate(context.Background(), "hi")

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusTooManyRequests || pe.Message != "Resource has been exhausted" {
		t.Errorf("unexpected provider error: %+v", pe)
	}
}

func TestGeminiGenerate_HTTPErrorWithoutJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, []byte("upstream down"))
	defer srv.Close()

	_, err := NewGemini(ProviderConfig{BaseURL: srv.URL}).Generate(context.Background(), "hi")

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Message != "502 Bad Gateway" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeminiGenerate_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte("{not json"))
	defer srv.Close()

	_, err := NewGemini(ProviderConfig{BaseURL: srv.URL}).Generate(context.Background(), "hi")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestGeminiGenerate_NoCandidates(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"candidates":[]}`))
	defer srv.Close()

	got, err := NewGemini(ProviderConfig{BaseURL: srv.URL}).Generate(context.Background(), "hi")
	if err != nil || got != "" {
		t.Errorf("Generate: got %q, %v; want empty text and nil error", got, err)
	}
}

func TestGeminiGenerate_Unreachable(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, nil)
	url := srv.URL
	srv.Close()

	_, err := NewGemini(ProviderConfig{BaseURL: url}).Generate(context.Background(), "hi")
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != 0 {
		t.Fatalf("expected unreachable ProviderError, got %v", err)
	}
}

func TestGeminiDefaults(t *testing.T) {
	p := NewGemini(ProviderConfig{})
	if p.config.BaseURL != defaultGeminiBaseURL || p.config.Model != defaultGeminiModel {
		t.Errorf("defaults not applied: %+v", p.config)
	}
	if p.Name() != "gemini" {
		t.Errorf("Name() = %q", p.Name())
	}
}
