package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	var gotQuery, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("tl")
		r.ParseForm()
		gotText = r.PostForm.Get("q")
		w.Write([]byte(`[[["Hello ","Bonjour ",null,null,10],["world","monde",null,null,10]],null,"fr"]`))
	}))
	defer srv.Close()

	got, err := NewTranslator(srv.URL).Translate(context.Background(), "Bonjour monde", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("Translate = %q", got)
	}
	if gotQuery != "en" || gotText != "Bonjour monde" {
		t.Errorf("request tl=%q q=%q", gotQuery, gotText)
	}
}

func TestTranslate_BlankSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	defer srv.Close()

	got, err := NewTranslator(srv.URL).Translate(context.Background(), "  ", "en")
	if err != nil || got != "  " {
		t.Errorf("Translate(blank) = %q, %v", got, err)
	}
}

func TestTranslate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewTranslator(srv.URL).Translate(context.Background(), "hola", "en")
	var te *TranslateError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TranslateError", err)
	}
	if te.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", te.StatusCode)
	}
}

func TestParseTranslation(t *testing.T) {
	tests := []struct {
		body    string
		want    string
		wantErr bool
	}{
		{`[[["a","b"]],null,"en"]`, "a", false},
		{`[null,null,"en"]`, "", false},
		{`[]`, "", false},
		{`{"error":1}`, "", true},
	}
	for _, tt := range tests {
		got, err := parseTranslation([]byte(tt.body))
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTranslation(%s) error = %v", tt.body, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTranslation(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
