// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Every test gets its own migrated SQLite file and
// upload directory, so no external service is needed.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/ai"
	"blogdesk/internal/assets"
	"blogdesk/internal/auth"
	"blogdesk/internal/database"
	"blogdesk/internal/middleware"
	"blogdesk/internal/ocr"
	"blogdesk/internal/store"
)

const testBaseURL = "http://localhost:5000"

// memCache is an in-memory ResponseCache that counts invalidations.
// beforeSet, when set, runs before every Set.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated int
	beforeSet   func()
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Generation(context.Context) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strconv.Itoa(c.invalidated), true
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, body []byte) {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), body...)
}

func (c *memCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.invalidated++
}

// mockProvider implements ai.Provider for handler tests.
type mockProvider struct {
	response string
	err      error
	prompt   string
}

func (m *mockProvider) Name() string { return "gemini" }

func (m *mockProvider) Generate(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

// fakeEngine returns a fixed text for every image.
type fakeEngine struct {
	text string
	err  error
}

func (e *fakeEngine) Recognize(_ context.Context, img image.Image, lang string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.text + " [" + lang + "]\n", nil
}

type fakeTranslator struct {
	calls  int
	target string
	err    error
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls++
	f.target = target
	if f.err != nil {
		return "", f.err
	}
	return "  translated: " + text + "  ", nil
}

type fakeSynth struct {
	lang string
	err  error
}

func (f *fakeSynth) Synthesize(_ context.Context, text, lang string) ([]byte, error) {
	f.lang = lang
	if f.err != nil {
		return nil, f.err
	}
	return []byte("ID3" + text), nil
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	t          *testing.T
	db         *sql.DB
	handler    http.Handler
	issuer     *auth.Issuer
	uploadDir  string
	cache      *memCache
	gemini     *mockProvider
	engine     *fakeEngine
	translator *fakeTranslator
	speech     *fakeSynth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(database.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, database.DriverSQLite))

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	backend, err := assets.NewFSBackend(uploadDir, testBaseURL+"/static/uploads/")
	require.NoError(t, err)

	env := &testEnv{
		t:          t,
		db:         db,
		issuer:     auth.NewIssuer("test-secret", time.Hour),
		uploadDir:  uploadDir,
		cache:      newMemCache(),
		gemini:     &mockProvider{response: "hello"},
		engine:     &fakeEngine{text: "scanned"},
		translator: &fakeTranslator{},
		speech:     &fakeSynth{},
	}

	authH := NewAuth(store.NewAdminStore(db), env.issuer)
	content := NewContent(
		store.NewCategoryStore(db),
		store.NewSubCategoryStore(db),
		store.NewArticleStore(db),
		store.NewThumbnailStore(db),
		assets.NewManager(backend),
		env.cache,
		testBaseURL,
	)
	dash := NewDashboard(store.NewStatsStore(db))
	proxy := NewProxy(env.gemini, ocr.NewService(env.engine), env.translator, env.speech)

	guard := middleware.RequireToken(env.issuer)
	r := chi.NewRouter()
	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)
	r.With(guard).Get("/auth/me", authH.Me)
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", content.ListCategories)
		r.Get("/categories/{id}", content.GetCategory)
		r.Get("/subcategories", content.ListSubCategories)
		r.Get("/subcategories/{id}", content.GetSubCategory)
		r.Get("/articles", content.ListArticles)
		r.Get("/articles/latest", content.LatestArticles)
		r.Get("/articles/{key}", content.GetArticle)
		r.Get("/articles/{key}/qr", content.ArticleQR)
		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/categories", content.CreateCategory)
			r.Put("/categories/{id}", content.UpdateCategory)
			r.Delete("/categories/{id}", content.DeleteCategory)
			r.Post("/subcategories", content.CreateSubCategory)
			r.Put("/subcategories/{id}", content.UpdateSubCategory)
			r.Delete("/subcategories/{id}", content.DeleteSubCategory)
			r.Post("/articles", content.CreateArticle)
			r.Put("/articles/{key}", content.UpdateArticle)
			r.Delete("/articles/{key}", content.DeleteArticle)
			r.Get("/dashboard-stats", dash.Stats)
		})
		r.Post("/gemini", proxy.Gemini)
		r.Post("/ocr", proxy.OCR)
		r.Post("/ocr/export", proxy.OCRExport)
		r.Post("/ocr/bulk", proxy.OCRBulk)
		r.Post("/tts", proxy.TTS)
	})
	env.handler = r
	return env
}

// token returns a bearer token for a throwaway admin identity.
func (e *testEnv) token() string {
	e.t.Helper()
	tok, err := e.issuer.Issue("editor")
	require.NoError(e.t, err)
	return tok
}

// do sends a request and returns the recorded response.
func (e *testEnv) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// sendJSON sends v as a JSON body.
func (e *testEnv) sendJSON(method, path string, v any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	b, err := json.Marshal(v)
	require.NoError(e.t, err)
	return e.do(method, path, bytes.NewReader(b), "application/json", token)
}

// upload is one file part of a multipart request.
type upload struct {
	field    string
	filename string
	data     []byte
}

// sendForm sends fields and files as multipart/form-data.
func (e *testEnv) sendForm(method, path string, fields map[string]string, files []upload, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(e.t, err)
		_, err = fw.Write(f.data)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())
	return e.do(method, path, &buf, mw.FormDataContentType(), token)
}

// count returns the number of rows in table.
func (e *testEnv) count(table string) int {
	e.t.Helper()
	var n int
	require.NoError(e.t, e.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// decode unmarshals a JSON response body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

// pngBytes returns a tiny valid PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

var _ ai.Provider = (*mockProvider)(nil)
