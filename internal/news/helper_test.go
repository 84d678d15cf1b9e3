package news

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"newsdesk/internal/cache"
	"newsdesk/internal/fetch"
)

// fakeAPI is an httptest stand-in for the upstream news API.
type fakeAPI struct {
	srv   *httptest.Server
	calls atomic.Int32

	mu        sync.Mutex
	status    int
	body      string
	lastPath  string
	lastQuery url.Values
	gate      chan struct{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{status: http.StatusOK}
	f.respondWith(okBody(liveArticles()))
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	f.mu.Lock()
	f.lastPath = r.URL.Path
	f.lastQuery = r.URL.Query()
	status, body, gate := f.status, f.body, f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeAPI) respondWith(body string) {
	f.mu.Lock()
	f.status = http.StatusOK
	f.body = body
	f.mu.Unlock()
}

func (f *fakeAPI) fail(status int, body string) {
	f.mu.Lock()
	f.status = status
	f.body = body
	f.mu.Unlock()
}

func (f *fakeAPI) request() (string, url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.lastQuery
}

func okBody(articles []Article) string {
	b, _ := json.Marshal(response{Status: "ok", TotalResults: len(articles), Articles: articles})
	return string(b)
}

func liveArticles() []Article {
	return []Article{
		{Source: Source{ID: "wire", Name: "Wire"}, Title: "Live one", URL: "https://news.test/live-1", PublishedAt: "2024-05-01T10:00:00Z"},
		{Source: Source{Name: "Daily"}, Title: "Live two", URL: "https://news.test/live-2", PublishedAt: "2024-05-01T09:00:00Z"},
	}
}

func sampleArticles() []Article {
	return []Article{
		{Source: Source{Name: "Sample Times"}, Title: "Sample headline", URL: "https://sample.test/1", PublishedAt: "2024-01-01T00:00:00Z"},
	}
}

func writeSample(t *testing.T, articles []Article) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"articles": articles})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	api     *fakeAPI
	clock   *clock
	cache   *cache.Cache[[]Article]
	service *Service
}

const testTTL = 600 * time.Second

func newFixture(t *testing.T, apiKey string) *fixture {
	t.Helper()
	api := newFakeAPI(t)
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := cache.New[[]Article](testTTL, cache.WithClock(clk.Now), cache.WithStaleGrace(time.Hour))
	log := zaptest.NewLogger(t)

	hc := fetch.NewClient(fetch.ClientOptions{Timeout: 2 * time.Second, Logger: log})
	svc := NewService(ServiceOptions{
		Upstream: NewClient(hc, api.srv.URL+"/v2", apiKey),
		Cache:    c,
		Sample:   SampleFile{Path: writeSample(t, sampleArticles()), Logger: log},
		Logger:   log,
	})
	return &fixture{api: api, clock: clk, cache: c, service: svc}
}
