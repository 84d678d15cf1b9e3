package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/config"
	"newsdesk/internal/news"
)

func run(ctx context.Context, out io.Writer, args ...string) error {
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEWS_API_KEY", "NEWS_API_BASE_URL", "APP_ENV", "PORT"} {
		t.Setenv(k, "")
	}
}

// writeConfig points the news client at a fake upstream and returns the
// config path plus the last request seen by the fake.
func writeConfig(t *testing.T) (string, *url.URL) {
	t.Helper()
	last := &url.URL{}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*last = *r.URL
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       "ok",
			"totalResults": 1,
			"articles": []news.Article{
				{Source: news.Source{Name: "Wire"}, Title: "CLI story", URL: "https://news.test/cli"},
			},
		})
	}))
	t.Cleanup(api.Close)

	dir := t.TempDir()
	yml := fmt.Sprintf(`env: test
news:
  base_url: %s/v2
  api_key: cli-key
  sample_path: %s
`, api.URL, filepath.Join(dir, "missing.json"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	return path, last
}

func TestHeadlinesCommand(t *testing.T) {
	clearEnv(t)
	cfgPath, last := writeConfig(t)

	var out bytes.Buffer
	err := run(context.Background(), &out, "headlines", "--config", cfgPath, "--category", "technology", "--page-size", "5")
	require.NoError(t, err)

	var articles []news.Article
	require.NoError(t, json.Unmarshal(out.Bytes(), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "CLI story", articles[0].Title)

	assert.Equal(t, "/v2/top-headlines", last.Path)
	assert.Equal(t, "technology", last.Query().Get("category"))
	assert.Equal(t, "5", last.Query().Get("pageSize"))
	assert.Equal(t, "cli-key", last.Query().Get("apiKey"))
}

func TestSearchCommand(t *testing.T) {
	clearEnv(t)
	cfgPath, last := writeConfig(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, "search", "--config", cfgPath, "climate"))

	assert.Equal(t, "/v2/everything", last.Path)
	assert.Equal(t, "climate", last.Query().Get("q"))
	assert.Equal(t, news.DefaultSortBy, last.Query().Get("sortBy"))
	assert.Contains(t, out.String(), "CLI story")
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	clearEnv(t)
	err := run(context.Background(), io.Discard, "search")
	assert.Error(t, err)
}

func TestCommands_BadConfig(t *testing.T) {
	clearEnv(t)
	err := run(context.Background(), io.Discard, "headlines", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, config.ErrReadConfigFail)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, "version"))
	assert.True(t, strings.HasPrefix(out.String(), "newsdesk dev+none"))
}
