package app

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/bookmarks"
	"newsdesk/internal/config"
)

const storyJSON = `{"article": {"source": {"name": "Wire"}, "title": "First story", "url": "https://news.test/1"}}`

func TestBookmarks_Lifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	var reply bookmarkReply
	rec := env.do(t, http.MethodPost, "/bookmarks/add", storyJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &reply)
	assert.True(t, reply.Success)
	assert.Equal(t, 1, reply.BookmarksCount)

	rec = env.do(t, http.MethodPost, "/bookmarks/add", storyJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &reply)
	assert.False(t, reply.Success)
	assert.Equal(t, "Article already bookmarked", reply.Message)

	var check struct {
		IsBookmarked bool `json:"isBookmarked"`
	}
	decode(t, env.do(t, http.MethodGet, "/bookmarks/check?url=https://news.test/1", ""), &check)
	assert.True(t, check.IsBookmarked)

	var list struct {
		Bookmarks []bookmarks.Bookmark `json:"bookmarks"`
		Count     int                  `json:"count"`
	}
	decode(t, env.do(t, http.MethodGet, "/bookmarks", ""), &list)
	require.Len(t, list.Bookmarks, 1)
	assert.Equal(t, "First story", list.Bookmarks[0].Title)
	assert.NotEmpty(t, list.Bookmarks[0].ID)

	rec = env.do(t, http.MethodPost, "/bookmarks/remove", `{"url": "https://news.test/1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &reply)
	assert.True(t, reply.Success)
	assert.Zero(t, reply.BookmarksCount)

	check.IsBookmarked = true
	decode(t, env.do(t, http.MethodGet, "/bookmarks/check?url=https://news.test/1", ""), &check)
	assert.False(t, check.IsBookmarked)
}

func TestBookmarks_BadRequests(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"missing article", "/bookmarks/add", `{}`},
		{"malformed json", "/bookmarks/add", `{"article":`},
		{"article without url", "/bookmarks/add", `{"article": {"title": "x"}}`},
		{"remove without url", "/bookmarks/remove", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body message
			decode(t, rec, &body)
			assert.False(t, body.Success)
		})
	}
}

func TestBookmarks_PerClient(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/bookmarks/add", storyJSON).Code)

	req := newRequest(http.MethodGet, "/bookmarks/check?url=https://news.test/1")
	req.RemoteAddr = "198.51.100.9:4000"
	rec := serve(env, req)

	var check struct {
		IsBookmarked bool `json:"isBookmarked"`
	}
	decode(t, rec, &check)
	assert.False(t, check.IsBookmarked)
}

func TestBookmarks_SQLiteDriver(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "bookmarks.db")
	env := newTestEnv(t, func(c *config.Config) {
		c.Bookmarks.Driver = "sqlite"
		c.Bookmarks.DSN = dsn
	})

	rec := env.do(t, http.MethodPost, "/bookmarks/add", storyJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Count int `json:"count"`
	}
	decode(t, env.do(t, http.MethodGet, "/bookmarks", ""), &list)
	assert.Equal(t, 1, list.Count)
}
