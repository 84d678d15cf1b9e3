// Package bookmarks keeps per-visitor saved articles.
package bookmarks

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/news"
)

var (
	ErrAlreadyBookmarked = errors.New("article already bookmarked")
	ErrMissingURL        = errors.New("article url is required")
)

// Bookmark is a saved article.
type Bookmark struct {
	ID string `json:"id"`
	news.Article
	BookmarkedAt time.Time `json:"bookmarkedAt"`
}

// Store persists bookmarks per owner. Owners are opaque strings; the HTTP
// layer uses the client address. Every method returns the owner's bookmark
// count after the operation where it makes sense.
type Store interface {
	// List returns the owner's bookmarks, oldest first.
	List(ctx context.Context, owner string) ([]Bookmark, error)
	// Add saves article and returns the new count. A second add of the same
	// URL fails with ErrAlreadyBookmarked.
	Add(ctx context.Context, owner string, article news.Article) (int, error)
	// Remove deletes the bookmark for articleURL, if any, and returns the
	// remaining count.
	Remove(ctx context.Context, owner, articleURL string) (int, error)
	Contains(ctx context.Context, owner, articleURL string) (bool, error)
	Close() error
}
