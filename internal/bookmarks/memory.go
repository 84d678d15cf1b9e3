package bookmarks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/news"
)

// MemoryStore keeps bookmarks in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]Bookmark
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string][]Bookmark),
		now:   time.Now,
	}
}

func (s *MemoryStore) List(_ context.Context, owner string) ([]Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Bookmark, len(s.items[owner]))
	copy(out, s.items[owner])
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, owner string, article news.Article) (int, error) {
	if article.URL == "" {
		return 0, ErrMissingURL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.items[owner]
	for _, b := range existing {
		if b.URL == article.URL {
			return len(existing), ErrAlreadyBookmarked
		}
	}
	s.items[owner] = append(existing, Bookmark{
		ID:           uuid.NewString(),
		Article:      article,
		BookmarkedAt: s.now().UTC(),
	})
	return len(s.items[owner]), nil
}

func (s *MemoryStore) Remove(_ context.Context, owner, articleURL string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.items[owner]
	kept := existing[:0:0]
	for _, b := range existing {
		if b.URL != articleURL {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		delete(s.items, owner)
	} else {
		s.items[owner] = kept
	}
	return len(kept), nil
}

func (s *MemoryStore) Contains(_ context.Context, owner, articleURL string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.items[owner] {
		if b.URL == articleURL {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Close() error { return nil }
