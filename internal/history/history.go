// Package history remembers recent searches and turns them into suggestions.
package history

import (
	"strings"
	"sync"
)

// DefaultTopics are suggested to everyone, after their own searches.
var DefaultTopics = []string{"COVID-19", "Election", "Technology", "Sports", "Weather"}

const (
	MinQueryLength = 2
	MaxSuggestions = 5
	// DefaultLimit is how many searches are kept per owner.
	DefaultLimit = 20
)

// History keeps the most recent searches per owner in memory.
type History struct {
	mu     sync.Mutex
	limit  int
	recent map[string][]string
	topics []string
}

// New creates a History keeping up to limit searches per owner.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{
		limit:  limit,
		recent: make(map[string][]string),
		topics: DefaultTopics,
	}
}

// Record stores query as owner's most recent search. Repeats move to the
// front instead of being stored twice; comparison ignores case.
func (h *History) Record(owner, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	list := []string{query}
	for _, q := range h.recent[owner] {
		if !strings.EqualFold(q, query) {
			list = append(list, q)
		}
	}
	if len(list) > h.limit {
		list = list[:h.limit]
	}
	h.recent[owner] = list
}

// Recent returns owner's searches, most recent first.
func (h *History) Recent(owner string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.recent[owner]...)
}

// Suggest returns up to MaxSuggestions entries containing query, drawn from
// owner's searches and then the default topics. Queries shorter than
// MinQueryLength get nothing.
func (h *History) Suggest(owner, query string) []string {
	out := []string{}
	if len([]rune(query)) < MinQueryLength {
		return out
	}
	needle := strings.ToLower(query)

	seen := make(map[string]struct{})
	for _, candidate := range append(h.Recent(owner), h.topics...) {
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup || !strings.Contains(key, needle) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
