package reader

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

var (
	ErrBlocked   = errors.New("reader: source is blocked")
	ErrNoContent = errors.New("reader: no main article content found")
)

// Content is the readable part of an article page.
type Content struct {
	Title          string   `json:"title,omitempty"`
	HTML           string   `json:"html"`
	Text           string   `json:"text"`
	Excerpt        string   `json:"excerpt,omitempty"`
	Images         []string `json:"images,omitempty"`
	ReadingMinutes int      `json:"readingMinutes"`
}

// Extractor extracts the main content of the page at url.
type Extractor interface {
	Extract(ctx context.Context, url string) (Content, error)
}

// Registry holds domain-specific extractors, a default fallback and the
// filter that decides which URLs may be fetched at all.
type Registry struct {
	defaultExtractor Extractor
	domains          map[string]Extractor
	filters          *FilterRegistry
}

func NewRegistry(filters *FilterRegistry) *Registry {
	if filters == nil {
		filters = NewFilterRegistry()
	}
	return &Registry{
		domains: make(map[string]Extractor),
		filters: filters,
	}
}

func (r *Registry) RegisterDefault(e Extractor) {
	r.defaultExtractor = e
}

// RegisterDomain uses e for domain and its subdomains.
func (r *Registry) RegisterDomain(domain string, e Extractor) {
	r.domains[strings.ToLower(domain)] = e
}

// ForURL returns the best extractor for the URL.
func (r *Registry) ForURL(rawURL string) Extractor {
	if u, err := url.Parse(rawURL); err == nil {
		host := strings.ToLower(u.Hostname())
		for host != "" {
			if e, ok := r.domains[host]; ok {
				return e
			}
			i := strings.IndexByte(host, '.')
			if i < 0 {
				break
			}
			host = host[i+1:]
		}
	}
	if r.defaultExtractor != nil {
		return r.defaultExtractor
	}
	return noopExtractor{}
}

// Extract applies the filter and dispatches to the matching extractor.
func (r *Registry) Extract(ctx context.Context, rawURL string) (Content, error) {
	if !r.filters.ShouldProcess(rawURL) {
		return Content{}, ErrBlocked
	}
	return r.ForURL(rawURL).Extract(ctx, rawURL)
}

// noopExtractor is a last-resort extractor.
type noopExtractor struct{}

func (noopExtractor) Extract(context.Context, string) (Content, error) {
	return Content{}, ErrNoContent
}
