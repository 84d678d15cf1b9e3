package reader

import (
	"net/netip"
	"net/url"
	"strings"

	"newsdesk/internal/fetch"
)

// URLFilter defines filtering rules for a specific domain
type URLFilter struct {
	Domain       string
	AllowedPaths []string // If empty, allow all paths
	BlockedPaths []string // Takes priority over AllowedPaths
}

// FilterRegistry manages URL filtering rules
type FilterRegistry struct {
	filters []URLFilter
	// AllowInternal lets localhost and loopback, private or link-local IP
	// literals through. Only tests and local development should set it.
	AllowInternal bool
}

// NewFilterRegistry creates a new filter registry
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{
		filters: make([]URLFilter, 0),
	}
}

// Register adds a new URL filter
func (r *FilterRegistry) Register(filter URLFilter) {
	r.filters = append(r.filters, filter)
}

// Block refuses every URL on domain when paths is empty, otherwise only
// URLs under one of paths.
func (r *FilterRegistry) Block(domain string, paths ...string) {
	f := URLFilter{Domain: domain, BlockedPaths: paths}
	if len(paths) == 0 {
		f.BlockedPaths = []string{"/"}
	}
	r.Register(f)
}

// ShouldProcess checks if a URL should be processed based on registered filters.
// Only http and https URLs are ever processed.
func (r *FilterRegistry) ShouldProcess(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if !r.AllowInternal && isInternalHost(host) {
		return false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	// Find matching filter for this URL's domain
	var matchedFilter *URLFilter
	for i := range r.filters {
		d := strings.ToLower(r.filters[i].Domain)
		if host == d || strings.HasSuffix(host, "."+d) {
			matchedFilter = &r.filters[i]
			break
		}
	}

	// If no filter matches, allow processing
	if matchedFilter == nil {
		return true
	}

	// Check blocked paths first (highest priority)
	for _, blocked := range matchedFilter.BlockedPaths {
		if strings.HasPrefix(path, blocked) {
			return false
		}
	}

	// If no allowed paths specified, allow all (except blocked)
	if len(matchedFilter.AllowedPaths) == 0 {
		return true
	}

	for _, allowed := range matchedFilter.AllowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}

	// Doesn't match any allowed path
	return false
}

// isInternalHost catches localhost names and internal IP literals. Names
// that resolve to internal addresses are stopped by the fetch client's
// dial guard instead.
func isInternalHost(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	return err == nil && fetch.IsInternal(addr)
}
