package news

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"newsdesk/internal/cache"
)

// SampleSource provides the offline article set.
type SampleSource interface {
	Articles() []Article
}

// ServiceOptions wires a Service. Cache and Sample are required.
type ServiceOptions struct {
	Upstream Upstream
	Cache    *cache.Cache[[]Article]
	Sample   SampleSource
	Logger   *zap.Logger
}

// Service fetches headlines and search results from the upstream API,
// caching successful responses and falling back when the API is unavailable.
// Its methods never fail: the worst case is an empty slice.
type Service struct {
	upstream Upstream
	cache    *cache.Cache[[]Article]
	sample   SampleSource
	log      *zap.Logger
	inflight singleflight.Group
}

// NewService creates a Service from opts.
func NewService(opts ServiceOptions) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	up := opts.Upstream
	if up == nil {
		up = disabledUpstream{}
	}
	return &Service{
		upstream: up,
		cache:    opts.Cache,
		sample:   opts.Sample,
		log:      log,
	}
}

// TopHeadlines returns the headlines for p.
//
// A fresh cache entry is returned without contacting the API. On a miss the
// API is called once; on failure the last cached value for p is served even
// if expired, and the sample dataset when there is none. Without an API key
// the sample dataset is always returned.
func (s *Service) TopHeadlines(ctx context.Context, p HeadlineParams) []Article {
	if !s.upstream.Enabled() {
		return s.sample.Articles()
	}

	key := headlineKey(p)
	if articles, ok := s.cache.Get(key); ok {
		s.log.Debug("Serving from cache", zap.String("key", key))
		return articles
	}

	articles, err := s.load(ctx, key, EndpointTopHeadlines, p.values())
	if err == nil {
		return articles
	}
	s.log.Warn("News API error", zap.String("key", key), zap.Error(err))

	if stale, ok := s.cache.Stale(key); ok {
		s.log.Info("Serving stale cache due to API error", zap.String("key", key))
		return stale
	}
	return s.sample.Articles()
}

// Search returns articles matching query. Unlike TopHeadlines a failed call
// yields an empty slice; neither stale entries nor sample data are used.
func (s *Service) Search(ctx context.Context, query string, p SearchParams) []Article {
	if strings.TrimSpace(query) == "" || !s.upstream.Enabled() {
		return []Article{}
	}

	p = p.withDefaults()
	key := searchKey(query, p)
	if articles, ok := s.cache.Get(key); ok {
		s.log.Debug("Serving from cache", zap.String("key", key))
		return articles
	}

	articles, err := s.load(ctx, key, EndpointEverything, p.values(query))
	if err != nil {
		s.log.Warn("Search API error", zap.String("query", query), zap.Error(err))
		return []Article{}
	}
	return articles
}

// Lookup finds an article by URL among cached results, then in the sample
// dataset.
func (s *Service) Lookup(articleURL string) (Article, bool) {
	var (
		found Article
		ok    bool
	)
	s.cache.Range(func(_ string, articles []Article) bool {
		found, ok = findByURL(articles, articleURL)
		return !ok
	})
	if ok {
		return found, true
	}
	return findByURL(s.sample.Articles(), articleURL)
}

// ClearCache evicts every cached response.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.log.Info("Cache cleared")
}

// CacheStats reports cache hits, misses and key count.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// load fetches endpoint once per key at a time and stores the result.
// Concurrent callers for the same key share the call. The call is detached
// from ctx cancellation so one caller going away does not fail the others;
// the client timeout still bounds it.
func (s *Service) load(ctx context.Context, key string, endpoint Endpoint, params url.Values) ([]Article, error) {
	v, err, shared := s.inflight.Do(key, func() (any, error) {
		articles, err := s.upstream.Fetch(context.WithoutCancel(ctx), endpoint, params)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, articles)
		s.log.Info("Fetched fresh news data",
			zap.String("endpoint", string(endpoint)),
			zap.String("key", key),
			zap.Int("articles", len(articles)))
		return articles, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("Shared in-flight request", zap.String("key", key))
	}
	return v.([]Article), nil
}

func findByURL(articles []Article, articleURL string) (Article, bool) {
	for _, a := range articles {
		if a.URL == articleURL {
			return a, true
		}
	}
	return Article{}, false
}

type disabledUpstream struct{}

func (disabledUpstream) Enabled() bool { return false }

func (disabledUpstream) Fetch(context.Context, Endpoint, url.Values) ([]Article, error) {
	return nil, &UpstreamError{Cause: ErrCauseAPI, Message: "no API key configured"}
}
