// internal/app/server.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"newsdesk/internal/bookmarks"
	"newsdesk/internal/build"
	"newsdesk/internal/cache"
	"newsdesk/internal/config"
	"newsdesk/internal/fetch"
	"newsdesk/internal/history"
	"newsdesk/internal/news"
	"newsdesk/internal/reader"
)

// Server is the application server.
type Server struct {
	cfg   *config.Config
	log   *zap.Logger
	cache *cache.Cache[[]news.Article]
	news  *news.Service
	// reader is nil when full-text extraction is disabled
	reader      reader.Extractor
	bookmarks   bookmarks.Store
	history     *history.History
	feedHandler *FeedHandler
	mux         *http.ServeMux
	shutdown    chan struct{}
}

// NewServer creates a new Server with provided config.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	svc, c := NewNewsService(cfg, log)

	store, err := openBookmarks(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		log:         log,
		cache:       c,
		news:        svc,
		bookmarks:   store,
		history:     history.New(history.DefaultLimit),
		feedHandler: NewFeedHandler(svc, log),
		mux:         http.NewServeMux(),
		shutdown:    make(chan struct{}),
	}
	if cfg.Reader.Enabled {
		s.reader = newReader(cfg, log)
	}

	s.registerRoutes()
	return s, nil
}

// NewNewsService wires the news service and its cache from cfg. The CLI
// uses it directly for one-shot commands.
func NewNewsService(cfg *config.Config, log *zap.Logger) (*news.Service, *cache.Cache[[]news.Article]) {
	hc := fetch.NewClient(fetch.ClientOptions{
		Timeout:   cfg.RequestTimeout(),
		UserAgent: cfg.News.UserAgent,
		RetryMax:  cfg.News.RetryMax,
		Logger:    log.Named("newsapi"),
	})
	c := cache.New[[]news.Article](cfg.CacheTTL(), cache.WithStaleGrace(cfg.StaleGrace()))

	svc := news.NewService(news.ServiceOptions{
		Upstream: news.NewClient(hc, cfg.News.BaseURL, cfg.News.APIKey),
		Cache:    c,
		Sample:   news.SampleFile{Path: cfg.News.SamplePath, Logger: log},
		Logger:   log.Named("news"),
	})
	if cfg.News.APIKey == "" {
		log.Warn("NEWS_API_KEY is not set; serving sample data")
	}
	return svc, c
}

func newReader(cfg *config.Config, log *zap.Logger) reader.Extractor {
	hc := fetch.NewClient(fetch.ClientOptions{
		Timeout:      cfg.ReaderTimeout(),
		UserAgent:    cfg.News.UserAgent,
		DenyInternal: !cfg.Reader.AllowInternal,
		Logger:       log.Named("reader"),
	})
	filters := reader.NewFilterRegistry()
	filters.AllowInternal = cfg.Reader.AllowInternal
	for _, b := range cfg.Reader.Blocked {
		filters.Block(b.Domain, b.Paths...)
	}
	r := reader.NewRegistry(filters)
	r.RegisterDefault(reader.NewDefaultExtractor(hc))
	for _, site := range cfg.Reader.Sites {
		r.RegisterDomain(site.Domain, reader.NewSiteExtractor(hc, reader.SiteRule{
			Content: site.Content,
			Remove:  site.Remove,
		}))
	}
	return r
}

func openBookmarks(cfg *config.Config) (bookmarks.Store, error) {
	switch strings.ToLower(cfg.Bookmarks.Driver) {
	case "sqlite":
		store, err := bookmarks.OpenSQLite(cfg.Bookmarks.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening bookmarks store: %w", err)
		}
		return store, nil
	default:
		return bookmarks.NewMemoryStore(), nil
	}
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.withCommonHeaders(s.mux)))
}

// Run starts the HTTP server and background workers and blocks until ctx
// is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.cacheCleanerLoop(s.cfg.CleanupInterval())
	defer close(s.shutdown)
	defer s.bookmarks.Close()

	h := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", zap.String("addr", addr))
		errCh <- h.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/headlines", s.handleHeadlines)
	s.mux.HandleFunc("GET /api/load-more", s.handleLoadMore)
	s.mux.HandleFunc("GET /api/categories", s.handleCategories)
	s.mux.HandleFunc("GET /api/categories/{category}", s.handleCategory)
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/search/suggestions", s.handleSuggestions)
	s.mux.HandleFunc("GET /api/article", s.handleArticle)
	s.mux.HandleFunc("POST /api/cache/clear", s.handleClearCache)

	s.mux.HandleFunc("GET /bookmarks", s.handleBookmarks)
	s.mux.HandleFunc("POST /bookmarks/add", s.handleAddBookmark)
	s.mux.HandleFunc("POST /bookmarks/remove", s.handleRemoveBookmark)
	s.mux.HandleFunc("GET /bookmarks/check", s.handleCheckBookmark)

	s.mux.Handle("GET /feed/{category}", s.feedHandler)

	s.mux.HandleFunc("/", s.handleNotFound)
}

// handleHealth returns JSON health information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "newsdesk",
		"version":   build.FullVersion(),
		"cache":     s.news.CacheStats(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, message{
		Success: false,
		Message: "The page you are looking for does not exist.",
	})
}

// cacheCleanerLoop periodically drops entries past their stale grace.
func (s *Server) cacheCleanerLoop(every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.cache.Cleanup(); n > 0 {
				s.log.Info("Cache cleaned", zap.Int("removed", n), zap.Int("size", s.cache.Size()))
			}
		case <-s.shutdown:
			return
		}
	}
}

// message is the envelope for simple success/failure replies.
type message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
