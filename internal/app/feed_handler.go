// internal/app/feed_handler.go
package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"newsdesk/internal/news"
)

// FeedHandler republishes a category's headlines as RSS, Atom or JSON Feed.
type FeedHandler struct {
	News   *news.Service
	Logger *zap.Logger
	// Now is used for the feed timestamp and undated items.
	Now func() time.Time
}

func NewFeedHandler(svc *news.Service, log *zap.Logger) *FeedHandler {
	return &FeedHandler{News: svc, Logger: log, Now: time.Now}
}

func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	category, ok := lookupCategory(r.PathValue("category"))
	if !ok {
		writeJSON(w, http.StatusNotFound, message{Success: false, Message: "Unknown category"})
		return
	}
	country := queryOr(r, "country", defaultCountry)

	articles := h.News.TopHeadlines(r.Context(), news.HeadlineParams{
		Category: category.Name,
		Country:  country,
		PageSize: pageSize,
	})
	feed := h.BuildFeed(category, country, baseURL(r), articles)

	var (
		body        string
		contentType string
		err         error
	)
	switch queryOr(r, "format", "rss") {
	case "atom":
		body, err = feed.ToAtom()
		contentType = "application/atom+xml; charset=utf-8"
	case "json":
		body, err = feed.ToJSON()
		contentType = "application/feed+json; charset=utf-8"
	case "rss":
		body, err = feed.ToRss()
		contentType = "application/rss+xml; charset=utf-8"
	default:
		writeJSON(w, http.StatusBadRequest, message{Success: false, Message: "format must be rss, atom or json"})
		return
	}
	if err != nil {
		h.Logger.Error("Failed to generate feed", zap.String("category", category.Name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Success: false, Message: "Failed to generate feed"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=600")
	_, _ = w.Write([]byte(body))
}

// BuildFeed converts articles into a feed for category. base is the site's
// absolute origin, e.g. https://news.example.com.
func (h *FeedHandler) BuildFeed(category Category, country, base string, articles []news.Article) *feeds.Feed {
	now := h.Now()
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Newsdesk - %s headlines (%s)", category.DisplayName, country),
		Link:        &feeds.Link{Href: base + "/api/categories/" + category.Name},
		Description: fmt.Sprintf("Top %s headlines", category.DisplayName),
		Author:      &feeds.Author{Name: "Newsdesk"},
		Created:     now,
	}

	for _, a := range articles {
		if a.URL == "" {
			h.Logger.Debug("Skipping item without link", zap.String("title", a.Title))
			continue
		}
		created := now
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			created = t
		}

		item := &feeds.Item{
			Id:          guidFromURL(a.URL),
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Description: a.Description,
			Content:     a.Content,
			Created:     created,
		}
		if a.Author != "" || a.Source.Name != "" {
			item.Author = &feeds.Author{Name: firstNonEmpty(a.Author, a.Source.Name)}
		}
		if a.URLToImage != "" {
			item.Enclosure = &feeds.Enclosure{Url: a.URLToImage, Type: "image/jpeg", Length: "0"}
		}
		feed.Items = append(feed.Items, item)
	}
	return feed
}

// baseURL is the origin the client used to reach us. X-Forwarded-Proto is
// honoured for TLS-terminating proxies.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// guidFromURL creates a deterministic GUID from a URL using SHA-256 hashing.
func guidFromURL(u string) string {
	hash := sha256.Sum256([]byte(u))
	return hex.EncodeToString(hash[:])
}
