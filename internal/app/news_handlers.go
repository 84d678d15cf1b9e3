package app

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"newsdesk/internal/news"
	"newsdesk/internal/reader"
)

const (
	defaultCategory = "general"
	defaultCountry  = "us"
	pageSize        = 20
	loadMoreSize    = 10
	previewSize     = 3
	relatedSize     = 4
)

type headlinesResponse struct {
	Category string         `json:"category"`
	Country  string         `json:"country"`
	Featured *news.Article  `json:"featured,omitempty"`
	Articles []news.Article `json:"articles"`
}

// handleHeadlines serves the home page data: the first article is featured.
func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	category := queryOr(r, "category", defaultCategory)
	country := queryOr(r, "country", defaultCountry)

	articles := s.news.TopHeadlines(r.Context(), news.HeadlineParams{
		Category: category,
		Country:  country,
		PageSize: pageSize,
	})

	resp := headlinesResponse{Category: category, Country: country, Articles: []news.Article{}}
	if len(articles) > 0 {
		featured := articles[0]
		resp.Featured = &featured
		resp.Articles = articles[1:]
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLoadMore backs infinite scroll.
func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	articles := s.news.TopHeadlines(r.Context(), news.HeadlineParams{
		Category: queryOr(r, "category", defaultCategory),
		Country:  queryOr(r, "country", defaultCountry),
		Page:     queryInt(r, "page", 1),
		PageSize: loadMoreSize,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"articles": articles,
		"hasMore":  len(articles) == loadMoreSize,
	})
}

// handleCategories lists every category with a few preview articles,
// fetched concurrently.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	out := make([]Category, len(categories))
	var wg sync.WaitGroup
	for i, c := range categories {
		wg.Add(1)
		go func(i int, c Category) {
			defer wg.Done()
			c.Articles = s.news.TopHeadlines(r.Context(), news.HeadlineParams{
				Category: c.Name,
				PageSize: previewSize,
			})
			out[i] = c
		}(i, c)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": out})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("category")
	category, ok := lookupCategory(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, message{
			Success: false,
			Message: fmt.Sprintf("Category %q does not exist.", name),
		})
		return
	}

	country := queryOr(r, "country", defaultCountry)
	page := queryInt(r, "page", 1)
	category.Articles = s.news.TopHeadlines(r.Context(), news.HeadlineParams{
		Category: category.Name,
		Country:  country,
		Page:     page,
		PageSize: pageSize,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"title":    category.DisplayName + " News",
		"category": category,
		"country":  country,
		"page":     page,
	})
}

type searchResponse struct {
	Query        string         `json:"query"`
	SortBy       string         `json:"sortBy"`
	Page         int            `json:"page"`
	TotalResults int            `json:"totalResults"`
	Articles     []news.Article `json:"articles"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	resp := searchResponse{
		Query:    query,
		SortBy:   queryOr(r, "sortBy", news.DefaultSortBy),
		Page:     queryInt(r, "page", 1),
		Articles: []news.Article{},
	}

	if query != "" {
		resp.Articles = s.news.Search(r.Context(), query, news.SearchParams{
			SortBy:   resp.SortBy,
			Page:     resp.Page,
			PageSize: pageSize,
		})
		s.history.Record(clientID(r), query)
	}
	resp.TotalResults = len(resp.Articles)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": s.history.Suggest(clientID(r), r.URL.Query().Get("q")),
	})
}

type articleResponse struct {
	Article     news.Article    `json:"article"`
	Found       bool            `json:"found"`
	ReadingTime int             `json:"readingTime"`
	FullText    *reader.Content `json:"fullText,omitempty"`
	Related     []news.Article  `json:"related"`
}

// handleArticle shows a single article, with its extracted text when the
// reader is enabled and the article is one we served.
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	articleURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if articleURL == "" {
		writeJSON(w, http.StatusBadRequest, message{Success: false, Message: "Article URL is required"})
		return
	}

	article, found := s.news.Lookup(articleURL)
	if !found {
		article = placeholderArticle(articleURL)
	}

	resp := articleResponse{
		Article:     article,
		Found:       found,
		ReadingTime: reader.ReadingTime(firstNonEmpty(article.Content, article.Description)),
	}

	// Only pages the upstream or the sample data handed out are fetched;
	// arbitrary client-supplied URLs never reach the reader.
	if s.reader != nil && found {
		content, err := s.reader.Extract(r.Context(), articleURL)
		if err != nil {
			s.log.Warn("Failed to extract content", zap.String("url", articleURL), zap.Error(err))
		} else {
			resp.FullText = &content
			resp.ReadingTime = content.ReadingMinutes
		}
	}

	resp.Related = s.news.TopHeadlines(r.Context(), news.HeadlineParams{
		Category: defaultCategory,
		PageSize: relatedSize,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.news.ClearCache()
	writeJSON(w, http.StatusOK, message{Success: true, Message: "Cache cleared"})
}

func placeholderArticle(articleURL string) news.Article {
	return news.Article{
		Source:      news.Source{Name: "Unknown"},
		Title:       "Article Not Found",
		Description: "The requested article could not be found.",
		URL:         articleURL,
		URLToImage:  "/images/placeholder.jpg",
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
		Content:     "Content not available.",
	}
}

func queryOr(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return fallback
}

// queryInt parses a positive integer parameter, using fallback otherwise.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
