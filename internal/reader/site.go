package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsdesk/internal/fetch"
)

// SiteRule describes where a publisher keeps its article body.
type SiteRule struct {
	// Content selects the article container, e.g. `div.content-text[property="articleBody"]`.
	Content string
	// Remove lists selectors stripped from the container before rendering.
	Remove []string
}

// SiteExtractor extracts articles from a single publisher using fixed
// selectors. Pages where the container is missing go to Fallback.
type SiteExtractor struct {
	client   *fetch.Client
	rule     SiteRule
	Fallback func(page []byte, pageURL *url.URL) (Content, error)
}

func NewSiteExtractor(client *fetch.Client, rule SiteRule) *SiteExtractor {
	return &SiteExtractor{client: client, rule: rule, Fallback: ExtractHTML}
}

func (e *SiteExtractor) Extract(ctx context.Context, articleURL string) (Content, error) {
	pageURL, err := url.Parse(articleURL)
	if err != nil {
		return Content{}, fmt.Errorf("reader: parse url: %w", err)
	}

	resp, err := e.client.Get(ctx, articleURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return Content{}, fmt.Errorf("reader: fetch %s: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Content{}, fmt.Errorf("reader: unexpected HTTP status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Content{}, fmt.Errorf("reader: read body: %w", err)
	}

	content, err := e.ExtractHTML(page, pageURL)
	if errors.Is(err, ErrNoContent) && e.Fallback != nil {
		return e.Fallback(page, pageURL)
	}
	return content, err
}

// ExtractHTML applies the rule to page.
func (e *SiteExtractor) ExtractHTML(page []byte, pageURL *url.URL) (Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Content{}, err
	}

	container := doc.Find(e.rule.Content).First()
	if container.Length() == 0 {
		return Content{}, ErrNoContent
	}

	container.Find("script, style, iframe").Remove()
	for _, sel := range e.rule.Remove {
		container.Find(sel).Remove()
	}

	htmlStr, err := container.Html()
	if err != nil {
		return Content{}, err
	}
	htmlStr = sanitizeHTML(htmlStr)
	if htmlStr == "" {
		return Content{}, ErrNoContent
	}

	images := extractImagesFromMetaTags(page)
	if len(images) == 0 {
		images = extractImagesFromHTML(htmlStr, pageURL)
	}
	text := PlainText(htmlStr)
	return Content{
		Title:          strings.TrimSpace(doc.Find("title").First().Text()),
		HTML:           htmlStr,
		Text:           text,
		Images:         images,
		ReadingMinutes: ReadingTime(text),
	}, nil
}
