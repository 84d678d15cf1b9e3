package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"newsdesk/internal/fetch"
)

const maxPageBytes = 5 << 20

// fallbackSelectors are tried in order when readability finds nothing.
var fallbackSelectors = []string{
	"article",
	"main",
	".article-body",
	".post-content",
	".entry-content",
	".story-body",
	".content",
}

// DefaultExtractor uses go-readability primarily and goquery as a fallback.
type DefaultExtractor struct {
	client *fetch.Client
}

// NewDefaultExtractor constructs a DefaultExtractor that downloads pages with client.
func NewDefaultExtractor(client *fetch.Client) *DefaultExtractor {
	return &DefaultExtractor{client: client}
}

// Extract downloads articleURL and returns its readable content.
func (d *DefaultExtractor) Extract(ctx context.Context, articleURL string) (Content, error) {
	pageURL, err := url.Parse(articleURL)
	if err != nil {
		return Content{}, fmt.Errorf("reader: parse url: %w", err)
	}

	resp, err := d.client.Get(ctx, articleURL, map[string]string{"Accept": "text/html,application/xhtml+xml"})
	if err != nil {
		return Content{}, fmt.Errorf("reader: fetch %s: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Content{}, fmt.Errorf("reader: unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Content{}, fmt.Errorf("reader: read body: %w", err)
	}

	return ExtractHTML(body, pageURL)
}

// ExtractHTML runs readability over page, then the selector fallback.
func ExtractHTML(page []byte, pageURL *url.URL) (Content, error) {
	metaImages := extractImagesFromMetaTags(page)

	if doc, err := readability.FromReader(bytes.NewReader(page), pageURL); err == nil && strings.TrimSpace(doc.Content) != "" {
		images := metaImages
		if len(images) == 0 {
			images = extractImagesFromHTML(doc.Content, pageURL)
		}
		text := strings.TrimSpace(doc.TextContent)
		return Content{
			Title:          doc.Title,
			HTML:           sanitizeHTML(doc.Content),
			Text:           text,
			Excerpt:        doc.Excerpt,
			Images:         images,
			ReadingMinutes: ReadingTime(text),
		}, nil
	}

	return extractWithSelectors(page, pageURL, metaImages)
}

// extractWithSelectors looks for a well-known article container.
func extractWithSelectors(page []byte, pageURL *url.URL, metaImages []string) (Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Content{}, err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range fallbackSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		s.Find("script, iframe, style, .ad, .advertisement, .promo, .related, .share").Remove()
		htmlStr, _ := s.Html()
		htmlStr = sanitizeHTML(htmlStr)
		if htmlStr == "" {
			continue
		}

		images := metaImages
		if len(images) == 0 {
			images = extractImagesFromHTML(htmlStr, pageURL)
		}
		text := PlainText(htmlStr)
		return Content{
			Title:          title,
			HTML:           htmlStr,
			Text:           text,
			Images:         images,
			ReadingMinutes: ReadingTime(text),
		}, nil
	}

	return Content{}, ErrNoContent
}

// sanitizeHTML ensures consistent wrapping.
func sanitizeHTML(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	if !strings.HasPrefix(html, "<div") {
		html = fmt.Sprintf(`<div class="newsdesk-article">%s</div>`, html)
	}
	return html
}

// extractImagesFromMetaTags extracts image URLs from Open Graph and Twitter Card meta tags.
func extractImagesFromMetaTags(page []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	var images []string
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="article:image"]`,
	} {
		if img, ok := doc.Find(sel).Attr("content"); ok && img != "" {
			images = append(images, img)
		}
	}
	return images
}

// extractImagesFromHTML collects <img src> values resolved against base.
func extractImagesFromHTML(html string, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var images []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		// Skip data URLs and very short URLs
		if !ok || strings.HasPrefix(src, "data:") || len(src) < 6 {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme == "" {
			ref.Scheme = "https"
		}
		images = append(images, ref.String())
	})
	return images
}
