package news

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// SampleFile serves the placeholder dataset used when the live API is not
// available. The file is read on every call so it can be edited in place.
//
// A .json file holds an API-shaped {"articles": [...]} document. A .xml,
// .rss or .atom file is parsed as a saved feed.
type SampleFile struct {
	Path   string
	Logger *zap.Logger
}

// Articles returns the articles in the sample file. A missing or broken file
// yields an empty slice.
func (s SampleFile) Articles() []Article {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		log.Error("Error loading sample data", zap.String("path", s.Path), zap.Error(err))
		return []Article{}
	}

	var articles []Article
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xml", ".rss", ".atom":
		articles, err = parseFeed(data)
	default:
		var doc struct {
			Articles []Article `json:"articles"`
		}
		err = json.Unmarshal(data, &doc)
		articles = doc.Articles
	}
	if err != nil {
		log.Error("Error parsing sample data", zap.String("path", s.Path), zap.Error(err))
		return []Article{}
	}
	if articles == nil {
		return []Article{}
	}
	return articles
}

// parseFeed maps RSS/Atom/JSON Feed items onto articles.
func parseFeed(data []byte) ([]Article, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := Article{
			Source:      Source{Name: feed.Title},
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			Content:     item.Content,
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if item.Image != nil {
			a.URLToImage = item.Image.URL
		} else {
			for _, enc := range item.Enclosures {
				if strings.HasPrefix(enc.Type, "image/") {
					a.URLToImage = enc.URL
					break
				}
			}
		}
		articles = append(articles, a)
	}
	return articles, nil
}
