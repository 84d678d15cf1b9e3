package app

import "newsdesk/internal/news"

// Category is one of the sections the upstream API knows about.
type Category struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	Icon        string         `json:"icon"`
	Articles    []news.Article `json:"articles,omitempty"`
}

var categories = []Category{
	{Name: "business", DisplayName: "Business", Icon: "💼"},
	{Name: "entertainment", DisplayName: "Entertainment", Icon: "🎬"},
	{Name: "general", DisplayName: "General", Icon: "📰"},
	{Name: "health", DisplayName: "Health", Icon: "🏥"},
	{Name: "science", DisplayName: "Science", Icon: "🔬"},
	{Name: "sports", DisplayName: "Sports", Icon: "⚽"},
	{Name: "technology", DisplayName: "Technology", Icon: "💻"},
}

func lookupCategory(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
