package news

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Article is a single headline as the upstream API returns it. The service
// never rewrites articles; URL is what callers use to tell them apart.
// Every field is always encoded; an upstream null comes back as "".
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// response is the envelope shared by every upstream endpoint.
type response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// HeadlineParams are the recognized options of a top-headlines request.
// Zero values are left out of both the request and the cache key.
type HeadlineParams struct {
	Category string `json:"category,omitempty"`
	Country  string `json:"country,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

func (p HeadlineParams) values() url.Values {
	v := url.Values{}
	setString(v, "category", p.Category)
	setString(v, "country", p.Country)
	setInt(v, "page", p.Page)
	setInt(v, "pageSize", p.PageSize)
	return v
}

// SearchParams are the options of a search request. SortBy defaults to
// "publishedAt".
type SearchParams struct {
	SortBy   string `json:"sortBy,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

const DefaultSortBy = "publishedAt"

func (p SearchParams) withDefaults() SearchParams {
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	return p
}

func (p SearchParams) values(query string) url.Values {
	v := url.Values{}
	setString(v, "q", query)
	setString(v, "sortBy", p.SortBy)
	setInt(v, "page", p.Page)
	setInt(v, "pageSize", p.PageSize)
	return v
}

func headlineKey(p HeadlineParams) string {
	return encodeKey(p)
}

func searchKey(query string, p SearchParams) string {
	return "search_" + query + "_" + encodeKey(p)
}

// encodeKey serializes params in struct field order, so equal parameter
// sets always share a key.
func encodeKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// plain structs of strings and ints always marshal
		panic(err)
	}
	return string(b)
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, val int) {
	if val != 0 {
		v.Set(key, strconv.Itoa(val))
	}
}
