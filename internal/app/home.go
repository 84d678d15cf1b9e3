package app

import "net/http"

const homeHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Newsdesk</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', system-ui, sans-serif; max-width: 800px; margin: 40px auto; padding: 0 20px; color: #333; }
		h1 { color: #1a56db; }
		code { background: #f1f3f4; padding: 2px 6px; border-radius: 4px; }
		li { margin: 6px 0; }
	</style>
</head>
<body>
	<h1>📰 Newsdesk</h1>
	<p>Latest headlines, cached and always available.</p>
	<h3>API</h3>
	<ul>
		<li><code>GET /api/headlines?category=general&amp;country=us</code></li>
		<li><code>GET /api/load-more?category=general&amp;page=2</code></li>
		<li><code>GET /api/categories</code>, <code>GET /api/categories/{category}</code></li>
		<li><code>GET /api/search?q=climate&amp;sortBy=publishedAt</code></li>
		<li><code>GET /api/search/suggestions?q=te</code></li>
		<li><code>GET /api/article?url={ARTICLE_URL}</code></li>
		<li><code>GET /bookmarks</code>, <code>POST /bookmarks/add</code>, <code>POST /bookmarks/remove</code>, <code>GET /bookmarks/check?url=</code></li>
		<li><code>GET /feed/{category}?format=rss|atom|json</code></li>
		<li><code>GET /health</code></li>
	</ul>
</body>
</html>`

// handleHome serves a small landing page listing the endpoints.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(homeHTML))
}
