package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"newsdesk/internal/bookmarks"
	"newsdesk/internal/news"
)

const maxBodyBytes = 1 << 20

type bookmarkReply struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	BookmarksCount int    `json:"bookmarksCount"`
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	list, err := s.bookmarks.List(r.Context(), clientID(r))
	if err != nil {
		s.log.Error("Failed to load bookmarks", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Success: false, Message: "Failed to load bookmarks."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"bookmarks": list,
		"count":     len(list),
	})
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Article *news.Article `json:"article"`
	}
	if err := decodeBody(w, r, &body); err != nil || body.Article == nil {
		writeJSON(w, http.StatusBadRequest, message{Success: false, Message: "Article data is required"})
		return
	}

	count, err := s.bookmarks.Add(r.Context(), clientID(r), *body.Article)
	switch {
	case errors.Is(err, bookmarks.ErrAlreadyBookmarked):
		writeJSON(w, http.StatusOK, bookmarkReply{Success: false, Message: "Article already bookmarked", BookmarksCount: count})
	case errors.Is(err, bookmarks.ErrMissingURL):
		writeJSON(w, http.StatusBadRequest, message{Success: false, Message: "Article URL is required"})
	case err != nil:
		s.log.Error("Add bookmark error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Success: false, Message: "Failed to bookmark article"})
	default:
		writeJSON(w, http.StatusOK, bookmarkReply{Success: true, Message: "Article bookmarked successfully", BookmarksCount: count})
	}
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := decodeBody(w, r, &body); err != nil || body.URL == "" {
		writeJSON(w, http.StatusBadRequest, message{Success: false, Message: "Article URL is required"})
		return
	}

	count, err := s.bookmarks.Remove(r.Context(), clientID(r), body.URL)
	if err != nil {
		s.log.Error("Remove bookmark error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Success: false, Message: "Failed to remove bookmark"})
		return
	}
	writeJSON(w, http.StatusOK, bookmarkReply{Success: true, Message: "Bookmark removed successfully", BookmarksCount: count})
}

func (s *Server) handleCheckBookmark(w http.ResponseWriter, r *http.Request) {
	ok, err := s.bookmarks.Contains(r.Context(), clientID(r), r.URL.Query().Get("url"))
	if err != nil {
		s.log.Error("Check bookmark error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Success: false, Message: "Failed to check bookmark status"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"isBookmarked": ok,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
