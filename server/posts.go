package server

import (
	"net/http"
	"path/filepath"

	"socialfeed/storage/models"
)

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	scopeUserID := getQueryItem(r.URL.Query(), "user_id")

	entries, err := s.engine.GetFeed(r.Context(), viewerID(r), scopeUserID)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, map[string][]models.FeedEntry{"feed": entries})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	if err := decodeJson(r, &input); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := s.engine.CreatePost(r.Context(), viewerID(r), input.Content, input.Image)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusCreated, post)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.engine.GetComments(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, map[string][]models.CommentView{"comments": comments})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Content string `json:"content"`
	}
	if err := decodeJson(r, &input); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.AddComment(r.Context(), viewerID(r), r.PathValue("id"), input.Content)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusCreated, result)
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.ToggleLike(r.Context(), viewerID(r), r.PathValue("id"))
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, result)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.mediaStore == nil {
		sendError(w, http.StatusServiceUnavailable, "media store not configured")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		sendError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := s.mediaStore.Upload(
		r.Context(),
		file,
		header.Size,
		header.Header.Get("Content-Type"),
		filepath.Ext(header.Filename),
	)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	sendJson(w, http.StatusCreated, map[string]string{"url": url})
}
