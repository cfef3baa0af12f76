package server

import (
	"net/http"
	"strconv"

	"socialfeed/storage/models"
)

func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.ToggleFollow(r.Context(), viewerID(r), r.PathValue("id"))
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, result)
}

func (s *Server) handleIsFollowing(w http.ResponseWriter, r *http.Request) {
	following, err := s.engine.IsFollowing(r.Context(), viewerID(r), r.PathValue("id"))
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, map[string]bool{"following": following})
}

func (s *Server) handleSuggestedUsers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := getQueryItem(r.URL.Query(), "limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil {
			sendError(w, http.StatusBadRequest, "invalid limit param")
			return
		}
		limit = parsedLimit
	}

	summaries, err := s.engine.SuggestUsers(r.Context(), viewerID(r), limit)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, map[string][]models.UserSummary{"users": summaries})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.engine.GetProfile(r.Context(), r.PathValue("username"))
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	sendJson(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteUser(r.Context(), viewerID(r), r.PathValue("id")); err != nil {
		s.sendEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
