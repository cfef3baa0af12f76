package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"socialfeed/storage"
	"socialfeed/storage/models"
)

const tokenLifetime = 24 * time.Hour

type contextKey string

const viewerContextKey contextKey = "viewer_id"

func (s *Server) issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// viewerFromRequest resolves the viewer identity from the bearer token, or ""
// for anonymous requests and unparseable tokens.
func (s *Server) viewerFromRequest(r *http.Request) string {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		return ""
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}

// withViewer resolves the viewer, if any, and passes the request through.
func (s *Server) withViewer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), viewerContextKey, s.viewerFromRequest(r))
		next(w, r.WithContext(ctx))
	}
}

// requireViewer rejects requests without a resolved actor identity.
func (s *Server) requireViewer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID := s.viewerFromRequest(r)
		if viewerID == "" {
			s.sendEngineError(w, storage.ErrNotAuthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), viewerContextKey, viewerID)
		next(w, r.WithContext(ctx))
	}
}

func viewerID(r *http.Request) string {
	id, _ := r.Context().Value(viewerContextKey).(string)
	return id
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJson(r, &input); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.engine.Register(r.Context(), input.Name, input.Email, input.Username, input.Password)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	sendJson(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJson(r, &input); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.engine.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	sendJson(w, http.StatusOK, authResponse{User: user, Token: token})
}
