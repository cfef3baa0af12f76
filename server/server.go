package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"socialfeed/engine"
	"socialfeed/events"
	"socialfeed/media"
	"socialfeed/monitoring"
)

type Server struct {
	engine      *engine.Engine
	broadcaster *events.Broadcaster
	mediaStore  *media.Store
	jwtSecret   []byte
	addr        string
}

// NewServer wires the HTTP layer. mediaStore may be nil; the upload endpoint
// then reports the media store as unavailable.
func NewServer(
	socialEngine *engine.Engine,
	broadcaster *events.Broadcaster,
	mediaStore *media.Store,
	jwtSecret []byte,
	addr string,
) *Server {
	return &Server{
		engine:      socialEngine,
		broadcaster: broadcaster,
		mediaStore:  mediaStore,
		jwtSecret:   jwtSecret,
		addr:        addr,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.HandleFunc("GET /api/feed", s.withViewer(s.handleFeed))
	mux.HandleFunc("POST /api/posts", s.requireViewer(s.handleCreatePost))
	mux.HandleFunc("GET /api/posts/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /api/posts/{id}/comments", s.requireViewer(s.handleAddComment))
	mux.HandleFunc("POST /api/posts/{id}/like", s.requireViewer(s.handleToggleLike))

	mux.HandleFunc("POST /api/users/{id}/follow", s.requireViewer(s.handleToggleFollow))
	mux.HandleFunc("GET /api/users/{id}/following", s.withViewer(s.handleIsFollowing))
	mux.HandleFunc("GET /api/users/suggested", s.withViewer(s.handleSuggestedUsers))
	mux.HandleFunc("DELETE /api/users/{id}", s.requireViewer(s.handleDeleteUser))
	mux.HandleFunc("GET /api/profiles/{username}", s.handleProfile)

	mux.HandleFunc("POST /api/upload", s.requireViewer(s.handleUpload))
	mux.HandleFunc("GET /ws", s.withViewer(s.handleEvents))

	mux.Handle("GET /metrics", promhttp.Handler())

	return monitoring.NewPrometheusMiddleware(mux)
}

func (s *Server) Run() {
	err := http.ListenAndServe(s.addr, s.Handler())
	if errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("server closed\n")
	} else if err != nil {
		fmt.Printf("error starting server: %s\n", err)
		os.Exit(1)
	}
}
