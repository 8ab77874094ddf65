package api

import (
	"encoding/json"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/amosearch/pkg/log"
	"github.com/rubiojr/amosearch/pkg/realtime"
	"github.com/rubiojr/amosearch/pkg/search"
	"github.com/rubiojr/amosearch/pkg/state"
)

var logger = log.ForService("api")

type Server struct {
	store     *state.Store
	performer search.Performer
	hub       *realtime.Hub
}

func NewServer(store *state.Store, performer search.Performer, hub *realtime.Hub) *Server {
	return &Server{
		store:     store,
		performer: performer,
		hub:       hub,
	}
}

// Handler returns the full HTTP handler. JSON routes are gzip compressed;
// the websocket route is mounted outside the compressor.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	s.RegisterRoutes(api)

	root := http.NewServeMux()
	root.HandleFunc("GET /api/signals/ws", s.HandleSignalsWS)
	root.Handle("/", gzhttp.GzipHandler(api))
	return CorsMiddleware(root)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
