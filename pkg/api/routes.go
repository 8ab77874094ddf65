package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/browse/{application}/{addonType}/{slug}", s.HandleCategory)
	mux.HandleFunc("GET /api/state", s.HandleState)
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("/api/", s.HandleNotFound)
}
