// Package httpapi exposes the reference server's JSON API: account
// endpoints, the profile store and the ordered message collection with its
// live snapshot stream.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/IndraPur1/ChatApp/internal/logging"
	"github.com/IndraPur1/ChatApp/internal/server/auth"
	"github.com/IndraPur1/ChatApp/internal/server/config"
	"github.com/IndraPur1/ChatApp/internal/server/store"
)

type Server struct {
	cfg   config.Config
	store *store.Store
	log   logging.Logger
}

func NewServer(cfg config.Config, st *store.Store, log logging.Logger) *Server {
	return &Server{cfg: cfg, store: st, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)

	r.With(s.authMiddleware).Get("/profiles/{userID}", s.handleGetProfile)
	r.With(s.authMiddleware).Put("/profiles/{userID}", s.handlePutProfile)

	r.With(s.authMiddleware).Post("/messages", s.handleAppendMessage)
	r.With(s.authMiddleware).Get("/messages/stream", s.handleMessageStream)

	return r
}

type ctxKey int

const claimsKey ctxKey = 0

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(s.cfg.SigningKey, token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
