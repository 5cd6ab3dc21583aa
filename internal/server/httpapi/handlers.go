package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/IndraPur1/ChatApp/internal/common"
	"github.com/IndraPur1/ChatApp/internal/server/auth"
	"github.com/IndraPur1/ChatApp/internal/server/crypto"
	"github.com/IndraPur1/ChatApp/internal/server/store"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user, err := s.store.CreateUser(email, hash)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			http.Error(w, "email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.respondWithToken(w, r, user, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	user, ok := s.store.UserByEmail(strings.TrimSpace(req.Email))
	if !ok || crypto.CheckPassword(user.PasswordHash, req.Password) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	s.respondWithToken(w, r, user, http.StatusOK)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, user *store.User, status int) {
	token, err := auth.NewAccessToken(s.cfg.SigningKey, s.cfg.Issuer, s.cfg.AccessTTL, user.ID, user.Email)
	if err != nil {
		s.log.Error(r.Context(), "failed to sign access token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, status, authResponse{UserID: user.ID, Email: user.Email, AccessToken: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	// Tokens are not tracked server-side; logout just acknowledges so the
	// client can discard its token.
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.store.GetProfile(chi.URLParam(r, "userID"))
	if !ok {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if claims := claimsFrom(r); claims == nil || claims.UserID != userID {
		http.Error(w, "cannot write another user's profile", http.StatusForbidden)
		return
	}

	var profile store.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.store.PutProfile(userID, profile)
	w.WriteHeader(http.StatusNoContent)
}

type appendMessageRequest struct {
	Author    string `json:"user"`
	Kind      string `json:"type"`
	Body      string `json:"text"`
	ImageData string `json:"imageBase64"`
}

// maxAppendBytes bounds one append request. Images arrive inline as base64
// data URIs, so the limit leaves room for a 4MiB image after encoding plus
// JSON overhead. Anything bigger would bloat every snapshot from then on.
const maxAppendBytes = 8 << 20

func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAppendBytes)

	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "message too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Author == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}
	if req.Body == "" && req.ImageData == "" {
		http.Error(w, "message payload is required", http.StatusBadRequest)
		return
	}

	msg := s.store.AppendMessage(store.Message{
		Author:    req.Author,
		Kind:      req.Kind,
		Body:      req.Body,
		ImageData: req.ImageData,
	})

	writeJSON(w, http.StatusCreated, msg)
}
