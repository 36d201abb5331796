package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/store"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func userID(r *http.Request) int {
	id, _ := r.Context().Value(userIDKey).(int)
	return id
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

// authenticate resolves the bearer token to a user and stores the user id in
// the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.respondError(w, "Not logged in.", http.StatusUnauthorized)
			return
		}

		id, err := s.store.TokenUser(r.Context(), token)
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, "Not logged in.", http.StatusUnauthorized)
			return
		}

		if err != nil {
			s.respondStoreError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u *models.User, status int) {
	token := s.newToken()

	if err := s.store.SaveToken(r.Context(), token, u.ID); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, AuthResponse{User: u, Token: token}, status)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest

	if err := s.decode(r, &req); err != nil {
		s.respondRequestError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.store.CreateUser(r.Context(), u); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.log.Info("user registered", slog.Int("user_id", u.ID))

	s.issueToken(w, r, u, http.StatusCreated)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	if err := s.decode(r, &req); err != nil {
		s.respondRequestError(w, err)
		return
	}

	u, err := s.store.GetUserByName(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.respondStoreError(w, r, err)
		return
	}

	if u == nil ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.respondError(w, "Invalid username or password.", http.StatusUnauthorized)
		return
	}

	s.issueToken(w, r, u, http.StatusOK)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteToken(r.Context(), bearerToken(r)); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, messageResponse{Message: "Logged out successfully."}, http.StatusOK)
}

func (s *Server) checkSession(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUser(r.Context(), userID(r))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, u, http.StatusOK)
}

// respondRequestError reports a malformed or invalid request body.
func (s *Server) respondRequestError(w http.ResponseWriter, err error) {
	if errors.Is(err, errInvalidBody) {
		s.respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.respondError(w, err.Error(), http.StatusUnprocessableEntity)
}
