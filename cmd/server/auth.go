package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/services/users"
	"github.com/nekoneko-space/travel-platform/internal/middleware"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// authHandlers serves the unauthenticated register/login endpoints.
type authHandlers struct {
	users *users.Service
	auth  *middleware.Auth
	log   *logger.Logger
}

func newAuthHandlers(userSvc *users.Service, auth *middleware.Auth, log *logger.Logger) *authHandlers {
	return &authHandlers{users: userSvc, auth: auth, log: log}
}

func (h *authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.auth.IssueToken(u.ID, u.Email)
	if err != nil {
		h.log.WithError(err).Error("failed to issue token")
		jsonError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": map[string]any{
			"id":         u.ID,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		},
		"token":      token,
		"expires_at": time.Now().Add(24 * time.Hour).UTC(),
	})
}

func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.auth.IssueToken(u.ID, u.Email)
	if err != nil {
		h.log.WithError(err).Error("failed to issue token")
		jsonError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": time.Now().Add(24 * time.Hour).UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
