package server

import (
	"encoding/json"
	"net/http"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
)

type registerRequest struct {
	Username       string      `json:"username"`
	Password       string      `json:"password"`
	Role           domain.Role `json:"role"`
	DoctorUsername string      `json:"doctorUsername"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  sessionView `json:"user"`
}

// sessionView is the user without the password field.
type sessionView struct {
	Username       string      `json:"username"`
	Role           domain.Role `json:"role"`
	DoctorUsername string      `json:"doctorUsername,omitempty"`
}

func viewOf(u *domain.User) sessionView {
	return sessionView{Username: u.Username, Role: u.Role, DoctorUsername: u.DoctorUsername}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	user, token, err := s.auth.Register(r.Context(), req.Username, req.Password, req.Role, req.DoctorUsername)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, authResponse{Token: token, User: viewOf(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	user, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, authResponse{Token: token, User: viewOf(user)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	s.chat.Drop(token)
	if err := s.auth.Logout(r.Context(), token); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, viewOf(sessionUser(r)))
}
