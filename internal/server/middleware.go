package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
)

type contextKey string

const (
	userContextKey  contextKey = "sessionUser"
	tokenContextKey contextKey = "sessionToken"
)

// requireSession resolves the bearer token into the session user and puts
// both on the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, err := s.auth.SessionUser(r.Context(), token)
		if err != nil {
			respondWithError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func sessionUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

func sessionToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenContextKey).(string)
	return token
}

// resolvePatient picks the patient partition a request addresses: the
// explicit ?patient= override when the user may access it, otherwise the
// active selection.
func (s *Server) resolvePatient(r *http.Request) (domain.PatientID, error) {
	user := sessionUser(r)
	if raw := r.URL.Query().Get("patient"); raw != "" {
		requested := domain.PatientID(raw)
		ids, err := s.patients.RegistryFor(r.Context(), user)
		if err != nil {
			return "", err
		}
		for _, id := range ids {
			if id.Equal(requested) {
				return id, nil
			}
		}
		return "", apperrors.New(apperrors.ErrorTypeForbidden, "patient is not in your registry")
	}

	id, ok, err := s.patients.ActivePatient(r.Context(), user)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.NewValidationError("no patient selected")
	}
	return id, nil
}
