package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/i18n"
	"github.com/glucoguide/insulin-tracker/internal/logger"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

// language reads the persisted display language, falling back to the
// default when unset or unreadable.
func (s *Server) language(r *http.Request) string {
	var lang string
	err := storage.GetJSON(r.Context(), s.store, storage.LanguageKey, &lang)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("failed to load language", "error", err)
		}
		return i18n.DefaultLanguage
	}
	if !i18n.Supported(lang) {
		return i18n.DefaultLanguage
	}
	return lang
}

func (s *Server) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"language": s.language(r)})
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	if !i18n.Supported(req.Language) {
		respondWithError(w, apperrors.NewValidationError("unsupported language"))
		return
	}
	if err := storage.SetJSON(r.Context(), s.store, storage.LanguageKey, req.Language); err != nil {
		respondWithError(w, apperrors.NewStorageError(err))
		return
	}
	// The chat session resets on its next use because the language key
	// participates in the session identity.
	respondWithJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}
