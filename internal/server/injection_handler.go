package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/dose"
)

type saveInjectionRequest struct {
	domain.InjectionInput
	EditingID string `json:"editingId,omitempty"`
}

func (s *Server) handleListInjections(w http.ResponseWriter, r *http.Request) {
	patientID, err := s.resolvePatient(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	injections, err := s.injections.List(r.Context(), patientID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if injections == nil {
		injections = []domain.Injection{}
	}
	respondWithJSON(w, http.StatusOK, injections)
}

func (s *Server) handleSaveInjection(w http.ResponseWriter, r *http.Request) {
	patientID, err := s.resolvePatient(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req saveInjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	saved, err := s.injections.Save(r.Context(), sessionUser(r), patientID, req.InjectionInput, req.EditingID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	code := http.StatusCreated
	if req.EditingID != "" {
		code = http.StatusOK
	}
	respondWithJSON(w, code, saved)
}

func (s *Server) handleDeleteInjection(w http.ResponseWriter, r *http.Request) {
	patientID, err := s.resolvePatient(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if err := s.injections.Delete(r.Context(), patientID, chi.URLParam(r, "id")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleScheduledDose(w http.ResponseWriter, r *http.Request) {
	patientID, err := s.resolvePatient(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	scheduled, err := s.injections.ScheduledDose(r.Context(), patientID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]*domain.ScheduledDose{"scheduledDose": scheduled})
}

func (s *Server) handleDoseStatus(w http.ResponseWriter, r *http.Request) {
	patientID, err := s.resolvePatient(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	scheduled, err := s.injections.ScheduledDose(r.Context(), patientID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	injections, err := s.injections.List(r.Context(), patientID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	status := dose.Derive(scheduled, injections, time.Now())
	respondWithJSON(w, http.StatusOK, map[string]*dose.Status{"status": status})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	patientID, err := s.resolvePatient(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	injections, err := s.injections.List(r.Context(), patientID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s.analytics.Summarize(r.Context(), injections))
}
