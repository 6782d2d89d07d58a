package server

import (
	"encoding/json"
	"net/http"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
)

type patientListResponse struct {
	Patients []domain.PatientID `json:"patients"`
	Current  domain.PatientID   `json:"current,omitempty"`
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	user := sessionUser(r)
	ids, err := s.patients.RegistryFor(r.Context(), user)
	if err != nil {
		respondWithError(w, err)
		return
	}
	resp := patientListResponse{Patients: ids}
	if current, ok, _ := s.patients.ActivePatient(r.Context(), user); ok {
		resp.Current = current
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddPatient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	id, err := s.patients.AddPatient(r.Context(), sessionUser(r), req.Name)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]domain.PatientID{"patientId": id})
}

func (s *Server) handleSelectPatient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatientID domain.PatientID `json:"patientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := s.patients.SelectPatient(r.Context(), sessionUser(r), req.PatientID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGoHome(w http.ResponseWriter, r *http.Request) {
	if err := s.patients.GoHome(r.Context(), sessionUser(r)); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchPatients(w http.ResponseWriter, r *http.Request) {
	ids, err := s.patients.Search(r.Context(), sessionUser(r), r.URL.Query().Get("q"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patientListResponse{Patients: ids})
}
