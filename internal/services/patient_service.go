package services

import (
	"context"
	"errors"
	"strings"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/logger"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

// PatientService manages each doctor's patient registry and last-selected
// pointer. A Patient-role user has a single synthesized identifier and no
// persisted list.
type PatientService struct {
	store storage.Store
}

func NewPatientService(store storage.Store) *PatientService {
	return &PatientService{store: store}
}

func (s *PatientService) registry(ctx context.Context, doctorUsername string) []domain.PatientID {
	var ids []domain.PatientID
	err := storage.GetJSON(ctx, s.store, storage.PatientsKey(doctorUsername), &ids)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("failed to load patient registry", "doctor", doctorUsername, "error", err)
		return nil
	}
	return ids
}

// AddPatient appends a new identifier to the doctor's registry and selects it.
func (s *PatientService) AddPatient(ctx context.Context, doctor *domain.User, name string) (domain.PatientID, error) {
	if doctor.Role != domain.RoleDoctor {
		return "", apperrors.New(apperrors.ErrorTypeForbidden, "only doctors manage a patient registry")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("patient name must not be blank")
	}

	id := domain.NewPatientID(name, doctor.Username)
	ids := s.registry(ctx, doctor.Username)
	for _, existing := range ids {
		if existing.Equal(id) {
			return "", apperrors.NewValidationError("a patient with that name already exists")
		}
	}

	ids = append(ids, id)
	if err := storage.SetJSON(ctx, s.store, storage.PatientsKey(doctor.Username), ids); err != nil {
		return "", apperrors.NewStorageError(err)
	}
	if err := storage.SetJSON(ctx, s.store, storage.LastPatientKey(doctor.Username), id); err != nil {
		return "", apperrors.NewStorageError(err)
	}
	return id, nil
}

// SelectPatient updates the last-selected pointer. A no-op unless id is a
// member of the doctor's registry.
func (s *PatientService) SelectPatient(ctx context.Context, doctor *domain.User, id domain.PatientID) error {
	if doctor.Role != domain.RoleDoctor {
		return apperrors.New(apperrors.ErrorTypeForbidden, "only doctors select patients")
	}
	for _, existing := range s.registry(ctx, doctor.Username) {
		if existing.Equal(id) {
			if err := storage.SetJSON(ctx, s.store, storage.LastPatientKey(doctor.Username), existing); err != nil {
				return apperrors.NewStorageError(err)
			}
			return nil
		}
	}
	return nil
}

// GoHome clears the doctor's current selection.
func (s *PatientService) GoHome(ctx context.Context, doctor *domain.User) error {
	if doctor.Role != domain.RoleDoctor {
		return apperrors.New(apperrors.ErrorTypeForbidden, "only doctors have a patient selection")
	}
	if err := s.store.Remove(ctx, storage.LastPatientKey(doctor.Username)); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// RegistryFor returns the identifiers the user may access: the persisted
// registry for a doctor, the single synthesized identifier for a patient.
func (s *PatientService) RegistryFor(ctx context.Context, user *domain.User) ([]domain.PatientID, error) {
	if user.Role == domain.RolePatient {
		return []domain.PatientID{domain.PatientIDFor(user)}, nil
	}
	return s.registry(ctx, user.Username), nil
}

// ActivePatient resolves the user's current patient: a patient is always
// their own identifier; a doctor gets the last-selected pointer, which only
// counts when it still names a registry member.
func (s *PatientService) ActivePatient(ctx context.Context, user *domain.User) (domain.PatientID, bool, error) {
	if user.Role == domain.RolePatient {
		return domain.PatientIDFor(user), true, nil
	}

	var last domain.PatientID
	err := storage.GetJSON(ctx, s.store, storage.LastPatientKey(user.Username), &last)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		logger.Error("failed to load last patient", "doctor", user.Username, "error", err)
		return "", false, nil
	}
	for _, existing := range s.registry(ctx, user.Username) {
		if existing.Equal(last) {
			return existing, true, nil
		}
	}
	return "", false, nil
}

// Search filters the doctor's registry by a case-insensitive substring
// match on the display name.
func (s *PatientService) Search(ctx context.Context, doctor *domain.User, query string) ([]domain.PatientID, error) {
	ids, err := s.RegistryFor(ctx, doctor)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ids, nil
	}
	var matched []domain.PatientID
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id.Name()), query) {
			matched = append(matched, id)
		}
	}
	return matched, nil
}
