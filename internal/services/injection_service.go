package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/logger"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

// InjectionService owns a patient's injection log and its scheduled dose.
// Every successful save or delete persists the full list for the patient.
type InjectionService struct {
	store storage.Store
	now   func() time.Time
}

func NewInjectionService(store storage.Store) *InjectionService {
	return &InjectionService{store: store, now: time.Now}
}

// List returns the patient's records, sorted descending by timestamp.
// Unreadable data degrades to an empty log.
func (s *InjectionService) List(ctx context.Context, patientID domain.PatientID) ([]domain.Injection, error) {
	var injections []domain.Injection
	err := storage.GetJSON(ctx, s.store, storage.InjectionsKey(patientID), &injections)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("failed to load injections", "patient", string(patientID), "error", err)
		return nil, nil
	}
	return injections, nil
}

// ScheduledDose returns the patient's pending dose, or nil when none is set.
func (s *InjectionService) ScheduledDose(ctx context.Context, patientID domain.PatientID) (*domain.ScheduledDose, error) {
	var dose domain.ScheduledDose
	err := storage.GetJSON(ctx, s.store, storage.ScheduledDoseKey(patientID), &dose)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Error("failed to load scheduled dose", "patient", string(patientID), "error", err)
		return nil, nil
	}
	return &dose, nil
}

// Save creates a new record or, when editingID is given, replaces that
// record's mutable fields while preserving its id and original timestamp.
// A doctor-set next dose (re)creates the patient's scheduled dose; editing
// the sourcing record without one clears it.
func (s *InjectionService) Save(ctx context.Context, user *domain.User, patientID domain.PatientID, input domain.InjectionInput, editingID string) (*domain.Injection, error) {
	if err := s.validate(user, input); err != nil {
		return nil, err
	}

	injections, _ := s.List(ctx, patientID)

	var saved *domain.Injection
	if editingID != "" {
		for i := range injections {
			if injections[i].ID == editingID {
				injections[i] = applyInput(injections[i], input)
				saved = &injections[i]
				break
			}
		}
		if saved == nil {
			return nil, apperrors.New(apperrors.ErrorTypeNotFound, "no injection with that id")
		}
		sort.SliceStable(injections, func(i, j int) bool {
			return injections[i].Timestamp.After(injections[j].Timestamp)
		})
		// re-resolve after the sort moved entries around
		for i := range injections {
			if injections[i].ID == editingID {
				saved = &injections[i]
				break
			}
		}
	} else {
		record := applyInput(domain.Injection{
			ID:        uuid.NewString(),
			Timestamp: s.now(),
		}, input)
		injections = append([]domain.Injection{record}, injections...)
		saved = &injections[0]
	}

	if err := storage.SetJSON(ctx, s.store, storage.InjectionsKey(patientID), injections); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	if err := s.syncScheduledDose(ctx, user, patientID, saved, editingID != ""); err != nil {
		return nil, err
	}

	out := *saved
	return &out, nil
}

// Delete removes the record. When it sourced the active scheduled dose the
// dose is cleared first.
func (s *InjectionService) Delete(ctx context.Context, patientID domain.PatientID, injectionID string) error {
	dose, _ := s.ScheduledDose(ctx, patientID)
	if dose != nil && dose.SourceInjectionID == injectionID {
		if err := s.store.Remove(ctx, storage.ScheduledDoseKey(patientID)); err != nil {
			return apperrors.NewStorageError(err)
		}
	}

	injections, _ := s.List(ctx, patientID)
	kept := injections[:0]
	found := false
	for _, inj := range injections {
		if inj.ID == injectionID {
			found = true
			continue
		}
		kept = append(kept, inj)
	}
	if !found {
		return apperrors.New(apperrors.ErrorTypeNotFound, "no injection with that id")
	}

	if err := storage.SetJSON(ctx, s.store, storage.InjectionsKey(patientID), kept); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

func (s *InjectionService) validate(user *domain.User, input domain.InjectionInput) error {
	if input.Units <= 0 {
		return apperrors.NewValidationError("units must be a positive number")
	}
	if !input.Type.Valid() {
		return apperrors.NewValidationError("unknown insulin type")
	}
	if input.GlucoseLevel != nil && *input.GlucoseLevel < 0 {
		return apperrors.NewValidationError("glucose level must not be negative")
	}
	if input.Carbs != nil && *input.Carbs < 0 {
		return apperrors.NewValidationError("carbs must not be negative")
	}
	if input.GlucoseType != nil && !input.GlucoseType.Valid() {
		return apperrors.NewValidationError("unknown glucose reading type")
	}
	if input.Site != nil && !input.Site.Valid() {
		return apperrors.NewValidationError("unknown injection site")
	}
	if input.NextDoseTimestamp != nil {
		if user.Role != domain.RoleDoctor {
			return apperrors.New(apperrors.ErrorTypeForbidden, "only doctors may schedule the next dose")
		}
		if !input.NextDoseTimestamp.After(s.now()) {
			return apperrors.NewValidationError("next dose must be in the future")
		}
	}
	return nil
}

func (s *InjectionService) syncScheduledDose(ctx context.Context, user *domain.User, patientID domain.PatientID, saved *domain.Injection, edited bool) error {
	if user.Role == domain.RoleDoctor && saved.NextDoseTimestamp != nil {
		dose := domain.ScheduledDose{
			Timestamp:         *saved.NextDoseTimestamp,
			Units:             saved.Units,
			Type:              saved.Type,
			SourceInjectionID: saved.ID,
		}
		if err := storage.SetJSON(ctx, s.store, storage.ScheduledDoseKey(patientID), dose); err != nil {
			return apperrors.NewStorageError(err)
		}
		return nil
	}

	if edited && saved.NextDoseTimestamp == nil {
		existing, _ := s.ScheduledDose(ctx, patientID)
		if existing != nil && existing.SourceInjectionID == saved.ID {
			if err := s.store.Remove(ctx, storage.ScheduledDoseKey(patientID)); err != nil {
				return apperrors.NewStorageError(err)
			}
		}
	}
	return nil
}

func applyInput(record domain.Injection, input domain.InjectionInput) domain.Injection {
	record.Type = input.Type
	record.Units = input.Units
	record.Notes = input.Notes
	record.NextDoseTimestamp = input.NextDoseTimestamp
	record.GlucoseLevel = input.GlucoseLevel
	record.GlucoseType = input.GlucoseType
	record.Carbs = input.Carbs
	record.Site = input.Site
	return record
}
