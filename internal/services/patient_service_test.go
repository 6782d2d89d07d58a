package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

var (
	drA = &domain.User{Username: "drA", Role: domain.RoleDoctor}
	pat = &domain.User{Username: "john", Role: domain.RolePatient, DoctorUsername: "drA"}
)

func TestAddPatientSelectsAndPersists(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	id, err := svc.AddPatient(ctx, drA, "John Doe")
	require.NoError(t, err)
	assert.Equal(t, domain.PatientID("John Doe (drA)"), id)

	ids, err := svc.RegistryFor(ctx, drA)
	require.NoError(t, err)
	assert.Equal(t, []domain.PatientID{id}, ids)

	current, ok, err := svc.ActivePatient(ctx, drA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, current)
}

func TestAddPatientDuplicateCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	_, err := svc.AddPatient(ctx, drA, "John")
	require.NoError(t, err)

	_, err = svc.AddPatient(ctx, drA, "john")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAddPatientValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	_, err := svc.AddPatient(ctx, drA, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.AddPatient(ctx, pat, "Someone")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSelectPatientIgnoresNonMembers(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	first, err := svc.AddPatient(ctx, drA, "First")
	require.NoError(t, err)
	second, err := svc.AddPatient(ctx, drA, "Second")
	require.NoError(t, err)

	// AddPatient selected "Second"; selecting a stranger is a no-op.
	require.NoError(t, svc.SelectPatient(ctx, drA, "Stranger (drB)"))
	current, ok, err := svc.ActivePatient(ctx, drA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, current)

	require.NoError(t, svc.SelectPatient(ctx, drA, first))
	current, ok, err = svc.ActivePatient(ctx, drA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, current)
}

func TestGoHomeClearsSelection(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	_, err := svc.AddPatient(ctx, drA, "John")
	require.NoError(t, err)

	require.NoError(t, svc.GoHome(ctx, drA))
	_, ok, err := svc.ActivePatient(ctx, drA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPatientRoleRegistryIsSynthesized(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	ids, err := svc.RegistryFor(ctx, pat)
	require.NoError(t, err)
	assert.Equal(t, []domain.PatientID{"john (drA)"}, ids)

	current, ok, err := svc.ActivePatient(ctx, pat)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.PatientID("john (drA)"), current)
}

func TestSearchFiltersByDisplayName(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(storage.NewMemoryStore())

	for _, name := range []string{"John Doe", "Jane Roe", "Bob Smith"} {
		_, err := svc.AddPatient(ctx, drA, name)
		require.NoError(t, err)
	}

	matched, err := svc.Search(ctx, drA, "jo")
	require.NoError(t, err)
	assert.Equal(t, []domain.PatientID{"John Doe (drA)"}, matched)

	all, err := svc.Search(ctx, drA, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
