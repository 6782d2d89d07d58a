package domain

import (
	"context"
	"time"
)

// AuthService handles registration, login and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, username, password string, role Role, doctorUsername string) (*User, string, error)
	Login(ctx context.Context, username, password string) (*User, string, error)
	Logout(ctx context.Context, token string) error
	SessionUser(ctx context.Context, token string) (*User, error)
}

// PatientService manages a doctor's patient registry and selection pointer.
type PatientService interface {
	AddPatient(ctx context.Context, doctor *User, name string) (PatientID, error)
	SelectPatient(ctx context.Context, doctor *User, id PatientID) error
	GoHome(ctx context.Context, doctor *User) error
	RegistryFor(ctx context.Context, user *User) ([]PatientID, error)
	ActivePatient(ctx context.Context, user *User) (PatientID, bool, error)
	Search(ctx context.Context, doctor *User, query string) ([]PatientID, error)
}

// InjectionService owns a patient's injection log and its scheduled dose.
type InjectionService interface {
	List(ctx context.Context, patientID PatientID) ([]Injection, error)
	Save(ctx context.Context, user *User, patientID PatientID, input InjectionInput, editingID string) (*Injection, error)
	Delete(ctx context.Context, patientID PatientID, injectionID string) error
	ScheduledDose(ctx context.Context, patientID PatientID) (*ScheduledDose, error)
}

// InjectionInput carries the mutable fields of an injection record.
// The record's ID and creation timestamp are never supplied by callers.
type InjectionInput struct {
	Type              InsulinType    `json:"type"`
	Units             float64        `json:"units"`
	Notes             string         `json:"notes"`
	NextDoseTimestamp *time.Time     `json:"nextDoseTimestamp,omitempty"`
	GlucoseLevel      *float64       `json:"glucoseLevel,omitempty"`
	GlucoseType       *GlucoseType   `json:"glucoseType,omitempty"`
	Carbs             *float64       `json:"carbs,omitempty"`
	Site              *InjectionSite `json:"site,omitempty"`
}
