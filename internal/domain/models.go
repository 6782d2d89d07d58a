package domain

import (
	"strings"
	"time"
)

// Role distinguishes the two kinds of accounts in the system.
type Role string

const (
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// InsulinType classifies insulin by how fast it acts.
type InsulinType string

const (
	RapidActing        InsulinType = "RAPID_ACTING"
	ShortActing        InsulinType = "SHORT_ACTING"
	IntermediateActing InsulinType = "INTERMEDIATE_ACTING"
	LongActing         InsulinType = "LONG_ACTING"
)

func (t InsulinType) Valid() bool {
	switch t {
	case RapidActing, ShortActing, IntermediateActing, LongActing:
		return true
	}
	return false
}

// GlucoseType records when a glucose reading was taken relative to meals.
type GlucoseType string

const (
	GlucosePreMeal  GlucoseType = "PRE_MEAL"
	GlucosePostMeal GlucoseType = "POST_MEAL"
	GlucoseFasting  GlucoseType = "FASTING"
	GlucoseOther    GlucoseType = "OTHER"
)

func (t GlucoseType) Valid() bool {
	switch t {
	case GlucosePreMeal, GlucosePostMeal, GlucoseFasting, GlucoseOther:
		return true
	}
	return false
}

// InjectionSite is one of the four abdominal regions used for rotation.
type InjectionSite string

const (
	SiteLeftAbdomenUpper  InjectionSite = "LEFT_ABDOMEN_UPPER"
	SiteRightAbdomenUpper InjectionSite = "RIGHT_ABDOMEN_UPPER"
	SiteLeftAbdomenLower  InjectionSite = "LEFT_ABDOMEN_LOWER"
	SiteRightAbdomenLower InjectionSite = "RIGHT_ABDOMEN_LOWER"
)

func (s InjectionSite) Valid() bool {
	switch s {
	case SiteLeftAbdomenUpper, SiteRightAbdomenUpper, SiteLeftAbdomenLower, SiteRightAbdomenLower:
		return true
	}
	return false
}

// User is a registered account. Passwords are stored in plaintext;
// this tracker intentionally has no credential hardening.
type User struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Role           Role   `json:"role"`
	DoctorUsername string `json:"doctorUsername,omitempty"` // required iff Role == Patient
}

// PatientID is the composite key "{name} ({doctorUsername})" that addresses
// one patient's data partition. It is the join key between the doctor and
// patient views and is compared case-insensitively.
type PatientID string

// NewPatientID builds the composite identifier for a patient of a doctor.
func NewPatientID(name, doctorUsername string) PatientID {
	return PatientID(name + " (" + doctorUsername + ")")
}

// PatientIDFor returns the identifier owned by a Patient-role user.
func PatientIDFor(u *User) PatientID {
	return NewPatientID(u.Username, u.DoctorUsername)
}

// Name extracts the display-name part of the identifier,
// e.g. "John Doe (drA)" -> "John Doe".
func (id PatientID) Name() string {
	s := string(id)
	if i := strings.LastIndex(s, " ("); i >= 0 && strings.HasSuffix(s, ")") {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// Equal compares identifiers case-insensitively.
func (id PatientID) Equal(other PatientID) bool {
	return strings.EqualFold(string(id), string(other))
}

// Injection is one dose-administration record.
type Injection struct {
	ID                string         `json:"id"`
	Timestamp         time.Time      `json:"timestamp"`
	Type              InsulinType    `json:"type"`
	Units             float64        `json:"units"`
	Notes             string         `json:"notes,omitempty"`
	NextDoseTimestamp *time.Time     `json:"nextDoseTimestamp,omitempty"`
	GlucoseLevel      *float64       `json:"glucoseLevel,omitempty"`
	GlucoseType       *GlucoseType   `json:"glucoseType,omitempty"`
	Carbs             *float64       `json:"carbs,omitempty"`
	Site              *InjectionSite `json:"site,omitempty"`
}

// ScheduledDose is the single pending future dose for a patient, created by
// the injection record identified by SourceInjectionID.
type ScheduledDose struct {
	Timestamp         time.Time   `json:"timestamp"`
	Units             float64     `json:"units"`
	Type              InsulinType `json:"type"`
	SourceInjectionID string      `json:"sourceInjectionId"`
}

// Chat message roles, matching the generative model's conversation format.
const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
)

// ChatMessage is one turn in a chat session.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
