package storage

import (
	"strings"

	"github.com/glucoguide/insulin-tracker/internal/domain"
)

// Key builders. Doctor usernames and patient identifiers are lowercased so
// that the case-insensitive identity rules cannot split one logical
// partition across differently-cased keys.

const LanguageKey = "language"

// UsersKey holds the array of all registered users.
const UsersKey = "users"

// PatientsKey holds a doctor's array of patient identifiers.
func PatientsKey(doctorUsername string) string {
	return "patients_" + strings.ToLower(doctorUsername)
}

// LastPatientKey holds a doctor's last-selected patient identifier.
func LastPatientKey(doctorUsername string) string {
	return "last_patient_" + strings.ToLower(doctorUsername)
}

// InjectionsKey holds a patient's array of injection records.
func InjectionsKey(id domain.PatientID) string {
	return "injections_" + strings.ToLower(string(id))
}

// ScheduledDoseKey holds a patient's single pending dose, or is absent.
func ScheduledDoseKey(id domain.PatientID) string {
	return "scheduledDose_" + strings.ToLower(string(id))
}

// SessionKey holds the session user for a bearer token.
func SessionKey(token string) string {
	return "session_" + token
}
