// Package decision models clinical decision records. Decisions are created
// elsewhere by a doctor action; this service only reads them for display.
package decision

import "time"

// ClinicalDecision is one recorded treatment decision, including how the
// doctor responded to the model's suggestions.
type ClinicalDecision struct {
	ID                        string    `json:"id"`
	PatientID                 string    `json:"patientId"`
	Date                      time.Time `json:"date"`
	Notes                     string    `json:"notes"`
	Prescription              string    `json:"prescription"`
	FollowUpDate              time.Time `json:"followUpDate"`
	DoctorID                  string    `json:"doctorId"`
	AISuggestions             []string  `json:"aiSuggestions"`
	AISuggestionsAcknowledged bool      `json:"aiSuggestionsAcknowledged"`
	AISuggestionsOverridden   bool      `json:"aiSuggestionsOverridden"`
	AIOverrideReason          string    `json:"aiOverrideReason,omitempty"`
}

// Overrode reports whether the doctor rejected the suggestions with a reason.
func (d ClinicalDecision) Overrode() bool {
	return d.AISuggestionsOverridden && d.AIOverrideReason != ""
}
