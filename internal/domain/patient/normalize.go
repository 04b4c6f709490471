package patient

import (
	"fmt"
	"strings"
)

// Fallback literals for records with no usable value. The medical history
// fallback differs from the rest; both forms appear in the dashboard copy.
const (
	fallbackNA      = "N/A"
	fallbackHistory = "No medical history available"
)

// Display renders the address for the profile card.
func (a Address) Display() string {
	if a.Raw != "" {
		return a.Raw
	}
	if s := a.Structured; s != nil {
		return fmt.Sprintf("%s, %s, %s, %s, %s", s.Street, s.City, s.State, s.ZipCode, s.Country)
	}
	return fallbackNA
}

// Display renders the emergency contact as "name (relationship) - phone".
func (e EmergencyContact) Display() string {
	if e.Raw != "" {
		return e.Raw
	}
	if c := e.Structured; c != nil {
		return fmt.Sprintf("%s (%s) - %s", c.Name, c.Relationship, c.Phone)
	}
	return fallbackNA
}

// Display renders the assigned clinician's name, or the raw reference when the
// registry returned only an id string.
func (d AssignedDoctor) Display() string {
	if d.Raw != "" {
		return d.Raw
	}
	if c := d.Structured; c != nil {
		return c.Name
	}
	return fallbackNA
}

// Display renders the medical history as text: free text verbatim, structured
// records as diagnosis plus problem lines.
func (m MedicalHistory) Display() string {
	if m.Raw != "" {
		return m.Raw
	}
	h := m.Structured
	if h == nil {
		return fallbackHistory
	}

	var lines []string
	if h.RenalDiagnosis != "" {
		lines = append(lines, "Renal Diagnosis: "+h.RenalDiagnosis)
	}
	if len(h.MedicalProblems) > 0 {
		problems := make([]string, len(h.MedicalProblems))
		for i, p := range h.MedicalProblems {
			problems[i] = fmt.Sprintf("%s (%s)", p.Problem, p.Status)
		}
		lines = append(lines, "Medical Problems: "+strings.Join(problems, "; "))
	}
	if len(lines) == 0 {
		return fallbackHistory
	}
	return strings.Join(lines, "\n")
}
