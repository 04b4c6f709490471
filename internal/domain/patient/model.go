package patient

import (
	"encoding/json"
	"time"
)

// Patient is the registry record for a dialysis patient. Several fields come
// back from the registry either as a plain string (legacy records) or as a
// structured object; those are modeled as union types with one normalizer each.
type Patient struct {
	ID               string           `json:"id"`
	PatientID        string           `json:"patientId"`
	Name             string           `json:"name"`
	Age              int              `json:"age"`
	Gender           string           `json:"gender"`
	BloodType        string           `json:"bloodType"`
	ContactNumber    string           `json:"contactNumber"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	AssignedDoctor   AssignedDoctor   `json:"assignedDoctor"`
	MedicalHistory   MedicalHistory   `json:"medicalHistory"`
	DialysisInfo     *DialysisInfo    `json:"dialysisInfo,omitempty"`
	RegistrationDate time.Time        `json:"registrationDate"`
}

// Key returns the identifier used for record lookups, preferring the clinical
// patientId over the database id.
func (p *Patient) Key() string {
	if p.PatientID != "" {
		return p.PatientID
	}
	return p.ID
}

// DialysisInfo holds the treatment parameters recorded at registration.
type DialysisInfo struct {
	DialysisType string  `json:"dialysisType"`
	Frequency    string  `json:"frequency"`
	AccessType   string  `json:"accessType"`
	AccessSite   string  `json:"accessSite"`
	DryWeight    float64 `json:"dryWeight"`
	TargetUFR    float64 `json:"targetUfr"`
}

// StructuredAddress is the object form of a patient address.
type StructuredAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Address is either a preformatted string or a StructuredAddress.
type Address struct {
	Raw        string
	Structured *StructuredAddress
}

func (a *Address) UnmarshalJSON(b []byte) error {
	return unmarshalUnion(b, &a.Raw, &a.Structured)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return marshalUnion(a.Raw, a.Structured)
}

// ContactPerson is the object form of an emergency contact.
type ContactPerson struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// EmergencyContact is either a preformatted string or a ContactPerson.
type EmergencyContact struct {
	Raw        string
	Structured *ContactPerson
}

func (e *EmergencyContact) UnmarshalJSON(b []byte) error {
	return unmarshalUnion(b, &e.Raw, &e.Structured)
}

func (e EmergencyContact) MarshalJSON() ([]byte, error) {
	return marshalUnion(e.Raw, e.Structured)
}

// Clinician is the embedded form of an assigned doctor reference.
type Clinician struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssignedDoctor is either a clinician id string or an embedded Clinician.
type AssignedDoctor struct {
	Raw        string
	Structured *Clinician
}

func (d *AssignedDoctor) UnmarshalJSON(b []byte) error {
	return unmarshalUnion(b, &d.Raw, &d.Structured)
}

func (d AssignedDoctor) MarshalJSON() ([]byte, error) {
	return marshalUnion(d.Raw, d.Structured)
}

// MedicalProblem is one entry in a structured medical history.
type MedicalProblem struct {
	Problem       string `json:"problem"`
	DiagnosedDate string `json:"diagnosedDate"`
	Status        string `json:"status"`
}

// HistoryRecord is the object form of a medical history.
type HistoryRecord struct {
	RenalDiagnosis  string           `json:"renalDiagnosis"`
	MedicalProblems []MedicalProblem `json:"medicalProblems"`
	Allergies       []string         `json:"allergies"`
	Medications     []string         `json:"medications"`
}

// MedicalHistory is either free text or a HistoryRecord.
type MedicalHistory struct {
	Raw        string
	Structured *HistoryRecord
}

func (m *MedicalHistory) UnmarshalJSON(b []byte) error {
	return unmarshalUnion(b, &m.Raw, &m.Structured)
}

func (m MedicalHistory) MarshalJSON() ([]byte, error) {
	return marshalUnion(m.Raw, m.Structured)
}

// unmarshalUnion decodes a string-or-object payload into exactly one of the
// two destinations. null leaves both empty.
func unmarshalUnion[T any](b []byte, raw *string, structured **T) error {
	*raw = ""
	*structured = nil
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, raw)
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	*structured = v
	return nil
}

func marshalUnion[T any](raw string, structured *T) ([]byte, error) {
	if structured != nil {
		return json.Marshal(structured)
	}
	if raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(raw)
}
