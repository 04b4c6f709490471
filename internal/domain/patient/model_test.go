package patient

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalStringForms(t *testing.T) {
	raw := `{
		"id": "101",
		"patientId": "P-101",
		"name": "Jane Perera",
		"address": "45 Lake Rd, Colombo",
		"emergencyContact": "Saman Perera - 0771234567",
		"assignedDoctor": "doc-2",
		"medicalHistory": "CKD stage 5, on HD since 2023"
	}`
	var p Patient
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Address.Display() != "45 Lake Rd, Colombo" {
		t.Errorf("address = %q", p.Address.Display())
	}
	if p.AssignedDoctor.Display() != "doc-2" {
		t.Errorf("doctor = %q", p.AssignedDoctor.Display())
	}
	if p.MedicalHistory.Display() != "CKD stage 5, on HD since 2023" {
		t.Errorf("history = %q", p.MedicalHistory.Display())
	}
	if p.Key() != "P-101" {
		t.Errorf("key = %q, want P-101", p.Key())
	}
}

func TestUnmarshalStructuredForms(t *testing.T) {
	raw := `{
		"id": "102",
		"address": {"street":"12 Elm","city":"X","state":"Y","zipCode":"0000","country":"Z"},
		"emergencyContact": {"name":"Nimal","relationship":"brother","phone":"0712223334"},
		"assignedDoctor": {"id":"2","name":"Dr. Silva"},
		"medicalHistory": {
			"renalDiagnosis": "Diabetic nephropathy",
			"medicalProblems": [
				{"problem":"Hypertension","diagnosedDate":"2019-03-01","status":"active"},
				{"problem":"Anemia","diagnosedDate":"2024-01-10","status":"resolved"}
			]
		}
	}`
	var p Patient
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := p.Address.Display(); got != "12 Elm, X, Y, 0000, Z" {
		t.Errorf("address = %q, want \"12 Elm, X, Y, 0000, Z\"", got)
	}
	if got := p.EmergencyContact.Display(); got != "Nimal (brother) - 0712223334" {
		t.Errorf("contact = %q", got)
	}
	if got := p.AssignedDoctor.Display(); got != "Dr. Silva" {
		t.Errorf("doctor = %q", got)
	}
	want := "Renal Diagnosis: Diabetic nephropathy\nMedical Problems: Hypertension (active); Anemia (resolved)"
	if got := p.MedicalHistory.Display(); got != want {
		t.Errorf("history = %q, want %q", got, want)
	}
	if p.Key() != "102" {
		t.Errorf("key = %q, want 102", p.Key())
	}
}

func TestDisplayFallbacksNeverPanic(t *testing.T) {
	var p Patient
	if err := json.Unmarshal([]byte(`{"id":"1","address":null,"medicalHistory":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := p.Address.Display(); got != "N/A" {
		t.Errorf("address fallback = %q, want N/A", got)
	}
	if got := p.EmergencyContact.Display(); got != "N/A" {
		t.Errorf("contact fallback = %q, want N/A", got)
	}
	if got := p.AssignedDoctor.Display(); got != "N/A" {
		t.Errorf("doctor fallback = %q, want N/A", got)
	}
	if got := p.MedicalHistory.Display(); got != "No medical history available" {
		t.Errorf("history fallback = %q", got)
	}
}

func TestMarshalRoundTripsForm(t *testing.T) {
	var p Patient
	in := `{"id":"1","address":{"street":"12 Elm","city":"X","state":"Y","zipCode":"0000","country":"Z"}}`
	if err := json.Unmarshal([]byte(in), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(p.Address)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Address
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if again.Structured == nil || again.Structured.Street != "12 Elm" {
		t.Errorf("structured form lost in round trip: %s", out)
	}
}
