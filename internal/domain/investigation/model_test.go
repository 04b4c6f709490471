package investigation

import (
	"encoding/json"
	"testing"
)

func TestLatestInvestigationIsFirstElement(t *testing.T) {
	list := []MonthlyInvestigation{
		{InvestigationID: "I-3"},
		{InvestigationID: "I-2"},
		{InvestigationID: "I-1"},
	}
	got := LatestInvestigation(list)
	if got == nil || got.InvestigationID != "I-3" {
		t.Fatalf("LatestInvestigation = %+v, want I-3", got)
	}
}

func TestLatestInvestigationEmpty(t *testing.T) {
	if got := LatestInvestigation(nil); got != nil {
		t.Fatalf("LatestInvestigation(nil) = %+v, want nil", got)
	}
}

func TestPartialPanelDecodes(t *testing.T) {
	raw := `{
		"investigationId": "I-9",
		"hb": 10.4,
		"laboratoryInfo": {"requestedBy": {"id":"2","name":"Dr. Silva"}, "testingMethod": "automated"}
	}`
	var inv MonthlyInvestigation
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if inv.Hb == nil || *inv.Hb != 10.4 {
		t.Errorf("hb = %v, want 10.4", inv.Hb)
	}
	if inv.Albumin != nil {
		t.Errorf("albumin should be nil for a partial panel, got %v", *inv.Albumin)
	}
	if inv.LaboratoryInfo == nil || inv.LaboratoryInfo.RequestedBy.Name != "Dr. Silva" {
		t.Errorf("laboratoryInfo lost: %+v", inv.LaboratoryInfo)
	}
}
