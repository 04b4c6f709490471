package profile

import (
	"github.com/renalcare/dashboard/internal/domain/analytics"
	"github.com/renalcare/dashboard/internal/domain/decision"
	"github.com/renalcare/dashboard/internal/domain/dialysis"
	"github.com/renalcare/dashboard/internal/domain/investigation"
	"github.com/renalcare/dashboard/internal/domain/patient"
	"github.com/renalcare/dashboard/internal/domain/prediction"
	"github.com/renalcare/dashboard/internal/platform/store"
)

// CategoryState is the wire form of one category store's state.
type CategoryState[T any] struct {
	Data      T      `json:"data"`
	Error     string `json:"error,omitempty"`
	IsLoading bool   `json:"isLoading"`
	IsFetched bool   `json:"isFetched"`
}

func categoryState[T any](snap store.Snapshot[T]) CategoryState[T] {
	cs := CategoryState[T]{
		Data:      snap.Data,
		IsLoading: snap.IsLoading,
		IsFetched: snap.IsFetched,
	}
	if snap.Err != nil {
		cs.Error = snap.Err.Error()
	}
	return cs
}

// PatientDisplay carries the normalized display forms of the patient's
// polymorphic fields.
type PatientDisplay struct {
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	AssignedDoctor   string `json:"assignedDoctor"`
	MedicalHistory   string `json:"medicalHistory"`
}

// PredictionView pairs the raw model response with the locally derived risk
// tier.
type PredictionView struct {
	CategoryState[*prediction.AIPrediction]
	RiskTier analytics.RiskTier `json:"riskTier,omitempty"`
}

// DialysisView adds the latest-session selection and the weight chart points.
type DialysisView struct {
	CategoryState[[]dialysis.Session]
	Latest      *dialysis.Session      `json:"latest,omitempty"`
	WeightTrend []dialysis.WeightPoint `json:"weightTrend,omitempty"`
}

// InvestigationsView adds the latest-panel selection.
type InvestigationsView struct {
	CategoryState[[]investigation.MonthlyInvestigation]
	Latest *investigation.MonthlyInvestigation `json:"latest,omitempty"`
}

// ProfileSnapshot is the full read-only view of one patient's dashboard.
type ProfileSnapshot struct {
	PatientID      string                                     `json:"patientId"`
	ActiveTab      Tab                                        `json:"activeTab"`
	Tabs           []Tab                                      `json:"tabs"`
	Patient        CategoryState[*patient.Patient]            `json:"patient"`
	PatientDisplay *PatientDisplay                            `json:"patientDisplay,omitempty"`
	Dialysis       DialysisView                               `json:"dialysis"`
	Investigations InvestigationsView                         `json:"investigations"`
	Trend          CategoryState[*analytics.HemoglobinTrend]  `json:"trend"`
	Prediction     PredictionView                             `json:"prediction"`
	Decisions      CategoryState[[]decision.ClinicalDecision] `json:"decisions"`
}

// Snapshot assembles the current dashboard state for a role without
// triggering any loads.
func (s *Session) Snapshot(role Role) ProfileSnapshot {
	snap := ProfileSnapshot{
		PatientID: s.patientID,
		ActiveTab: s.ActiveTab(),
		Tabs:      TabsForRole(role),
		Patient:   categoryState(s.patient.Snapshot()),
		Trend:     categoryState(s.trend.Snapshot()),
		Decisions: categoryState(s.decisions.Snapshot()),
	}

	if p := snap.Patient.Data; p != nil {
		snap.PatientDisplay = &PatientDisplay{
			Address:          p.Address.Display(),
			EmergencyContact: p.EmergencyContact.Display(),
			AssignedDoctor:   p.AssignedDoctor.Display(),
			MedicalHistory:   p.MedicalHistory.Display(),
		}
	}

	ds := categoryState(s.sessions.Snapshot())
	snap.Dialysis = DialysisView{
		CategoryState: ds,
		Latest:        dialysis.LatestSession(ds.Data),
		WeightTrend:   dialysis.WeightTrend(ds.Data),
	}

	is := categoryState(s.investigations.Snapshot())
	snap.Investigations = InvestigationsView{
		CategoryState: is,
		Latest:        investigation.LatestInvestigation(is.Data),
	}

	ps := categoryState(s.prediction.Snapshot())
	pv := PredictionView{CategoryState: ps}
	if ps.Data != nil {
		pv.RiskTier = analytics.ClassifyRisk(ps.Data.RiskProbability)
	}
	snap.Prediction = pv

	// The nurse view omits the doctor-only categories entirely.
	if role == RoleNurse {
		snap.Prediction = PredictionView{}
		snap.Decisions = CategoryState[[]decision.ClinicalDecision]{}
	}

	return snap
}
