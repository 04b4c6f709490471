package prediction

import "github.com/renalcare/dashboard/internal/domain/investigation"

// Default substitutions for lab values missing from the latest panel. The
// model endpoint rejects sparse payloads, so the request schema is always
// filled completely.
const (
	DefaultAlbumin      = 35.2
	DefaultBUPostHD     = 8.5
	DefaultBUPreHD      = 25.3
	DefaultSCa          = 2.3
	DefaultScrPostHD    = 450
	DefaultScrPreHD     = 890
	DefaultSerumKPostHD = 3.8
	DefaultSerumKPreHD  = 5.2
	DefaultSerumNaPreHD = 138
	DefaultUA           = 400
	DefaultHb           = 9
	DefaultHbDiff       = -0.5
)

// Request is the fixed-schema payload for the hemoglobin risk model.
type Request struct {
	PatientID    string  `json:"patient_id"`
	Albumin      float64 `json:"albumin"`
	BUPostHD     float64 `json:"bu_post_hd"`
	BUPreHD      float64 `json:"bu_pre_hd"`
	SCa          float64 `json:"s_ca"`
	ScrPostHD    float64 `json:"scr_post_hd"`
	ScrPreHD     float64 `json:"scr_pre_hd"`
	SerumKPostHD float64 `json:"serum_k_post_hd"`
	SerumKPreHD  float64 `json:"serum_k_pre_hd"`
	SerumNaPreHD float64 `json:"serum_na_pre_hd"`
	UA           float64 `json:"ua"`
	HbDiff       float64 `json:"hb_diff"`
	Hb           float64 `json:"hb"`
}

// AIPrediction is the model's response for one (patient, panel) snapshot.
// It is held only for the active profile session, never persisted.
type AIPrediction struct {
	PatientID       string   `json:"patient_id"`
	HbRiskPredicted bool     `json:"hb_risk_predicted"`
	RiskStatus      string   `json:"risk_status"`
	HbTrend         string   `json:"hb_trend"`
	CurrentHb       float64  `json:"current_hb"`
	TargetHbRange   string   `json:"target_hb_range"`
	RiskProbability float64  `json:"risk_probability"`
	ConfidenceScore float64  `json:"confidence_score"`
	Recommendations []string `json:"recommendations"`
	PredictionDate  string   `json:"prediction_date"`
	ModelVersion    string   `json:"model_version"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// BuildRequest maps the latest monthly panel into the model's request schema.
// The mapping is total: a nil panel or any missing lab value falls back to the
// documented default rather than failing. trendDelta carries the most recent
// hemoglobin delta when trend data is available; nil falls back to the
// default delta. Pure, no I/O.
func BuildRequest(patientID string, inv *investigation.MonthlyInvestigation, trendDelta *float64) Request {
	if inv == nil {
		inv = &investigation.MonthlyInvestigation{}
	}
	return Request{
		PatientID:    patientID,
		Albumin:      orDefault(inv.Albumin, DefaultAlbumin),
		BUPostHD:     orDefault(inv.BU, DefaultBUPostHD),
		BUPreHD:      orDefault(inv.BU, DefaultBUPreHD),
		SCa:          orDefault(inv.SCa, DefaultSCa),
		ScrPostHD:    orDefault(inv.ScrPostHD, DefaultScrPostHD),
		ScrPreHD:     orDefault(inv.ScrPreHD, DefaultScrPreHD),
		SerumKPostHD: orDefault(inv.SerumKPostHD, DefaultSerumKPostHD),
		SerumKPreHD:  orDefault(inv.SerumKPreHD, DefaultSerumKPreHD),
		SerumNaPreHD: orDefault(inv.SerumNaPreHD, DefaultSerumNaPreHD),
		UA:           orDefault(inv.UA, DefaultUA),
		HbDiff:       orDefault(trendDelta, DefaultHbDiff),
		Hb:           orDefault(inv.Hb, DefaultHb),
	}
}
