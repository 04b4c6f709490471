package investigation

import "time"

// StaffRef is an embedded name reference on the laboratory block.
type StaffRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LaboratoryInfo records who handled the sample and how it was tested.
type LaboratoryInfo struct {
	RequestedBy   *StaffRef `json:"requestedBy,omitempty"`
	PerformedBy   *StaffRef `json:"performedBy,omitempty"`
	ReportedBy    *StaffRef `json:"reportedBy,omitempty"`
	TestingMethod string    `json:"testingMethod,omitempty"`
}

// MonthlyInvestigation is one monthly lab panel. Lab values are pointers
// because panels are frequently partial; a nil value means the test was not
// performed that month.
type MonthlyInvestigation struct {
	InvestigationID string          `json:"investigationId"`
	Date            time.Time       `json:"date"`
	ScrPreHD        *float64        `json:"scrPreHD,omitempty"`
	ScrPostHD       *float64        `json:"scrPostHD,omitempty"`
	BU              *float64        `json:"bu,omitempty"`
	Hb              *float64        `json:"hb,omitempty"`
	SerumNaPreHD    *float64        `json:"serumNaPreHD,omitempty"`
	SerumNaPostHD   *float64        `json:"serumNaPostHD,omitempty"`
	SerumKPreHD     *float64        `json:"serumKPreHD,omitempty"`
	SerumKPostHD    *float64        `json:"serumKPostHD,omitempty"`
	SCa             *float64        `json:"sCa,omitempty"`
	SPhosphate      *float64        `json:"sPhosphate,omitempty"`
	PTH             *float64        `json:"pth,omitempty"`
	VitD            *float64        `json:"vitD,omitempty"`
	Albumin         *float64        `json:"albumin,omitempty"`
	UA              *float64        `json:"ua,omitempty"`
	SerumIron       *float64        `json:"serumIron,omitempty"`
	SerumFerritin   *float64        `json:"serumFerritin,omitempty"`
	HbA1C           *float64        `json:"hbA1C,omitempty"`
	HCO             *float64        `json:"hco,omitempty"`
	AL              *float64        `json:"al,omitempty"`
	LaboratoryInfo  *LaboratoryInfo `json:"laboratoryInfo,omitempty"`
	Status          string          `json:"status,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// LatestInvestigation selects the panel treated as "current": the first
// element of the backend's response. This intentionally differs from
// dialysis.LatestSession (last element); the backend's sort order has not
// been confirmed, so the two call-site rules are preserved as-is.
func LatestInvestigation(investigations []MonthlyInvestigation) *MonthlyInvestigation {
	if len(investigations) == 0 {
		return nil
	}
	return &investigations[0]
}
