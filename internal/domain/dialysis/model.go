package dialysis

import (
	"sort"
	"time"
)

// StatusCompleted is the terminal session status reported by the backend.
const StatusCompleted = "COMPLETED"

// StaffRef is an embedded name reference for the doctor or nurse on a session.
type StaffRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Observations holds the weight and vital parameters captured before or after
// a session.
type Observations struct {
	Weight        float64 `json:"weight"`
	BloodPressure string  `json:"bloodPressure"`
	HeartRate     float64 `json:"heartRate"`
	Temperature   float64 `json:"temperature"`
}

// Parameters holds the machine settings for a session.
type Parameters struct {
	UFGoal        float64 `json:"ufGoal"`
	Duration      float64 `json:"duration"`
	BloodFlow     float64 `json:"bloodFlowRate"`
	DialysateFlow float64 `json:"dialysateFlowRate"`
}

// Session is one hemodialysis treatment record.
type Session struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"sessionId"`
	Date         time.Time     `json:"date"`
	Status       string        `json:"status"`
	Doctor       *StaffRef     `json:"doctor,omitempty"`
	Nurse        *StaffRef     `json:"nurse,omitempty"`
	PreDialysis  *Observations `json:"preDialysis,omitempty"`
	PostDialysis *Observations `json:"postDialysis,omitempty"`
	Parameters   *Parameters   `json:"dialysisParameters,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// LatestSession selects the session shown as "current": the last element of
// the backend's response, which is assumed to be in chronological order.
// Note the asymmetry with investigation.LatestInvestigation; backend ordering
// has not been confirmed, so the two selection rules are kept separate.
func LatestSession(sessions []Session) *Session {
	if len(sessions) == 0 {
		return nil
	}
	return &sessions[len(sessions)-1]
}

// WeightPoint is one chart point of the pre/post weight trend.
type WeightPoint struct {
	Date       time.Time `json:"date"`
	PreWeight  float64   `json:"preWeight,omitempty"`
	PostWeight float64   `json:"postWeight,omitempty"`
	UFGoal     float64   `json:"ufGoal,omitempty"`
}

// WeightTrend maps sessions to chart points, dropping sessions without any
// weight measurement and sorting by date ascending.
func WeightTrend(sessions []Session) []WeightPoint {
	var points []WeightPoint
	for _, s := range sessions {
		var pre, post float64
		if s.PreDialysis != nil {
			pre = s.PreDialysis.Weight
		}
		if s.PostDialysis != nil {
			post = s.PostDialysis.Weight
		}
		if pre == 0 && post == 0 {
			continue
		}
		p := WeightPoint{Date: s.Date, PreWeight: pre, PostWeight: post}
		if s.Parameters != nil {
			p.UFGoal = s.Parameters.UFGoal
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}
