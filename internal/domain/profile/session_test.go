package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/renalcare/dashboard/internal/domain/analytics"
	"github.com/renalcare/dashboard/internal/domain/decision"
	"github.com/renalcare/dashboard/internal/domain/dialysis"
	"github.com/renalcare/dashboard/internal/domain/investigation"
	"github.com/renalcare/dashboard/internal/domain/patient"
	"github.com/renalcare/dashboard/internal/domain/prediction"
	"github.com/renalcare/dashboard/internal/platform/upstream"
)

// fakeSource records the order of upstream calls and serves canned data.
type fakeSource struct {
	mu    sync.Mutex
	calls []string

	patient        *patient.Patient
	sessions       []dialysis.Session
	investigations []investigation.MonthlyInvestigation
	trend          *analytics.HemoglobinTrend
	decisions      []decision.ClinicalDecision
	prediction     *prediction.AIPrediction

	investigationsErr error
	predictionErr     error

	lastPredictionReq prediction.Request
}

func (f *fakeSource) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeSource) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) FetchPatientByID(ctx context.Context, id string) (*patient.Patient, error) {
	f.record("patient")
	if f.patient == nil {
		return nil, &upstream.NotFoundError{Resource: "patient", ID: id}
	}
	return f.patient, nil
}

func (f *fakeSource) FetchDialysisSessions(ctx context.Context, patientID string) ([]dialysis.Session, error) {
	f.record("sessions")
	return f.sessions, nil
}

func (f *fakeSource) FetchMonthlyInvestigations(ctx context.Context, patientID string) ([]investigation.MonthlyInvestigation, error) {
	f.record("investigations")
	return f.investigations, f.investigationsErr
}

func (f *fakeSource) FetchHemoglobinTrend(ctx context.Context, patientID string) (*analytics.HemoglobinTrend, error) {
	f.record("trend")
	return f.trend, nil
}

func (f *fakeSource) FetchClinicalDecisions(ctx context.Context, patientID string) ([]decision.ClinicalDecision, error) {
	f.record("decisions")
	return f.decisions, nil
}

func (f *fakeSource) FetchAIPrediction(ctx context.Context, req prediction.Request) (*prediction.AIPrediction, error) {
	f.record("prediction")
	f.mu.Lock()
	f.lastPredictionReq = req
	f.mu.Unlock()
	if f.predictionErr != nil {
		return nil, f.predictionErr
	}
	return f.prediction, nil
}

var testRange = analytics.NormalRange{Min: 12, Max: 16}

func newTestSession(src *fakeSource) *Session {
	return NewSession("P-001", src, testRange, zerolog.Nop())
}

func hb(v float64) *float64 { return &v }

func TestSelectTabLoadsItsCategory(t *testing.T) {
	src := &fakeSource{sessions: []dialysis.Session{{SessionID: "S-1"}}}
	sess := newTestSession(src)

	if err := sess.SelectTab(context.Background(), TabDialysis); err != nil {
		t.Fatalf("SelectTab: %v", err)
	}
	if sess.ActiveTab() != TabDialysis {
		t.Errorf("active tab = %q", sess.ActiveTab())
	}
	got := src.callLog()
	if len(got) != 1 || got[0] != "sessions" {
		t.Errorf("calls = %v, want [sessions]", got)
	}

	// Re-selecting is a pure cache hit.
	if err := sess.SelectTab(context.Background(), TabDialysis); err != nil {
		t.Fatal(err)
	}
	if got := src.callLog(); len(got) != 1 {
		t.Errorf("calls after re-select = %v", got)
	}
}

func TestAIPredictionsLoadsInvestigationsFirst(t *testing.T) {
	src := &fakeSource{
		investigations: []investigation.MonthlyInvestigation{{InvestigationID: "I-1", Hb: hb(10.2)}},
		prediction:     &prediction.AIPrediction{RiskProbability: 0.7},
	}
	sess := newTestSession(src)

	if err := sess.SelectTab(context.Background(), TabAIPredictions); err != nil {
		t.Fatalf("SelectTab: %v", err)
	}
	got := src.callLog()
	if len(got) != 2 || got[0] != "investigations" || got[1] != "prediction" {
		t.Fatalf("calls = %v, want investigations before prediction", got)
	}

	// A cached prediction suppresses any further fetches.
	if err := sess.SelectTab(context.Background(), TabAIPredictions); err != nil {
		t.Fatal(err)
	}
	if got := src.callLog(); len(got) != 2 {
		t.Errorf("calls after cached re-select = %v", got)
	}
}

func TestAIPredictionsZeroInvestigations(t *testing.T) {
	src := &fakeSource{}
	sess := newTestSession(src)

	err := sess.SelectTab(context.Background(), TabAIPredictions)
	if !errors.Is(err, upstream.ErrNoInvestigationData) {
		t.Fatalf("err = %v, want ErrNoInvestigationData", err)
	}
	for _, call := range src.callLog() {
		if call == "prediction" {
			t.Fatal("model endpoint must not be called with zero panels")
		}
	}

	// The recorded error suppresses a retry on re-select.
	_ = sess.SelectTab(context.Background(), TabAIPredictions)
	got := src.callLog()
	if len(got) != 1 || got[0] != "investigations" {
		t.Errorf("calls = %v, want a single investigations fetch", got)
	}
}

func TestPriorPredictionErrorSuppressesRefetch(t *testing.T) {
	src := &fakeSource{
		investigations: []investigation.MonthlyInvestigation{{InvestigationID: "I-1"}},
		predictionErr:  errors.New("model unavailable"),
	}
	sess := newTestSession(src)

	if err := sess.SelectTab(context.Background(), TabAIPredictions); err == nil {
		t.Fatal("want model failure")
	}
	_ = sess.SelectTab(context.Background(), TabAIPredictions)

	count := 0
	for _, call := range src.callLog() {
		if call == "prediction" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("model called %d times, want 1", count)
	}
}

func TestRefreshPredictionForcesBothReloads(t *testing.T) {
	src := &fakeSource{
		investigations: []investigation.MonthlyInvestigation{{InvestigationID: "I-1", Hb: hb(9.4)}},
		prediction:     &prediction.AIPrediction{RiskProbability: 0.5},
	}
	sess := newTestSession(src)

	if err := sess.SelectTab(context.Background(), TabAIPredictions); err != nil {
		t.Fatal(err)
	}
	if err := sess.RefreshPrediction(context.Background()); err != nil {
		t.Fatalf("RefreshPrediction: %v", err)
	}

	var invs, preds int
	for _, call := range src.callLog() {
		switch call {
		case "investigations":
			invs++
		case "prediction":
			preds++
		}
	}
	if invs != 2 || preds != 2 {
		t.Errorf("investigations=%d predictions=%d, want 2 and 2", invs, preds)
	}
}

func TestRefreshPredictionAfterNoDataError(t *testing.T) {
	src := &fakeSource{}
	sess := newTestSession(src)

	_ = sess.SelectTab(context.Background(), TabAIPredictions)

	// New panels arrive; refresh must retry despite the recorded error.
	src.mu.Lock()
	src.investigations = []investigation.MonthlyInvestigation{{InvestigationID: "I-2", Hb: hb(10.0)}}
	src.prediction = &prediction.AIPrediction{RiskProbability: 0.3}
	src.mu.Unlock()

	if err := sess.RefreshPrediction(context.Background()); err != nil {
		t.Fatalf("RefreshPrediction: %v", err)
	}
	snap := sess.Snapshot(RoleDoctor)
	if snap.Prediction.Data == nil || snap.Prediction.RiskTier != analytics.RiskVeryLow {
		t.Errorf("prediction view = %+v", snap.Prediction)
	}
}

func TestTrendStatisticsDerivedLocally(t *testing.T) {
	src := &fakeSource{
		trend: &analytics.HemoglobinTrend{
			TrendData: []analytics.TrendPoint{
				{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Hb: hb(9.0)},
				{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Hb: hb(10.5)},
			},
			// Bogus upstream statistics that must be overwritten.
			Statistics: analytics.Statistics{Average: 99},
		},
	}
	sess := newTestSession(src)

	if err := sess.SelectTab(context.Background(), TabTrend); err != nil {
		t.Fatal(err)
	}
	snap := sess.Snapshot(RoleDoctor)
	stats := snap.Trend.Data.Statistics
	if stats.Average != 9.75 || stats.Trend != analytics.TrendIncreasing {
		t.Errorf("statistics = %+v", stats)
	}
	if snap.Trend.Data.TrendData[0].Status != analytics.StatusLow {
		t.Errorf("point status = %q", snap.Trend.Data.TrendData[0].Status)
	}
}

func TestPredictionUsesChronologicalTrendDelta(t *testing.T) {
	// The trend series arrives newest-first; the delta must compare the two
	// points that are most recent in time, not the last two on the wire.
	src := &fakeSource{
		investigations: []investigation.MonthlyInvestigation{{InvestigationID: "I-1", Hb: hb(10.0)}},
		prediction:     &prediction.AIPrediction{RiskProbability: 0.2},
		trend: &analytics.HemoglobinTrend{
			TrendData: []analytics.TrendPoint{
				{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Hb: hb(12.5)},
				{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Hb: hb(9.0)},
				{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Hb: hb(10.0)},
			},
		},
	}
	sess := newTestSession(src)

	if err := sess.SelectTab(context.Background(), TabTrend); err != nil {
		t.Fatal(err)
	}
	if err := sess.SelectTab(context.Background(), TabAIPredictions); err != nil {
		t.Fatal(err)
	}

	src.mu.Lock()
	delta := src.lastPredictionReq.HbDiff
	src.mu.Unlock()
	if delta != 2.5 {
		t.Errorf("hb_diff = %v, want 2.5 (February to March)", delta)
	}
}

func TestSnapshotNurseOmitsDoctorCategories(t *testing.T) {
	src := &fakeSource{}
	sess := newTestSession(src)
	snap := sess.Snapshot(RoleNurse)

	if len(snap.Tabs) != 3 {
		t.Errorf("nurse tabs = %v", snap.Tabs)
	}
	for _, tab := range snap.Tabs {
		if tab == TabAIPredictions || tab == TabDecisions {
			t.Errorf("nurse view exposes %q", tab)
		}
	}
}

func TestManagerSwitchingPatientStartsUnfetched(t *testing.T) {
	src := &fakeSource{sessions: []dialysis.Session{{SessionID: "S-1"}}}
	m := NewManager(src, testRange, time.Hour, zerolog.Nop())

	first := m.Session("P-001")
	if err := first.SelectTab(context.Background(), TabDialysis); err != nil {
		t.Fatal(err)
	}
	if !first.Snapshot(RoleDoctor).Dialysis.IsFetched {
		t.Fatal("first session should be fetched")
	}

	second := m.Session("P-002")
	if second.Snapshot(RoleDoctor).Dialysis.IsFetched {
		t.Error("new patient's stores must start unfetched")
	}

	// Returning to the first patient within the TTL reuses its session.
	if m.Session("P-001") != first {
		t.Error("session for P-001 should be reused")
	}
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	src := &fakeSource{}
	m := NewManager(src, testRange, 30*time.Minute, zerolog.Nop())

	current := time.Now()
	m.now = func() time.Time { return current }

	first := m.Session("P-001")
	current = current.Add(31 * time.Minute)

	if m.Session("P-001") == first {
		t.Error("idle session past TTL should be replaced")
	}
	if m.Len() != 1 {
		t.Errorf("live sessions = %d, want 1", m.Len())
	}
}

func TestSessionResetClearsAllStores(t *testing.T) {
	src := &fakeSource{
		patient:  &patient.Patient{PatientID: "P-001", Name: "Kamal"},
		sessions: []dialysis.Session{{SessionID: "S-1"}},
	}
	sess := newTestSession(src)
	if _, err := sess.EnsurePatient(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := sess.SelectTab(context.Background(), TabDialysis); err != nil {
		t.Fatal(err)
	}

	sess.Reset()
	snap := sess.Snapshot(RoleDoctor)
	if snap.Patient.IsFetched || snap.Dialysis.IsFetched {
		t.Errorf("stores still fetched after reset: %+v", snap)
	}
}
