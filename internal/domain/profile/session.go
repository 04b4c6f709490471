package profile

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/renalcare/dashboard/internal/domain/analytics"
	"github.com/renalcare/dashboard/internal/domain/decision"
	"github.com/renalcare/dashboard/internal/domain/dialysis"
	"github.com/renalcare/dashboard/internal/domain/investigation"
	"github.com/renalcare/dashboard/internal/domain/patient"
	"github.com/renalcare/dashboard/internal/domain/prediction"
	"github.com/renalcare/dashboard/internal/platform/store"
	"github.com/renalcare/dashboard/internal/platform/upstream"
)

// DataSource is the upstream surface a session needs. Implemented by
// upstream.Client; tests supply fakes.
type DataSource interface {
	FetchPatientByID(ctx context.Context, id string) (*patient.Patient, error)
	FetchDialysisSessions(ctx context.Context, patientID string) ([]dialysis.Session, error)
	FetchMonthlyInvestigations(ctx context.Context, patientID string) ([]investigation.MonthlyInvestigation, error)
	FetchHemoglobinTrend(ctx context.Context, patientID string) (*analytics.HemoglobinTrend, error)
	FetchClinicalDecisions(ctx context.Context, patientID string) ([]decision.ClinicalDecision, error)
	FetchAIPrediction(ctx context.Context, req prediction.Request) (*prediction.AIPrediction, error)
}

// Session owns the category stores for one patient's dashboard. A session is
// created fresh when the viewer switches patient, so no state leaks across
// patients.
type Session struct {
	patientID   string
	src         DataSource
	normalRange analytics.NormalRange
	log         zerolog.Logger

	mu        sync.Mutex
	activeTab Tab

	patient        *store.Store[*patient.Patient]
	sessions       *store.Store[[]dialysis.Session]
	investigations *store.Store[[]investigation.MonthlyInvestigation]
	trend          *store.Store[*analytics.HemoglobinTrend]
	prediction     *store.Store[*prediction.AIPrediction]
	decisions      *store.Store[[]decision.ClinicalDecision]
}

// NewSession creates an all-unfetched session for one patient.
func NewSession(patientID string, src DataSource, nr analytics.NormalRange, log zerolog.Logger) *Session {
	s := &Session{
		patientID:   patientID,
		src:         src,
		normalRange: nr,
		log:         log.With().Str("patient_id", patientID).Logger(),
		activeTab:   TabDialysis,
	}
	s.patient = store.New("patient", func(ctx context.Context) (*patient.Patient, error) {
		return src.FetchPatientByID(ctx, patientID)
	})
	s.sessions = store.New("dialysis sessions", func(ctx context.Context) ([]dialysis.Session, error) {
		return src.FetchDialysisSessions(ctx, patientID)
	}, store.WithClone(store.SliceClone[dialysis.Session]))
	s.investigations = store.New("investigations", func(ctx context.Context) ([]investigation.MonthlyInvestigation, error) {
		return src.FetchMonthlyInvestigations(ctx, patientID)
	}, store.WithClone(store.SliceClone[investigation.MonthlyInvestigation]))
	s.trend = store.New("hb trend", func(ctx context.Context) (*analytics.HemoglobinTrend, error) {
		t, err := src.FetchHemoglobinTrend(ctx, patientID)
		if err != nil {
			return nil, err
		}
		// Statistics are derived locally, never trusted from the wire.
		t.Recompute(nr)
		return t, nil
	})
	s.decisions = store.New("decisions", func(ctx context.Context) ([]decision.ClinicalDecision, error) {
		return src.FetchClinicalDecisions(ctx, patientID)
	}, store.WithClone(store.SliceClone[decision.ClinicalDecision]))
	s.prediction = store.New("prediction", s.fetchPrediction)
	return s
}

// PatientID returns the patient this session belongs to.
func (s *Session) PatientID() string { return s.patientID }

// ActiveTab returns the currently selected tab.
func (s *Session) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// EnsurePatient loads the patient record itself.
func (s *Session) EnsurePatient(ctx context.Context) (*patient.Patient, error) {
	return s.patient.EnsureLoaded(ctx)
}

// SelectTab records the active tab and triggers the loads that tab needs.
// Re-selecting an already loaded tab is a pure cache hit. The returned error
// is the triggered load's failure; it is also retained in the category store
// and reported by Snapshot.
func (s *Session) SelectTab(ctx context.Context, tab Tab) error {
	s.mu.Lock()
	s.activeTab = tab
	s.mu.Unlock()

	switch tab {
	case TabDialysis:
		_, err := s.sessions.EnsureLoaded(ctx)
		return err
	case TabInvestigations:
		_, err := s.investigations.EnsureLoaded(ctx)
		return err
	case TabTrend:
		_, err := s.trend.EnsureLoaded(ctx)
		return err
	case TabDecisions:
		_, err := s.decisions.EnsureLoaded(ctx)
		return err
	case TabAIPredictions:
		_, err := s.prediction.EnsureLoaded(ctx)
		return err
	}
	return nil
}

// fetchPrediction is the prediction store's fetch function. The prediction
// depends on the monthly investigations, which are awaited first; with zero
// panels the model endpoint is never called.
func (s *Session) fetchPrediction(ctx context.Context) (*prediction.AIPrediction, error) {
	invs, err := s.investigations.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, upstream.ErrNoInvestigationData
	}
	req := prediction.BuildRequest(s.patientID, investigation.LatestInvestigation(invs), s.trendDelta())
	s.log.Debug().Float64("hb", req.Hb).Msg("requesting hb risk prediction")
	return s.src.FetchAIPrediction(ctx, req)
}

// trendDelta returns the hemoglobin change between the two chronologically
// most recent trend points when trend data happens to be loaded, or nil to use
// the request builder's default. It never triggers a trend fetch.
func (s *Session) trendDelta() *float64 {
	snap := s.trend.Snapshot()
	if !snap.IsFetched || snap.Err != nil || snap.Data == nil {
		return nil
	}
	usable := make([]analytics.TrendPoint, 0, len(snap.Data.TrendData))
	for _, p := range snap.Data.TrendData {
		if p.Hb == nil || math.IsNaN(*p.Hb) {
			continue
		}
		usable = append(usable, p)
	}
	if len(usable) < 2 {
		return nil
	}
	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Date.Before(usable[j].Date) })
	delta := *usable[len(usable)-1].Hb - *usable[len(usable)-2].Hb
	return &delta
}

// RefreshPrediction force-reloads the investigations and then regenerates the
// prediction, regardless of what is cached. A prior prediction error does not
// suppress the refresh.
func (s *Session) RefreshPrediction(ctx context.Context) error {
	invs, err := s.investigations.ForceReload(ctx)
	if err != nil {
		s.prediction.SetResult(nil, err)
		return err
	}
	if len(invs) == 0 {
		s.prediction.SetResult(nil, upstream.ErrNoInvestigationData)
		return upstream.ErrNoInvestigationData
	}
	_, err = s.prediction.ForceReload(ctx)
	return err
}

// Reset returns every category store to its unfetched state.
func (s *Session) Reset() {
	s.patient.Reset()
	s.sessions.Reset()
	s.investigations.Reset()
	s.trend.Reset()
	s.prediction.Reset()
	s.decisions.Reset()
}
