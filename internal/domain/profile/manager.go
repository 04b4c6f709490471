package profile

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/renalcare/dashboard/internal/domain/analytics"
)

// Manager hands out profile sessions keyed by patient id. Each patient gets
// its own session with its own stores, so switching patients always starts
// from an unfetched state. Idle sessions are evicted after the TTL.
type Manager struct {
	src         DataSource
	normalRange analytics.NormalRange
	ttl         time.Duration
	log         zerolog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*managedSession
}

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// NewManager creates a Manager with the given idle TTL.
func NewManager(src DataSource, nr analytics.NormalRange, ttl time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		src:         src,
		normalRange: nr,
		ttl:         ttl,
		log:         log,
		now:         time.Now,
		sessions:    make(map[string]*managedSession),
	}
}

// Session returns the live session for a patient, creating one if none
// exists or the previous one has expired. Expired sessions for other
// patients are swept on the same pass.
func (m *Manager) Session(patientID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, ms := range m.sessions {
		if now.Sub(ms.lastUsed) > m.ttl {
			delete(m.sessions, id)
		}
	}

	ms, ok := m.sessions[patientID]
	if !ok {
		ms = &managedSession{
			session: NewSession(patientID, m.src, m.normalRange, m.log),
		}
		m.sessions[patientID] = ms
		m.log.Debug().Str("patient_id", patientID).Msg("profile session created")
	}
	ms.lastUsed = now
	return ms.session
}

// Evict drops a patient's session immediately. The next access starts fresh.
func (m *Manager) Evict(patientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, patientID)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
