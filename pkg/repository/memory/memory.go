package memory

import (
	"context"
	"sync"
	"time"

	"github.com/skyelectric/reglens/pkg/domain/interfaces"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// sessionData owns every entity created under one session. Counters are
// monotonic and never reused.
type sessionData struct {
	documents   map[int64]*model.Document
	clauses     map[int64]*model.Clause
	assessments map[int64]*model.Assessment
	results     map[int64]*model.AssessmentResult
	history     []*model.ChatMessage

	docCounter        int64
	clauseCounter     int64
	assessmentCounter int64
	resultCounter     int64

	lastActivity time.Time
}

func newSessionData(now time.Time) *sessionData {
	return &sessionData{
		documents:    make(map[int64]*model.Document),
		clauses:      make(map[int64]*model.Clause),
		assessments:  make(map[int64]*model.Assessment),
		results:      make(map[int64]*model.AssessmentResult),
		lastActivity: now,
	}
}

// Store is the multi-tenant in-memory record store. A single RWMutex guards
// the whole session map: counter-increment-and-insert is one atomic step per
// session, and eviction is atomic with respect to readers.
type Store struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*sessionData
	now      func() time.Time

	document   *documentRepository
	clause     *clauseRepository
	assessment *assessmentRepository
	history    *historyRepository
}

var _ interfaces.Repository = &Store{}

// Option is a functional option for Store configuration
type Option func(*Store)

// WithClock replaces the time source, used to drive TTL tests without real
// timers
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[types.SessionID]*sessionData),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.document = &documentRepository{store: s}
	s.clause = &clauseRepository{store: s}
	s.assessment = &assessmentRepository{store: s}
	s.history = &historyRepository{store: s}

	return s
}

func (s *Store) Document() interfaces.DocumentRepository {
	return s.document
}

func (s *Store) Clause() interfaces.ClauseRepository {
	return s.clause
}

func (s *Store) Assessment() interfaces.AssessmentRepository {
	return s.assessment
}

func (s *Store) History() interfaces.HistoryRepository {
	return s.history
}

// session returns the bucket for the ID, lazily creating it and refreshing
// its activity timestamp. Callers must hold the write lock.
func (s *Store) session(id types.SessionID) *sessionData {
	id = id.Normalize()
	data, exists := s.sessions[id]
	if !exists {
		data = newSessionData(s.now())
		s.sessions[id] = data
	}
	data.lastActivity = s.now()
	return data
}

// lookup returns the bucket without creating or touching it. Callers must
// hold at least the read lock.
func (s *Store) lookup(id types.SessionID) (*sessionData, bool) {
	data, exists := s.sessions[id.Normalize()]
	return data, exists
}

// Sessions returns activity info for all live sessions
func (s *Store) Sessions(ctx context.Context) ([]interfaces.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]interfaces.SessionInfo, 0, len(s.sessions))
	for id, data := range s.sessions {
		infos = append(infos, interfaces.SessionInfo{
			ID:           id,
			LastActivity: data.lastActivity,
		})
	}
	return infos, nil
}

// Purge removes a session and everything it owns as one atomic step
func (s *Store) Purge(ctx context.Context, id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id.Normalize())
	return nil
}
