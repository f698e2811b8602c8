package session

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/transcript"

	"go.uber.org/zap"
)

// Status of a session. Completed and expired sessions are removed from
// the store, so stored sessions are normally active.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Session is one candidate's in-progress interview.
type Session struct {
	ID            string                 `json:"id"`
	Row           int                    `json:"row"`
	CandidateData string                 `json:"candidate_data"`
	VacancyData   string                 `json:"vacancy_data"`
	Transcript    *transcript.Transcript `json:"transcript"`
	LastActivity  time.Time              `json:"last_activity"`
	Status        Status                 `json:"status"`
}

// Store keeps sessions keyed by id behind a single coarse lock and
// persists the whole map to a JSON file on every mutation. Persistence
// failures are logged only; the in-memory state stays authoritative.
// A Store with an empty path never touches disk.
type Store struct {
	mu       sync.Mutex
	path     string
	sessions map[string]*Session
	logger   *zap.Logger
}

// OpenStore loads the session map from path when the file exists. A
// corrupt or missing file yields an empty store.
func OpenStore(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:     path,
		sessions: make(map[string]*Session),
		logger:   logger,
	}

	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("loading session store", zap.String("path", path), zap.Error(err))
		}
		return s
	}

	if err := json.Unmarshal(data, &s.sessions); err != nil {
		logger.Error("parsing session store, starting empty", zap.String("path", path), zap.Error(err))
		s.sessions = make(map[string]*Session)
	}

	return s
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	s.persist()
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	s.persist()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ExpireIdle removes every session idle for longer than threshold and
// returns the number of removed sessions.
func (s *Store) ExpireIdle(threshold time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > threshold {
			delete(s.sessions, id)
			expired++
		}
	}

	if expired > 0 {
		s.persist()
	}

	return expired
}

// persist writes the map to disk. Callers must hold the lock.
func (s *Store) persist() {
	if s.path == "" {
		return
	}

	data, err := json.Marshal(s.sessions)
	if err != nil {
		s.logger.Error("encoding session store", zap.Error(err))
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("saving session store", zap.String("path", s.path), zap.Error(err))
	}
}
