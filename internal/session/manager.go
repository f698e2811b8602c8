package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/transcript"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultIdleThreshold matches the source system: sessions idle for
	// an hour are swept.
	DefaultIdleThreshold = time.Hour
)

// Manager owns session admission, lifecycle and expiry.
type Manager struct {
	store  *Store
	codes  *UsedCodes
	table  sheets.RowStore
	logger *zap.Logger

	IdleThreshold time.Duration

	now func() time.Time
}

func NewManager(store *Store, codes *UsedCodes, table sheets.RowStore, logger *zap.Logger) *Manager {
	return &Manager{
		store:         store,
		codes:         codes,
		table:         table,
		logger:        logger,
		IdleThreshold: DefaultIdleThreshold,
		now:           time.Now,
	}
}

// ValidateCode checks the one-time access code against the candidate
// table. On success the code is marked used before the row handle is
// returned; no code is ever consumable twice.
func (m *Manager) ValidateCode(code string) (int, bool) {
	code = strings.TrimSpace(code)
	if code == "" || m.codes.IsUsed(code) {
		return 0, false
	}

	row, err := m.table.FindRowByColumn(sheets.ColCode, code)
	if err != nil {
		if err != sheets.ErrRowNotFound {
			m.logger.Error("looking up access code", zap.Error(err))
		}
		return 0, false
	}

	if !m.codes.Consume(code) {
		return 0, false
	}

	return row, true
}

// SeedFunc builds the opening transcript from the vacancy and candidate
// texts.
type SeedFunc func(vacancy, candidate string) *transcript.Transcript

// CreateSession builds a session for the given row, seeds its
// transcript, persists it and returns it. The id is a fresh random
// token.
func (m *Manager) CreateSession(row int, seed SeedFunc) (*Session, error) {
	candidate, err := m.CandidateData(row)
	if err != nil {
		return nil, fmt.Errorf("reading candidate data: %w", err)
	}

	vacancy, err := m.VacancyData(row)
	if err != nil {
		m.logger.Warn("reading vacancy data", zap.Int("row", row), zap.Error(err))
	}

	sess := &Session{
		ID:            uuid.NewString(),
		Row:           row,
		CandidateData: candidate,
		VacancyData:   vacancy,
		Transcript:    seed(vacancy, candidate),
		LastActivity:  m.now(),
		Status:        StatusActive,
	}

	m.store.Put(sess)

	m.logger.Info("session created", zap.String("session_id", sess.ID), zap.Int("row", row))

	return sess, nil
}

// CandidateData joins every cell of the row except the vacancy column
// into one resume text blob.
func (m *Manager) CandidateData(row int) (string, error) {
	values, err := m.table.RowValues(row)
	if err != nil {
		return "", err
	}

	headers, err := m.table.Headers()
	if err != nil {
		return "", err
	}

	vacancyIdx := -1
	for i, name := range headers {
		if name == sheets.ColVacancyText {
			vacancyIdx = i
			break
		}
	}

	parts := make([]string, 0, len(values))
	for i, cell := range values {
		if i == vacancyIdx || cell == "" {
			continue
		}
		parts = append(parts, cell)
	}

	return strings.Join(parts, " "), nil
}

// VacancyData returns the vacancy description cell of the row.
func (m *Manager) VacancyData(row int) (string, error) {
	return m.table.Cell(row, sheets.ColVacancyText)
}

func (m *Manager) Get(id string) (*Session, bool) {
	return m.store.Get(id)
}

// Touch updates the session's activity timestamp and persists it.
func (m *Manager) Touch(sess *Session) {
	sess.LastActivity = m.now()
	m.store.Put(sess)
}

// Save persists the session after a transcript mutation.
func (m *Manager) Save(sess *Session) {
	m.store.Put(sess)
}

// Destroy removes a finished session from the store.
func (m *Manager) Destroy(id string) {
	m.store.Delete(id)
	m.logger.Info("session destroyed", zap.String("session_id", id))
}

// ExpireIdle sweeps sessions idle beyond the threshold. It is invoked
// opportunistically on request entry and on a fixed cadence by the
// server scheduler.
func (m *Manager) ExpireIdle() int {
	expired := m.store.ExpireIdle(m.IdleThreshold, m.now())
	if expired > 0 {
		m.logger.Info("expired idle sessions", zap.Int("count", expired))
	}
	return expired
}

// ResetCodes clears the used-code set (administrative operation).
func (m *Manager) ResetCodes() error {
	return m.codes.Reset()
}
