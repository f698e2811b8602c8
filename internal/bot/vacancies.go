package bot

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Vacancy is one open position the bot offers to candidates.
type Vacancy struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// VacancyStore keeps vacancies in a JSON file. Every mutation is written
// back immediately; write failures are logged and the in-memory state
// stays authoritative.
type VacancyStore struct {
	mu     sync.Mutex
	path   string
	items  map[string]Vacancy
	logger *zap.Logger
}

// OpenVacancyStore loads the store from path. A missing or unreadable
// file starts the store empty; an empty path keeps it memory-only.
func OpenVacancyStore(path string, logger *zap.Logger) *VacancyStore {
	s := &VacancyStore{path: path, items: make(map[string]Vacancy), logger: logger}

	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reading vacancy store", zap.String("path", path), zap.Error(err))
		}
		return s
	}

	if err := json.Unmarshal(data, &s.items); err != nil {
		logger.Warn("vacancy store is corrupt, starting empty", zap.String("path", path), zap.Error(err))
		s.items = make(map[string]Vacancy)
	}

	return s
}

func (s *VacancyStore) Add(title, text string) Vacancy {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := Vacancy{ID: uuid.NewString()[:8], Title: title, Text: text}
	s.items[v.ID] = v
	s.persist()
	return v
}

func (s *VacancyStore) Get(id string) (Vacancy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[id]
	return v, ok
}

func (s *VacancyStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	s.persist()
	return true
}

// List returns all vacancies ordered by title.
func (s *VacancyStore) List() []Vacancy {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Vacancy, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (s *VacancyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *VacancyStore) persist() {
	if s.path == "" {
		return
	}

	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		s.logger.Error("encoding vacancy store", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("writing vacancy store", zap.String("path", s.path), zap.Error(err))
	}
}
