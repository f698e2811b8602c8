package session

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// UsedCodes is the persisted set of consumed access codes. A code in
// this set can never open a session again.
type UsedCodes struct {
	mu     sync.Mutex
	path   string
	codes  map[string]struct{}
	logger *zap.Logger
}

// OpenUsedCodes loads the set from path; a missing or corrupt file
// yields an empty set. An empty path keeps the set memory-only.
func OpenUsedCodes(path string, logger *zap.Logger) *UsedCodes {
	u := &UsedCodes{
		path:   path,
		codes:  make(map[string]struct{}),
		logger: logger,
	}

	if path == "" {
		return u
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("loading used codes", zap.String("path", path), zap.Error(err))
		}
		return u
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Error("parsing used codes, starting empty", zap.String("path", path), zap.Error(err))
		return u
	}

	for _, code := range list {
		u.codes[code] = struct{}{}
	}

	return u
}

// Consume marks the code as used. It returns false when the code was
// consumed before; the check and the add happen under one lock.
func (u *UsedCodes) Consume(code string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, used := u.codes[code]; used {
		return false
	}

	u.codes[code] = struct{}{}
	u.persist()
	return true
}

func (u *UsedCodes) IsUsed(code string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, used := u.codes[code]
	return used
}

// Reset clears the set and removes the backing file.
func (u *UsedCodes) Reset() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.codes = make(map[string]struct{})

	if u.path == "" {
		return nil
	}
	if err := os.Remove(u.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// persist writes the set to disk. Callers must hold the lock.
func (u *UsedCodes) persist() {
	if u.path == "" {
		return
	}

	list := make([]string, 0, len(u.codes))
	for code := range u.codes {
		list = append(list, code)
	}

	data, err := json.Marshal(list)
	if err != nil {
		u.logger.Error("encoding used codes", zap.Error(err))
		return
	}

	if err := os.WriteFile(u.path, data, 0o644); err != nil {
		u.logger.Error("saving used codes", zap.String("path", u.path), zap.Error(err))
	}
}
