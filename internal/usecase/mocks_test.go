package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"codegate/internal/domain"
	"codegate/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memCodeRepo is a small in-memory implementation used by unit tests. Its
// Activate mirrors the store's conditional-update contract: the is_used
// check and the write happen under one lock.
type memCodeRepo struct {
	mu          sync.Mutex
	byCode      map[string]*model.Code
	findErr     error // used by tests to simulate store failures
	activateErr error
	clearErr    error
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{byCode: make(map[string]*model.Code)}
}

func (m *memCodeRepo) Save(ctx context.Context, c *model.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byCode[c.Code] = &cp
	return nil
}

func (m *memCodeRepo) FindByCode(ctx context.Context, code string) (*model.Code, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) Activate(ctx context.Context, code, sessionID string, at time.Time) (bool, error) {
	if m.activateErr != nil {
		return false, m.activateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byCode[code]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	c.SessionID = &sessionID
	c.NeedsRefresh = false
	c.LastUsedAt = &at
	return true, nil
}

func (m *memCodeRepo) FindActiveSession(ctx context.Context, userID, sessionID string) (*model.Code, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byCode {
		if c.IsUsed && c.UserID == userID && c.SessionID != nil && *c.SessionID == sessionID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCodeRepo) ClearSession(ctx context.Context, userID, sessionID string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byCode {
		if c.UserID == userID && c.SessionID != nil && *c.SessionID == sessionID {
			c.IsUsed = false
			c.SessionID = nil
		}
	}
	return nil
}

func (m *memCodeRepo) ClearRefresh(ctx context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byCode {
		if c.IsUsed && c.UserID == userID && c.SessionID != nil && *c.SessionID == sessionID {
			c.NeedsRefresh = false
		}
	}
	return nil
}

// memLogRepo collects access log writes.
type memLogRepo struct {
	mu        sync.Mutex
	entries   []*model.AccessLog
	logouts   map[string]time.Time
	recordErr error
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{logouts: make(map[string]time.Time)}
}

func (m *memLogRepo) Record(ctx context.Context, e *model.AccessLog) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memLogRepo) MarkLogout(ctx context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logouts[sessionID]; !ok {
		m.logouts[sessionID] = at
	}
	return nil
}
