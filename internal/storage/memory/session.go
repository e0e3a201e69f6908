package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

type InMemorySessionManager struct {
	mu       sync.RWMutex
	sessions map[string]models.RefreshSession
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewSessionRepository(log *zap.SugaredLogger) *InMemorySessionManager {
	return &InMemorySessionManager{
		sessions: make(map[string]models.RefreshSession),
		log:      log,
		now:      time.Now,
	}
}

func (m *InMemorySessionManager) CreateSession(_ context.Context, session models.RefreshSession, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl > 0 && session.ExpiresAt.IsZero() {
		session.ExpiresAt = m.now().Add(ttl)
	}
	m.sessions[session.Selector] = session
	m.log.Debugw("Session created", "selector", session.Selector, "username", session.Username, "ttl", ttl)

	return nil
}

func (m *InMemorySessionManager) GetSession(_ context.Context, selector string) (*models.RefreshSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[selector]
	if !ok {
		m.log.Debugw("Session not found", "selector", selector)
		return nil, storage.ErrSessionNotFound
	}
	if !session.ExpiresAt.IsZero() && !m.now().Before(session.ExpiresAt) {
		m.log.Debugw("Session expired", "selector", selector)
		return nil, storage.ErrSessionNotFound
	}

	return &session, nil
}

func (m *InMemorySessionManager) DeleteSession(_ context.Context, selector string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, selector)

	return nil
}

func (m *InMemorySessionManager) DeleteAllUserSessions(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.Username == username {
			delete(m.sessions, id)
		}
	}

	return nil
}
