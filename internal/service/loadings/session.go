package loadings

import (
	"sync"
	"time"

	"github.com/mamadbah2/fishledger/internal/domain/pricing"
)

// EditSession is a line in the EDITING state.
type EditSession struct {
	mu       sync.Mutex
	recordID string
	lineID   string
	version  int64
	edit     *pricing.LineEdit
	started  time.Time
}

// SessionManager keeps open line edits, one per record line.
type SessionManager struct {
	sessions map[string]*EditSession
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*EditSession),
	}
}

func sessionKey(recordID, lineID string) string {
	return recordID + "/" + lineID
}

// GetSession retrieves the open edit of a line.
func (sm *SessionManager) GetSession(recordID, lineID string) (*EditSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, exists := sm.sessions[sessionKey(recordID, lineID)]
	return session, exists
}

// UpdateSession stores the edit of a line, replacing any previous one.
func (sm *SessionManager) UpdateSession(session *EditSession) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[sessionKey(session.recordID, session.lineID)] = session
}

// ClearSession drops the edit of a line.
func (sm *SessionManager) ClearSession(recordID, lineID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sessionKey(recordID, lineID))
}

// ClearRecord drops every edit on a record.
func (sm *SessionManager) ClearRecord(recordID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for key, session := range sm.sessions {
		if session.recordID == recordID {
			delete(sm.sessions, key)
		}
	}
}
