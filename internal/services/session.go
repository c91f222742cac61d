package services

import (
	"sync"
	"time"
)

// A session untouched this long belongs to an abandoned context. Every
// observable edit autosaves a draft first, so evicting it loses nothing
// a re-attach cannot rehydrate.
const sessionIdleTTL = 6 * time.Hour

// Session is one live editing context. Access to its form goes through
// WithForm, giving the single-writer model per (user, date, mode) key.
type Session struct {
	mu     sync.Mutex
	key    string
	userID uint
	day    time.Time
	mode   string
	form   *FormState
	token  *CancelToken

	// touched is guarded by the manager's mutex, not the session's.
	touched time.Time
}

func (session *Session) Key() string {
	return session.key
}

func (session *Session) Day() time.Time {
	return session.day
}

func (session *Session) Mode() string {
	return session.mode
}

func (session *Session) WithForm(fn func(form *FormState) error) error {
	session.mu.Lock()
	defer session.mu.Unlock()
	return fn(session.form)
}

// SessionManager keeps the live sessions and enforces the context-switch
// rule: attaching a user to a new (date, mode) context cancels the
// in-flight hydration of that user's previous context. An in-flight save
// is never cancelled; only pending hydration reads are invalidated.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	active   map[uint]*Session
	hydrator *HydrationResolver
	now      func() time.Time
}

func NewSessionManager(hydrator *HydrationResolver) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		active:   make(map[uint]*Session),
		hydrator: hydrator,
		now:      time.Now,
	}
}

// Attach returns the hydrated session for the key, running a hydration
// pass when the context is entered for the first time (or re-entered
// after release). Each attach also evicts idle sessions, so abandoned
// contexts never accumulate in the registry.
func (manager *SessionManager) Attach(userID uint, day time.Time, mode string, location *time.Location) (*Session, error) {
	key := DraftKey(userID, day, mode, location)

	manager.mu.Lock()
	now := manager.now()
	manager.evictIdleLocked(now)
	if session, ok := manager.sessions[key]; ok {
		session.touched = now
		manager.active[userID] = session
		manager.mu.Unlock()
		return session, nil
	}

	session := &Session{
		key:     key,
		userID:  userID,
		day:     DateAtLocation(day, location),
		mode:    mode,
		form:    NewFormState(mode),
		token:   NewCancelToken(),
		touched: now,
	}
	if previous, ok := manager.active[userID]; ok && previous.key != key {
		previous.token.Cancel()
	}
	manager.sessions[key] = session
	manager.active[userID] = session
	manager.mu.Unlock()

	err := session.WithForm(func(form *FormState) error {
		return manager.hydrator.Hydrate(session.token, form, userID, session.day, mode, location)
	})
	if err != nil {
		manager.Release(session)
		return nil, err
	}
	return session, nil
}

// Lookup returns an already-attached session without hydrating.
func (manager *SessionManager) Lookup(userID uint, day time.Time, mode string, location *time.Location) (*Session, bool) {
	key := DraftKey(userID, day, mode, location)
	manager.mu.Lock()
	defer manager.mu.Unlock()
	session, ok := manager.sessions[key]
	if ok {
		session.touched = manager.now()
	}
	return session, ok
}

func (manager *SessionManager) evictIdleLocked(now time.Time) {
	cutoff := now.Add(-sessionIdleTTL)
	for key, session := range manager.sessions {
		if session.touched.After(cutoff) {
			continue
		}
		delete(manager.sessions, key)
		if current, ok := manager.active[session.userID]; ok && current == session {
			delete(manager.active, session.userID)
		}
	}
}

func (manager *SessionManager) Release(session *Session) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if current, ok := manager.sessions[session.key]; ok && current == session {
		delete(manager.sessions, session.key)
	}
	if current, ok := manager.active[session.userID]; ok && current == session {
		delete(manager.active, session.userID)
	}
}
