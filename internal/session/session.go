package session

import (
	"strings"
	"sync"
)

type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the cookie set captured from one successful login, the order of
// the cookies is the order they were captured in.
type Session struct {
	Cookies []Cookie
}

// New copies the given cookies into a new Session so later changes to the
// slice do not leak into the session.
func New(cookies []Cookie) Session {
	copied := make([]Cookie, len(cookies))
	copy(copied, cookies)
	return Session{Cookies: copied}
}

func (s Session) Empty() bool {
	return len(s.Cookies) == 0
}

// CookieHeader renders the session as the value of a Cookie request header.
func (s Session) CookieHeader() string {
	pairs := make([]string, len(s.Cookies))
	for i, c := range s.Cookies {
		pairs[i] = c.Name + "=" + c.Value
	}
	return strings.Join(pairs, "; ")
}

// Store holds the single session used by the process. A session is either
// wholly present or absent, Set never merges with the previous session.
type Store struct {
	mutex   sync.RWMutex
	current *Session
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get() (Session, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.current == nil {
		return Session{}, false
	}
	return New(s.current.Cookies), true
}

// Set replaces the current session, setting an empty session is the same as
// calling Clear.
func (s *Store) Set(session Session) {
	if session.Empty() {
		s.Clear()
		return
	}

	stored := New(session.Cookies)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.current = &stored
}

func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.current = nil
}

func (s Session) Equal(other Session) bool {
	if len(s.Cookies) != len(other.Cookies) {
		return false
	}
	for i := range s.Cookies {
		if s.Cookies[i] != other.Cookies[i] {
			return false
		}
	}
	return true
}

// Invalidate clears the store only if it still holds stale, so a session
// set by a concurrent login is kept. It returns true if the store was cleared.
func (s *Store) Invalidate(stale Session) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.current == nil || !s.current.Equal(stale) {
		return false
	}
	s.current = nil
	return true
}
