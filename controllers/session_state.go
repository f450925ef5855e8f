package controllers

import (
	"sync"

	"gitea.com/go-chi/session"

	"github.com/mkoenig/ssoportal/authenticator"
)

// sessionState adapts the cookie-backed session to the key/value store
// the login flow operates on.
type sessionState struct {
	sess session.Store
}

func (s sessionState) Get(key string) interface{} {
	return s.sess.Get(key)
}

func (s sessionState) Set(key string, value interface{}) error {
	return s.sess.Set(key, value)
}

func (s sessionState) Invalidate(key string) error {
	return s.sess.Delete(key)
}

// consumeMu serializes Consume across requests. The session store locks
// Get and Delete individually but not the pair, and two callbacks for
// the same session must not both see the pending state.
var consumeMu sync.Mutex

func (s sessionState) Consume(key string) (interface{}, bool) {
	consumeMu.Lock()
	defer consumeMu.Unlock()

	value := s.sess.Get(key)
	if value == nil {
		return nil, false
	}
	s.sess.Delete(key)
	return value, true
}

var _ authenticator.StateStore = sessionState{}
