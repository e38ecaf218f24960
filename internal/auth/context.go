package auth

import (
	"sync"

	"github.com/seedstoroots/seeds-backend/pkg/logger"
	"github.com/seedstoroots/seeds-backend/pkg/util"
)

// Listener is notified whenever the session owner changes. A nil owner
// means the session is now a guest.
type Listener func(ownerID *uint)

// Context is the explicit session holder injected into the cart store
// and the API client. It replaces ad hoc reads of ambient token
// storage: state changes are delivered through Subscribe callbacks
// (login, logout, token replaced from another tab).
type Context struct {
	mu        sync.RWMutex
	token     string
	ownerID   *uint
	listeners []Listener
}

func NewContext() *Context {
	return &Context{}
}

// SetToken installs a session token and derives the owner id from its
// claims. A token whose claims cannot be read is treated as a guest
// session.
func (c *Context) SetToken(token string) {
	var owner *uint
	if token != "" {
		userID, err := util.ExtractUserID(token)
		if err != nil {
			logger.Warn("Could not derive owner from session token", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			owner = &userID
		}
	}

	c.mu.Lock()
	c.token = token
	changed := !sameOwner(c.ownerID, owner)
	c.ownerID = owner
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l(owner)
		}
	}
}

// Clear drops the session, returning to guest state
func (c *Context) Clear() {
	c.SetToken("")
}

// Token returns the current session token, empty for guests
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OwnerID returns the current owner id, nil for guests
func (c *Context) OwnerID() *uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ownerID == nil {
		return nil
	}
	id := *c.ownerID
	return &id
}

// Subscribe registers a listener for owner changes. Listeners are
// invoked outside the context lock.
func (c *Context) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func sameOwner(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
