package registry

import (
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/protocol"
)

// Handle is a live client connection.
type Handle interface {
	Send(msg protocol.ServerMessage) error
	Close() error
}

type connection struct {
	handle     Handle
	sessionID  string
	opponentID string
}

// Registry maps connection ids to their handles and game bindings.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*connection
	sessions    map[string][2]string
}

func New() *Registry {
	return &Registry{
		connections: make(map[string]*connection),
		sessions:    make(map[string][2]string),
	}
}

func (that *Registry) Register(connectionID string, handle Handle) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[connectionID] = &connection{handle: handle}
}

func (that *Registry) Unregister(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.connections, connectionID)
}

// BindToSession records the game and opponent of a paired connection.
func (that *Registry) BindToSession(connectionID, sessionID, opponentID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	conn, ok := that.connections[connectionID]
	if !ok {
		return
	}

	conn.sessionID = sessionID
	conn.opponentID = opponentID

	pair := that.sessions[sessionID]
	switch {
	case pair[0] == "" || pair[0] == connectionID:
		pair[0] = connectionID
	default:
		pair[1] = connectionID
	}
	that.sessions[sessionID] = pair
}

// Lookup returns the handle of a connection that is still registered.
func (that *Registry) Lookup(connectionID string) (Handle, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.connections[connectionID]
	if !ok {
		return nil, false
	}

	return conn.handle, true
}

// Binding returns the session and opponent of a paired connection.
func (that *Registry) Binding(connectionID string) (string, string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.connections[connectionID]
	if !ok || conn.sessionID == "" {
		return "", "", false
	}

	return conn.sessionID, conn.opponentID, true
}

// Len returns the number of registered connections.
func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.connections)
}

// Teardown closes both connections of a session and forgets them.
// It reports false when the session was already torn down.
func (that *Registry) Teardown(sessionID string) bool {
	that.mu.Lock()

	pair, ok := that.sessions[sessionID]
	if !ok {
		that.mu.Unlock()
		return false
	}
	delete(that.sessions, sessionID)

	handles := make([]Handle, 0, len(pair))
	for _, connectionID := range pair {
		conn, ok := that.connections[connectionID]
		if !ok || conn.sessionID != sessionID {
			continue
		}

		handles = append(handles, conn.handle)
		delete(that.connections, connectionID)
	}

	that.mu.Unlock()

	for _, handle := range handles {
		// close errors only mean the peer is already gone
		_ = handle.Close()
	}

	return true
}
