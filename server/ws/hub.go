package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sentinela-io/sentinela/server/logger"
)

var logg = logger.NewLogger()

type session struct {
	userID uint
	conn   *websocket.Conn

	// gorilla conns allow one concurrent writer
	writeMu sync.Mutex
}

func (s *session) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.conn.WriteJSON(v)
}

// Hub holds live websocket sessions keyed by the authenticated user id,
// so realtime events can be targeted at a specific recipient. It is a
// delivery side-channel only - the persisted notification row is the
// source of truth.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]map[*session]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[uint]map[*session]struct{})}
}

// Publish sends 'event' to every live session of 'userID'. A recipient
// with no active session is skipped silently; sessions that fail a
// write are dropped.
func (hub *Hub) Publish(userID uint, event interface{}) {
	hub.mu.RLock()
	sessions := make([]*session, 0, len(hub.sessions[userID]))
	for s := range hub.sessions[userID] {
		sessions = append(sessions, s)
	}
	hub.mu.RUnlock()

	for _, s := range sessions {
		if err := s.writeJSON(event); err != nil {
			logg.Warnf("dropping session for user=%v after failed write: %v", userID, err)
			hub.remove(s)
		}
	}
}

// ActiveSessionCount reports how many live sessions 'userID' has.
func (hub *Hub) ActiveSessionCount(userID uint) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.sessions[userID])
}

// Close tears down every live session e.g. on server shutdown.
func (hub *Hub) Close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for _, sessions := range hub.sessions {
		for s := range sessions {
			s.conn.Close()
		}
	}
	hub.sessions = make(map[uint]map[*session]struct{})
}

func (hub *Hub) add(userID uint, conn *websocket.Conn) *session {
	s := &session{userID: userID, conn: conn}

	hub.mu.Lock()
	if hub.sessions[userID] == nil {
		hub.sessions[userID] = make(map[*session]struct{})
	}
	hub.sessions[userID][s] = struct{}{}
	total := len(hub.sessions[userID])
	hub.mu.Unlock()

	logg.Infof("ws session connected for user=%v (active=%v)", userID, total)
	return s
}

func (hub *Hub) remove(s *session) {
	hub.mu.Lock()
	if sessions, ok := hub.sessions[s.userID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(hub.sessions, s.userID)
		}
	}
	hub.mu.Unlock()

	s.conn.Close()
	logg.Infof("ws session disconnected for user=%v", s.userID)
}
