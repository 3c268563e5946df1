package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/core"
	"github.com/anmol0706/kalov/internal/domain"
)

type sessionEntry struct {
	Conn core.SignalConnection
	Name string
	Room domain.RoomCode
}

// Sessions is the connection-session side table: per-connection scratch
// state (display name, joined room) keyed by connection id, instead of
// fields hung off the transport's socket object. Owned by the coordinator.
type Sessions struct {
	mu   sync.RWMutex
	byID map[domain.ConnID]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[domain.ConnID]*sessionEntry)}
}

func (s *Sessions) Bind(id domain.ConnID, conn core.SignalConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = &sessionEntry{Conn: conn, Name: domain.DefaultDisplayName}
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("bound session")
}

func (s *Sessions) Unbind(id domain.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("unbound session")
}

// Conn returns the transport endpoint for id, if the connection is live.
func (s *Sessions) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.byID[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (s *Sessions) SetName(id domain.ConnID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		e.Name = name
	}
}

func (s *Sessions) NameOf(id domain.ConnID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.byID[id]; ok {
		return e.Name
	}
	return domain.DefaultDisplayName
}

func (s *Sessions) SetRoom(id domain.ConnID, code domain.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		e.Room = code
	}
}

func (s *Sessions) ClearRoom(id domain.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		e.Room = ""
	}
}

// RoomOf reports the room a connection has joined. ok is false both for
// unknown connections and for connections that have not joined yet.
func (s *Sessions) RoomOf(id domain.ConnID) (domain.RoomCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}
