package core

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/domain"
)

// MaxParticipants is the hard room capacity. Signaling pairs exactly two
// endpoints; everything downstream (initiator selection, relay targeting)
// assumes it.
const MaxParticipants = 2

// ErrRoomFull rejects a join against a room that already holds two
// participants. Surfaced only to the rejected joiner.
var ErrRoomFull = errors.New("room is full")

type room struct {
	participants []domain.Participant
	createdAt    time.Time
}

// RoomInfo is a read-only snapshot for APIs (no mutable state escapes the
// registry lock).
type RoomInfo struct {
	Code             domain.RoomCode
	ParticipantCount int
	CreatedAt        time.Time
}

// JoinResult reports the outcome of an atomic join.
type JoinResult struct {
	Code  domain.RoomCode
	Count int
	// Initiator is true iff this join made the participant the first
	// occupant. The first occupant creates the WebRTC offer; join order is
	// the tie-break that avoids both sides offering at once.
	Initiator bool
	// Peers holds the occupants that were already present before the join.
	Peers []domain.Participant
}

// Registry is the process-wide room store: room code -> participants.
// Purely in-memory, nothing survives a restart. Safe for concurrent use;
// every lookup+mutate runs under one lock so the two-party invariant holds
// under simultaneous joins.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*room

	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomCode]*room),
		now:   time.Now,
	}
}

// CreateRoom generates a fresh unique code and inserts an empty room.
// Always succeeds; the code space is 36^8 so the retry loop is theoretical,
// but the generator must tolerate a collision.
func (r *Registry) CreateRoom() domain.RoomCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		code := generateCode()
		if _, exists := r.rooms[code]; exists {
			continue
		}
		r.rooms[code] = &room{createdAt: r.now()}
		log.Info().Str("module", "core.registry").Str("room", string(code)).Msg("room created")
		return code
	}
}

// Get looks up a room by code (case-insensitive). Pure read.
func (r *Registry) Get(code domain.RoomCode) (RoomInfo, bool) {
	code = domain.NormalizeCode(string(code))
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[code]
	if !ok {
		return RoomInfo{}, false
	}
	return RoomInfo{Code: code, ParticipantCount: len(rm.participants), CreatedAt: rm.createdAt}, true
}

// Ensure returns the room for code, creating it empty if unseen. Joining an
// unknown code implicitly creates the room, which makes "join" and
// "create-then-join" equivalent on the join path.
func (r *Registry) Ensure(code domain.RoomCode) RoomInfo {
	code = domain.NormalizeCode(string(code))
	r.mu.RLock()
	if rm, ok := r.rooms[code]; ok {
		info := RoomInfo{Code: code, ParticipantCount: len(rm.participants), CreatedAt: rm.createdAt}
		r.mu.RUnlock()
		return info
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	rm := r.ensureLocked(code)
	return RoomInfo{Code: code, ParticipantCount: len(rm.participants), CreatedAt: rm.createdAt}
}

func (r *Registry) ensureLocked(code domain.RoomCode) *room {
	if rm, ok := r.rooms[code]; ok {
		return rm
	}
	rm := &room{createdAt: r.now()}
	r.rooms[code] = rm
	log.Info().Str("module", "core.registry").Str("room", string(code)).Msg("room created on join")
	return rm
}

// Join atomically ensures the room and appends the participant. The append
// under the write lock is the serialization point: two simultaneous joins on
// an empty room cannot both observe count 0 and both become initiator.
func (r *Registry) Join(code domain.RoomCode, p domain.Participant) (JoinResult, error) {
	code = domain.NormalizeCode(string(code))
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.ensureLocked(code)
	if len(rm.participants) >= MaxParticipants {
		return JoinResult{}, ErrRoomFull
	}

	peers := make([]domain.Participant, len(rm.participants))
	copy(peers, rm.participants)

	rm.participants = append(rm.participants, p)
	count := len(rm.participants)
	log.Info().Str("module", "core.registry").Str("room", string(code)).
		Str("conn", string(p.ID)).Int("count", count).Msg("participant joined")

	return JoinResult{
		Code:      code,
		Count:     count,
		Initiator: count == 1,
		Peers:     peers,
	}, nil
}

// Participants returns a snapshot of the room's occupants, join order
// preserved.
func (r *Registry) Participants(code domain.RoomCode) []domain.Participant {
	code = domain.NormalizeCode(string(code))
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[code]
	if !ok {
		return nil
	}
	out := make([]domain.Participant, len(rm.participants))
	copy(out, rm.participants)
	return out
}

// RemoveParticipant drops the matching participant. A room that empties is
// deleted immediately; no empty-room state is observable after the removal
// that emptied it.
func (r *Registry) RemoveParticipant(code domain.RoomCode, id domain.ConnID) (removed domain.Participant, remaining []domain.Participant, ok bool) {
	code = domain.NormalizeCode(string(code))
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, exists := r.rooms[code]
	if !exists {
		return domain.Participant{}, nil, false
	}

	idx := -1
	for i, p := range rm.participants {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.Participant{}, nil, false
	}

	removed = rm.participants[idx]
	rm.participants = append(rm.participants[:idx], rm.participants[idx+1:]...)
	log.Info().Str("module", "core.registry").Str("room", string(code)).
		Str("conn", string(id)).Int("count", len(rm.participants)).Msg("participant left")

	if len(rm.participants) == 0 {
		delete(r.rooms, code)
		log.Info().Str("module", "core.registry").Str("room", string(code)).Msg("empty room deleted")
		return removed, nil, true
	}

	remaining = make([]domain.Participant, len(rm.participants))
	copy(remaining, rm.participants)
	return removed, remaining, true
}

// DeleteStale evicts empty rooms whose creation is older than threshold.
// Rooms with participants are never deleted regardless of age. Returns the
// number of rooms removed.
func (r *Registry) DeleteStale(now time.Time, threshold time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for code, rm := range r.rooms {
		if len(rm.participants) > 0 {
			continue
		}
		if now.Sub(rm.createdAt) <= threshold {
			continue
		}
		delete(r.rooms, code)
		removed++
		log.Info().Str("module", "core.registry").Str("room", string(code)).Msg("stale room deleted")
	}
	return removed
}

// Len reports the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
