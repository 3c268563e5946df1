package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/core"
	"github.com/anmol0706/kalov/internal/domain"
)

// Coordinator implements the signaling event handlers: join/leave, handshake
// relay, toggle and chat broadcast. It owns the session side table; the room
// registry is injected so tests can use fresh instances.
//
// Every handler is defensive against a connection that has not joined any
// room: such calls are silent no-ops, never fatal. A relay or toggle whose
// target disconnected moments earlier simply results in no delivery.
type Coordinator struct {
	Registry *core.Registry
	Sessions *Sessions

	// now is swapped in tests to pin chat timestamps.
	now func() time.Time
}

func NewCoordinator(reg *core.Registry) *Coordinator {
	return &Coordinator{
		Registry: reg,
		Sessions: NewSessions(),
		now:      time.Now,
	}
}

// Connect registers a fresh connection. Called by the transport on upgrade,
// before any event is dispatched for the connection.
func (c *Coordinator) Connect(id domain.ConnID, conn core.SignalConnection) {
	c.Sessions.Bind(id, conn)
}

// Disconnect runs the leave path and destroys the session. The transport
// guarantees it is invoked once per connection; it is idempotent anyway.
func (c *Coordinator) Disconnect(id domain.ConnID) {
	c.Leave(id)
	c.Sessions.Unbind(id)
}

// Join places the connection into a room, creating the room if the code is
// unseen. The first occupant is the initiator; when the join completes a
// pair, both sides learn about each other: the existing occupant gets
// user-joined (and becomes responsible for creating the offer), the joiner
// gets existing-user and waits.
func (c *Coordinator) Join(id domain.ConnID, rawCode, rawName string) {
	if _, ok := c.Sessions.Conn(id); !ok {
		return
	}

	// A connection that joins again while in a room leaves the old room
	// first, so the abandoned peer gets its user-left.
	if _, ok := c.Sessions.RoomOf(id); ok {
		c.Leave(id)
	}

	name := domain.DisplayName(rawName)
	c.Sessions.SetName(id, name)

	res, err := c.Registry.Join(domain.NormalizeCode(rawCode), domain.Participant{ID: id, Name: name})
	if err != nil {
		log.Info().Str("module", "app.coordinator").Str("conn", string(id)).
			Str("room", string(domain.NormalizeCode(rawCode))).Msg("join rejected, room full")
		c.send(id, roomFullMsg{Type: EvtRoomFull, Message: "Room is full"})
		return
	}

	c.Sessions.SetRoom(id, res.Code)
	c.send(id, roomJoinedMsg{
		Type:             EvtRoomJoined,
		RoomCode:         res.Code,
		ParticipantCount: res.Count,
		IsInitiator:      res.Initiator,
	})

	if res.Count == core.MaxParticipants {
		peer := res.Peers[0]
		c.send(peer.ID, peerMsg{Type: EvtUserJoined, ConnectionID: id, UserName: name})
		c.send(id, peerMsg{Type: EvtExistingUser, ConnectionID: peer.ID, UserName: peer.Name})
	}
}

// Relay forwards an offer, answer or ice-candidate verbatim to its target,
// annotated with the sender's id. The payload is an opaque blob belonging to
// the two endpoints' private handshake; it is never inspected.
func (c *Coordinator) Relay(kind string, id, to domain.ConnID, payload json.RawMessage) {
	room, ok := c.Sessions.RoomOf(id)
	if !ok {
		return
	}
	// The target must share the sender's room; anything else is a stale
	// target and the frame is dropped.
	if targetRoom, ok := c.Sessions.RoomOf(to); !ok || targetRoom != room {
		log.Debug().Str("module", "app.coordinator").Str("from", string(id)).
			Str("to", string(to)).Str("kind", kind).Msg("relay target not in room, dropped")
		return
	}

	msg := relayMsg{Type: kind, From: id}
	switch kind {
	case EvtCandidate:
		msg.Candidate = payload
	case EvtOffer:
		msg.SDP = payload
		msg.UserName = c.Sessions.NameOf(id)
	default: // answer
		msg.SDP = payload
	}
	c.send(to, msg)
}

// Toggle broadcasts an audio/video/screen-share state change to every other
// occupant of the sender's room (at most one, given the two-person cap).
// Best-effort, no acknowledgement.
func (c *Coordinator) Toggle(kind string, id domain.ConnID, state json.RawMessage) {
	event, known := toggleEvents[kind]
	if !known {
		return
	}
	room, ok := c.Sessions.RoomOf(id)
	if !ok {
		return
	}
	msg := toggleMsg{Type: event, ConnectionID: id, State: state}
	for _, p := range c.Registry.Participants(room) {
		if p.ID == id {
			continue
		}
		c.send(p.ID, msg)
	}
}

// Chat relays a text message to the other occupant, stamped with the sender
// name and a wall-clock time. Messages are never stored server-side.
func (c *Coordinator) Chat(id domain.ConnID, text string) {
	room, ok := c.Sessions.RoomOf(id)
	if !ok {
		return
	}
	msg := chatMsg{
		Type:     EvtChat,
		Text:     text,
		UserName: c.Sessions.NameOf(id),
		Time:     c.now().Format("15:04"),
	}
	for _, p := range c.Registry.Participants(room) {
		if p.ID == id {
			continue
		}
		c.send(p.ID, msg)
	}
}

// Leave removes the connection from its room and tells the remaining
// occupant. The registry deletes the room the moment it empties.
func (c *Coordinator) Leave(id domain.ConnID) {
	room, ok := c.Sessions.RoomOf(id)
	if !ok {
		return
	}
	removed, remaining, ok := c.Registry.RemoveParticipant(room, id)
	c.Sessions.ClearRoom(id)
	if !ok {
		return
	}
	for _, p := range remaining {
		c.send(p.ID, peerMsg{Type: EvtUserLeft, ConnectionID: id, UserName: removed.Name})
	}
}

// send marshals and delivers one event to one connection. Unknown targets
// and full buffers are benign; the frame is dropped.
func (c *Coordinator) send(id domain.ConnID, v any) {
	conn, ok := c.Sessions.Conn(id)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal event")
		return
	}
	if err := conn.TrySend(core.Frame(b)); err != nil {
		log.Warn().Str("module", "app.coordinator").Str("conn", string(id)).Msg("send dropped")
	}
}
