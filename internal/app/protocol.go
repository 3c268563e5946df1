package app

import (
	"encoding/json"

	"github.com/anmol0706/kalov/internal/domain"
)

// Wire event names, client -> server.
const (
	EvtJoinRoom    = "join-room"
	EvtOffer       = "offer"
	EvtAnswer      = "answer"
	EvtCandidate   = "ice-candidate"
	EvtToggleAudio = "toggle-audio"
	EvtToggleVideo = "toggle-video"
	EvtToggleShare = "toggle-screen-share"
	EvtChat        = "chat-message"
	EvtLeaveRoom   = "leave-room"
)

// Wire event names, server -> client.
const (
	EvtRoomJoined   = "room-joined"
	EvtRoomFull     = "room-full"
	EvtUserJoined   = "user-joined"
	EvtExistingUser = "existing-user"
	EvtUserLeft     = "user-left"
	EvtPeerAudio    = "peer-audio-toggle"
	EvtPeerVideo    = "peer-video-toggle"
	EvtPeerShare    = "peer-screen-share"
)

// toggleEvents maps a client toggle event to its peer-side notification.
var toggleEvents = map[string]string{
	EvtToggleAudio: EvtPeerAudio,
	EvtToggleVideo: EvtPeerVideo,
	EvtToggleShare: EvtPeerShare,
}

type roomJoinedMsg struct {
	Type             string          `json:"type"`
	RoomCode         domain.RoomCode `json:"roomCode"`
	ParticipantCount int             `json:"participantCount"`
	IsInitiator      bool            `json:"isInitiator"`
}

type roomFullMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// peerMsg carries presence changes: user-joined, existing-user, user-left.
type peerMsg struct {
	Type         string        `json:"type"`
	ConnectionID domain.ConnID `json:"connectionId"`
	UserName     string        `json:"userName"`
}

// relayMsg forwards an opaque handshake blob to its target. Exactly one of
// SDP/Candidate is set depending on the event. UserName rides along on
// offers only, so the receiver can label the peer before the handshake
// completes.
type relayMsg struct {
	Type      string          `json:"type"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	From      domain.ConnID   `json:"from"`
	UserName  string          `json:"userName,omitempty"`
}

type toggleMsg struct {
	Type         string          `json:"type"`
	ConnectionID domain.ConnID   `json:"connectionId"`
	State        json.RawMessage `json:"state"`
}

type chatMsg struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	UserName string `json:"userName"`
	Time     string `json:"time"`
}
