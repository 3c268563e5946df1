package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/app"
	"github.com/anmol0706/kalov/internal/domain"
)

// inbound is the superset envelope for every client -> server event.
// Handshake payloads and toggle states stay raw: the server forwards them
// verbatim and never looks inside.
type inbound struct {
	Type      string          `json:"type"`
	RoomCode  string          `json:"roomCode"`
	UserName  string          `json:"userName"`
	SDP       json.RawMessage `json:"sdp"`
	Candidate json.RawMessage `json:"candidate"`
	To        string          `json:"to"`
	State     json.RawMessage `json:"state"`
	Text      string          `json:"text"`
}

// dispatch maps one wire event onto the coordinator. Malformed or unknown
// frames are dropped; a single connection's garbage must never take down
// the process.
func (ctl *Controller) dispatch(id domain.ConnID, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad json frame")
		return
	}

	switch msg.Type {
	case app.EvtJoinRoom:
		ctl.Coord.Join(id, msg.RoomCode, msg.UserName)
	case app.EvtOffer, app.EvtAnswer:
		ctl.Coord.Relay(msg.Type, id, domain.ConnID(msg.To), msg.SDP)
	case app.EvtCandidate:
		ctl.Coord.Relay(msg.Type, id, domain.ConnID(msg.To), msg.Candidate)
	case app.EvtToggleAudio, app.EvtToggleVideo, app.EvtToggleShare:
		ctl.Coord.Toggle(msg.Type, id, msg.State)
	case app.EvtChat:
		ctl.Coord.Chat(id, msg.Text)
	case app.EvtLeaveRoom:
		ctl.Coord.Leave(id)
	default:
		log.Warn().Str("module", "signal").Str("type", msg.Type).Msg("unknown signal")
	}
}
