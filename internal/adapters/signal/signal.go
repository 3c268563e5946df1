// Package signal is the websocket adapter for the signaling coordinator:
// it upgrades connections, owns the read/write pumps, and maps wire events
// onto coordinator calls.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/app"
	"github.com/anmol0706/kalov/internal/core"
	"github.com/anmol0706/kalov/internal/domain"
)

// Time allowed to write one frame to the peer.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	// TODO: check Origin against the deployed frontend domain.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Coord      *app.Coordinator
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(coord *app.Coordinator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{Coord: coord, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

// errConnClosed reports a send against a connection that already tore down.
// Like backpressure, this is a benign race: the frame is dropped.
var errConnClosed = errors.New("connection closed")

// wsConn is the transport endpoint handed to the coordinator. Writes go
// through a bounded send channel; a full channel means the peer is slow and
// the frame is dropped. The closed flag is checked under the same lock that
// Close takes, so a TrySend racing a teardown gets an error instead of a
// send on a closed channel.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and runs the connection's pumps. Each
// connection gets a fresh id; the coordinator's leave path runs exactly once
// when the read pump exits, whatever killed the connection.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := domain.ConnID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).
		Str("client", c.GetString("client_token")).Msg("new signaling connection")

	ctl.Coord.Connect(id, conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, id, conn)
}
