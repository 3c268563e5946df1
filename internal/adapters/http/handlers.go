package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anmol0706/kalov/internal/core"
	"github.com/anmol0706/kalov/internal/domain"
)

// API is the out-of-band REST facade the pre-join UI calls before opening
// the signaling channel.
type API struct {
	Registry *core.Registry
	started  time.Time
}

func NewAPI(reg *core.Registry) *API {
	return &API{Registry: reg, started: time.Now()}
}

// CreateRoom mints a fresh empty room. Always succeeds.
func (a *API) CreateRoom(c *gin.Context) {
	code := a.Registry.CreateRoom()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"roomCode": code,
	})
}

// RoomStatus reports whether a room exists and whether it still has space.
func (a *API) RoomStatus(c *gin.Context) {
	code := domain.NormalizeCode(c.Param("code"))
	info, ok := a.Registry.Get(code)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":           true,
		"participantCount": info.ParticipantCount,
		"isFull":           info.ParticipantCount >= core.MaxParticipants,
	})
}

// Health is the operational probe.
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"rooms":     a.Registry.Len(),
		"uptime":    time.Since(a.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
