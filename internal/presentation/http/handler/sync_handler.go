package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/syncer"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/internal/presentation/http/middleware"
)

const heartbeatInterval = 25 * time.Second

// ControllerFactory builds one sync controller per stream.
type ControllerFactory func() *syncer.Controller

// SyncHandler streams a scope's live mirror as server-sent events.
type SyncHandler struct {
	newController ControllerFactory
	heartbeat     time.Duration
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(newController ControllerFactory) *SyncHandler {
	return &SyncHandler{newController: newController, heartbeat: heartbeatInterval}
}

// publicState is what share-link visitors receive: no relay credentials
// and no inquiries.
type publicState struct {
	Scope     entity.TenantScope         `json:"scope"`
	Profile   entity.PublicProfile       `json:"profile"`
	Templates []entity.ServiceTemplate   `json:"templates"`
	Ready     bool                       `json:"ready"`
	Errors    map[enum.Collection]string `json:"errors,omitempty"`
	Version   uint64                     `json:"version"`
}

func project(s syncer.State) any {
	if !s.Scope.Public {
		return s
	}
	return publicState{
		Scope:     s.Scope,
		Profile:   s.Settings.Public(),
		Templates: s.Templates,
		Ready:     s.Ready,
		Errors:    s.Errors,
		Version:   s.Version,
	}
}

// Stream sends a "state" event on every change of the mirror until the
// client goes away.
func (h *SyncHandler) Stream(c *gin.Context) {
	scope, ok := middleware.GetScope(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	ctrl := h.newController()
	defer ctrl.Close()

	ctx := c.Request.Context()
	ctrl.SetScope(ctx, scope)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	var sent uint64
	first := true
	c.Stream(func(w io.Writer) bool {
		if !first {
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C:
				c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
				return true
			case <-ctrl.Updates():
			}
		}

		state := ctrl.State()
		if !first && state.Version == sent {
			return true
		}
		first = false
		sent = state.Version
		c.SSEvent("state", project(state))
		return true
	})
}
