package httpserver

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// streamEvents pushes the customer's cart and wishlist changes as
// Server-Sent Events until the client goes away.
func (h *handler) streamEvents(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	ch, cancel := h.deps.Events.Subscribe(customerID)
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"customerId": customerID})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", gin.H{"time": t.UTC()})
			return true
		}
	})
}
