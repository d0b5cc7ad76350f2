package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vaidya/internal/live"
	"vaidya/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const liveHeartbeat = 15 * time.Second

// SnapshotFunc loads the current contents of a collection.
type SnapshotFunc func(ctx context.Context) (interface{}, error)

// LiveHandler streams collection snapshots and change events to admin dashboards over SSE.
type LiveHandler struct {
	hub       *live.Hub
	snapshots map[string]SnapshotFunc
	metrics   *metrics.AppMetrics
	heartbeat time.Duration
}

// NewLiveHandler creates a LiveHandler serving the collections in snapshots.
func NewLiveHandler(hub *live.Hub, snapshots map[string]SnapshotFunc, m *metrics.AppMetrics) *LiveHandler {
	return &LiveHandler{
		hub:       hub,
		snapshots: snapshots,
		metrics:   m,
		heartbeat: liveHeartbeat,
	}
}

// RegisterAdminRoutes registers the live feed under an admin-only router.
func (h *LiveHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/live/:collection", h.HandleStream)
}

// HandleStream sends a "snapshot" event with the full collection, then one "change"
// event per write until the client disconnects.
func (h *LiveHandler) HandleStream(c *fiber.Ctx) error {
	collection := c.Params("collection")
	load, ok := h.snapshots[collection]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Unknown collection %s", collection),
		})
	}

	// Subscribe before loading so no write between the two is lost.
	events, unsubscribe := h.hub.Subscribe(collection)
	snapshot, err := load(c.UserContext())
	if err != nil {
		unsubscribe()
		return respondError(c, err, "Could not load collection")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	h.metrics.AddLiveSubscribers(context.Background(), 1)
	heartbeat := h.heartbeat
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			unsubscribe()
			h.metrics.AddLiveSubscribers(context.Background(), -1)
		}()

		if err := writeEvent(w, "snapshot", snapshot); err != nil {
			return
		}

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, "change", event); err != nil {
					log.Printf("Live %s stream closed: %v", collection, err)
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	return w.Flush()
}
