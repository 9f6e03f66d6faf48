package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"playstore-predictor/pkg/logger"
	"time"

	"github.com/labstack/echo/v4"
)

const defaultHeartbeatInterval = 15 * time.Second

// ViewEvents streams view snapshots as server-sent events until the client
// goes away, the view is closed or the server shuts down. Heartbeats keep the
// view from expiring while the page is open.
func (h *HttpAPIHandler) ViewEvents(c echo.Context) error {
	id := c.Param("id")
	view, err := h.service.ViewRegistry.Get(id)
	if err != nil {
		return errorResponse(c, err)
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	states, cancel := view.Watch()
	defer cancel()

	interval := h.cfg.Realtime.HeartbeatInterval
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			h.log.DebugContext(ctx, "Event stream client gone", logger.StringField("view_id", id))
			return nil
		case <-h.ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := h.service.ViewRegistry.Get(id); err != nil {
				writeClosed(w)
				return nil
			}
			fmt.Fprint(w, ": ping\n\n")
			w.Flush()
		case state, ok := <-states:
			if !ok {
				writeClosed(w)
				return nil
			}
			payload, err := json.Marshal(state)
			if err != nil {
				h.log.WarnContext(ctx, "Failed to marshal view state", logger.ErrorField(err))
				continue
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
			w.Flush()
		}
	}
}

func writeClosed(w *echo.Response) {
	fmt.Fprint(w, "event: closed\ndata: {}\n\n")
	w.Flush()
}
