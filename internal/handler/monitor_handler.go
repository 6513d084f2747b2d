package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/prooftalent/assessment-backend/internal/websocket"
)

const keepAliveInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams session lifecycle events to operators over a
// WebSocket, fanned out through Redis Pub/Sub so every server instance sees
// every transition.
type MonitorHandler struct {
	rdb      *redis.Client
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, allowedOrigins []string, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		upgrader: buildUpgrader(allowedOrigins),
		log:      log.With().Str("component", "monitor_handler").Logger(),
	}
}

// Stream godoc
// GET /ws/v1/monitor
func (h *MonitorHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.MonitorChannel())
	defer pubsub.Close()

	ch := pubsub.Channel()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	// Drain client frames so close messages and pongs are processed; the
	// monitor stream is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("monitor attached")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				ws.WriteError(conn, "event stream closed")
				return
			}
			frame := ws.StateChangeFrame{
				Event:   ws.EventStateChange,
				Payload: []byte(msg.Payload),
			}
			if err := ws.WriteTyped(conn, frame); err != nil {
				h.log.Debug().Err(err).Msg("monitor write failed, detaching")
				return
			}
		case <-keepAlive.C:
			if err := ws.WriteTyped(conn, ws.PingFrame{Event: ws.EventPing}); err != nil {
				return
			}
		}
	}
}
