package orderControllers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wglickman33/mykosherdelivery-sub001/auth"
	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/middleware"
)

const heartbeatInterval = 25 * time.Second

var streamTopics = []string{
	events.TopicOrderCreated,
	events.TopicOrderUpdated,
	events.TopicNotificationCreated,
}

// StreamTokenHandler mints the single-purpose token the stream endpoints
// accept. Session-authenticated and admin-gated by the route group.
func StreamTokenHandler(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token, err := auth.MintStreamToken(secret, userID, middleware.CallerRole(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_in": int(auth.StreamTokenTTL.Seconds()),
		})
	}
}

func verifyStreamRequest(c *gin.Context, secret string) (string, bool) {
	userID, err := auth.VerifyStreamToken(secret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired stream token"})
		return "", false
	}
	return userID, true
}

// EventsHandler is the admin SSE stream: a long-lived one-way channel
// carrying connected, ping, and the order/notification topics. The bus
// subscription is scoped to the connection; disconnect always unsubscribes.
func EventsHandler(bus *events.Bus, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := verifyStreamRequest(c, secret)
		if !ok {
			return
		}

		ch, cancel := bus.Subscribe(streamTopics...)
		defer cancel()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.SSEvent("connected", gin.H{"admin_id": adminID})
		c.Writer.Flush()

		logrus.WithField("admin", adminID).Info("admin event stream opened")
		defer logrus.WithField("admin", adminID).Info("admin event stream closed")

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		clientGone := c.Request.Context().Done()
		c.Stream(func(w io.Writer) bool {
			select {
			case ev, open := <-ch:
				if !open {
					return false
				}
				c.SSEvent(ev.Name, ev.Payload)
				return true
			case <-heartbeat.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			case <-clientGone:
				return false
			}
		})
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// OrdersWebSocketHandler is the legacy live order feed over a websocket,
// kept for dashboards that predate the SSE stream. Same token, same topics,
// push-only.
func OrdersWebSocketHandler(bus *events.Bus, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := verifyStreamRequest(c, secret)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ch, cancel := bus.Subscribe(streamTopics...)
		defer cancel()

		// Reader goroutine: we never expect client messages, but reading is
		// how websocket close frames surface.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		logrus.WithField("admin", adminID).Info("admin websocket feed opened")

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case ev, open := <-ch:
				if !open {
					return
				}
				frame, err := json.Marshal(gin.H{"event": ev.Name, "data": ev.Payload})
				if err != nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			case <-heartbeat.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
