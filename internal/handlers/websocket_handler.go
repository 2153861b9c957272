package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"irigasi/internal/middleware"
	"irigasi/pkg/logger"
	"irigasi/pkg/response"
	"irigasi/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 60 * time.Second
	wsPongWait     = 5 * time.Minute
)

// WebSocketHandler pushes session lifecycle events to the signed-in user
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	sessions *session.Registry
	log      *logrus.Logger
}

func NewWebSocketHandler(sessions *session.Registry, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}
				logger.GetLogger().Warnf("websocket rejected, origin not allowed: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
		},
		sessions: sessions,
		log:      logger.GetLogger(),
	}
}

// SessionEvents streams the caller's session events. The connection closes
// after the event that revokes the caller's own session, or when its token expires.
func (h *WebSocketHandler) SessionEvents(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	tokenID := c.GetString(middleware.ContextKeyTokenID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.sessions.Subscribe(ctx, claims.UserID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.WithError(err).Error("failed to subscribe to session events")
		return
	}

	log := h.log.WithFields(logrus.Fields{
		"user_id":  claims.UserID,
		"token_id": tokenID,
	})
	log.Info("session event stream opened")
	defer log.Info("session event stream closed")

	go h.readPump(conn, cancel)

	// nil when the token carries no expiry; a nil channel never fires
	var expired <-chan time.Time
	if exp, ok := c.Get(middleware.ContextKeyTokenExpiresAt); ok {
		if at, ok := exp.(time.Time); ok {
			timer := time.NewTimer(time.Until(at))
			defer timer.Stop()
			expired = timer.C
		}
	}

	ch := pubsub.Channel()
	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-expired:
			log.Info("session token expired")
			closePolicy(conn, "session expired")
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case msg, ok := <-ch:
			if !ok {
				return
			}
			event, err := session.DecodeEvent(msg.Payload)
			if err != nil {
				log.WithError(err).Warn("dropping malformed session event")
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Warn("failed to write session event")
				return
			}

			if revokesToken(event, tokenID) {
				closePolicy(conn, "session revoked")
				return
			}
		}
	}
}

func closePolicy(conn *websocket.Conn, reason string) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}

// revokesToken a revocation without a token id covers every session of the user
func revokesToken(e session.Event, tokenID string) bool {
	if e.Type != session.EventSessionRevoked {
		return false
	}
	return e.TokenID == "" || e.TokenID == tokenID
}

func (h *WebSocketHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("websocket closed unexpectedly")
			}
			return
		}
	}
}

// matchOrigin exact match or a "*.example.com" wildcard on the host
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}
	if !strings.HasPrefix(allowed, "*.") {
		return false
	}

	host := origin
	if i := strings.Index(host, "://"); i != -1 {
		host = host[i+3:]
	}
	if i := strings.Index(host, ":"); i != -1 {
		host = host[:i]
	}
	domain := allowed[2:]
	return host == domain || strings.HasSuffix(host, "."+domain)
}
