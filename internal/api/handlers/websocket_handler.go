// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"facility-ops-api-server/internal/api/middleware"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Maximum time to wait for any frame from the client before dropping it.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub    *socket.Hub
	Auth   middleware.Authenticator
	Logger *zap.Logger
}

// ServeWs upgrades the connection and subscribes it to the caller's facilities.
// Browsers cannot set headers on a websocket handshake, so the JWT comes in ?token=.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		response.Error(c, apperror.Unauthorized("Token is required"))
		return
	}

	a, err := h.Auth.Authenticate(c.Request.Context(), tokenString)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	facilities := make([]string, len(a.ManagedFacilities))
	for i, id := range a.ManagedFacilities {
		facilities[i] = id.Hex()
	}
	userID := a.ID.Hex()
	client := h.Hub.Register(userID, a.IsPrivileged(), facilities, conn)

	defer func() {
		h.Hub.Unregister(client)
		conn.Close()
	}()

	// Clients ping periodically; every ping or message extends the deadline.
	// gorilla/websocket answers pings with a pong on its own.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Logger.Warn("unexpected websocket close", zap.String("user_id", userID), zap.Error(err))
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
