// internal/handlers/ws.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/greenhydro/subsidy-backend/internal/socket"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *socket.Hub
}

func NewWebSocketHandler(hub *socket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// GET /ws/documents
// Browsers cannot set an Authorization header on a websocket handshake, so
// the token rides in the query string.
func (h *WebSocketHandler) ServeDocumentFeed(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade websocket connection")
		return
	}

	certifierID := claims.CertifierID
	h.hub.Register(certifierID, conn)

	defer func() {
		h.hub.Unregister(certifierID)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Drain control frames until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
