// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub tracks connected certifier dashboards and fans document status events
// out to them.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

// DocumentEvent is the wire message pushed when a document changes state.
type DocumentEvent struct {
	Type       string      `json:"type"`
	DocumentID string      `json:"document_id"`
	Status     string      `json:"status"`
	Payload    interface{} `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection keyed by certifier id, replacing any
// previous connection for the same certifier.
func (h *Hub) Register(certifierID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[certifierID]; ok {
		old.Close()
	}
	h.clients[certifierID] = conn
	logrus.WithField("certifier_id", certifierID).Info("WebSocket client registered")
}

func (h *Hub) Unregister(certifierID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[certifierID]; ok {
		delete(h.clients, certifierID)
		logrus.WithField("certifier_id", certifierID).Info("WebSocket client unregistered")
	}
}

// Broadcast sends the event to every connected dashboard. Write failures drop
// the offending client; a stale dashboard is not an error.
func (h *Hub) Broadcast(event DocumentEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal document event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for certifierID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logrus.WithField("certifier_id", certifierID).WithError(err).Warn("Dropping unresponsive WebSocket client")
			conn.Close()
			delete(h.clients, certifierID)
		}
	}
}
