package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/civic-action/platform/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// WSHub fans petition events out to the sockets watching that petition.
type WSHub struct {
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[string][]wsConn
}

func NewWSHub(subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		subscriber:  subscriber,
		log:         log,
		connections: make(map[string][]wsConn),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamPetitions, h.broadcast)
}

func (h *WSHub) broadcast(event events.Event) {
	petitionID := event.PetitionID()
	if petitionID == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[petitionID] {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

func (h *WSHub) register(petitionID string, conn wsConn) {
	h.mu.Lock()
	h.connections[petitionID] = append(h.connections[petitionID], conn)
	h.mu.Unlock()
}

func (h *WSHub) unregister(petitionID string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[petitionID]
	for i, c := range conns {
		if c == conn {
			h.connections[petitionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[petitionID]) == 0 {
		delete(h.connections, petitionID)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	id, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid petition id"}`))
		conn.Close()
		return
	}
	petitionID := id.String()

	h.register(petitionID, conn)
	defer func() {
		h.unregister(petitionID, conn)
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
