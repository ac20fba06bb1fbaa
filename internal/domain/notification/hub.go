package notification

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis channel shared by every API instance
const userEventsChannel = "notifications:user_events"

const eventNotificationNew = "notification:new"

type userEventMessage struct {
	EventType        string          `json:"event_type"`
	UserID           string          `json:"user_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection represents a WebSocket connection
type Connection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub tracks this instance's websocket sessions and fans events out through
// Redis Pub/Sub so a notice created on one instance reaches sessions on all of them.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	mu          sync.RWMutex

	pubsub *redis.PubSub

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
	publishFn  func(ctx context.Context, channel string, payload []byte) error

	connectionsGauge prometheus.Gauge
	events           *prometheus.CounterVec
}

// NewHub creates a hub; redisClient and reg may be nil
func NewHub(redisClient *redis.Client, reg prometheus.Registerer) *Hub {
	return NewHubWithInstanceID(redisClient, reg, uuid.NewString())
}

// NewHubWithInstanceID creates a hub with an explicit instance identifier.
func NewHubWithInstanceID(redisClient *redis.Client, reg prometheus.Registerer, instanceID string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	connectionsGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "celulas_websocket_connections",
		Help: "Open notification websocket sessions on this instance.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celulas_websocket_events_total",
		Help: "Websocket events by delivery result.",
	}, []string{"result"})

	h := &Hub{
		connections:      make(map[uuid.UUID]map[*Connection]bool),
		register:         make(chan *Connection),
		unregister:       make(chan *Connection),
		ctx:              ctx,
		cancel:           cancel,
		instanceID:       instanceID,
		connectionsGauge: connectionsGauge,
		events:           events,
	}
	if reg != nil {
		reg.MustRegister(h.connectionsGauge, h.events)
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, userEventsChannel)
		h.publishFn = func(ctx context.Context, channel string, payload []byte) error {
			return redisClient.Publish(ctx, channel, payload).Err()
		}
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.UserID] == nil {
				h.connections[conn.UserID] = make(map[*Connection]bool)
			}
			h.connections[conn.UserID][conn] = true
			h.mu.Unlock()
			h.connectionsGauge.Inc()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("User connected to notification stream")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.UserID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					h.connectionsGauge.Dec()
				}
				if len(conns) == 0 {
					delete(h.connections, conn.UserID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("User disconnected from notification stream")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleUserEventPayload(msg.Payload)
		}
	}
}

func (h *Hub) handleUserEventPayload(payload string) {
	var event userEventMessage
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return
	}
	if event.SenderInstanceID == h.instanceID {
		return
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return
	}
	h.sendLocal(userID, []byte(event.Payload))
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// NotifyNew pushes a notification:new event to every session of userID
func (h *Hub) NotifyNew(ctx context.Context, userID uuid.UUID, n *NotificationResponse, unreadCount int) error {
	return h.SendToUserJSON(ctx, userID, map[string]interface{}{
		"type": eventNotificationNew,
		"data": map[string]interface{}{
			"notification": n,
			"unread_count": unreadCount,
		},
	})
}

// SendToUserJSON sends payload to local sessions and publishes it for other instances
func (h *Hub) SendToUserJSON(ctx context.Context, userID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.sendLocal(userID, data)
	return h.publish(ctx, userID, data)
}

func (h *Hub) sendLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[userID] {
		select {
		case conn.Send <- data:
			h.events.WithLabelValues("sent").Inc()
		default:
			h.events.WithLabelValues("dropped").Inc()
			log.Warn().Str("user_id", userID.String()).Msg("WebSocket send buffer full")
		}
	}
}

func (h *Hub) publish(ctx context.Context, userID uuid.UUID, data []byte) error {
	if h.publishFn == nil {
		return nil
	}

	payload, err := json.Marshal(userEventMessage{
		EventType:        eventNotificationNew,
		UserID:           userID.String(),
		Payload:          data,
		SenderInstanceID: h.instanceID,
	})
	if err != nil {
		return err
	}
	return h.publishFn(ctx, userEventsChannel, payload)
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown stops the hub and its Redis subscription
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
}
