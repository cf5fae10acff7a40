package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// redisChannel carries progress frames between relay instances.
const redisChannel = "acaradar:progress"

// Hub fans job progress out to the browsers listening on a progress channel.
type Hub struct {
	// Registered clients: progress channel -> connections (several tabs may listen)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Optional. With Redis every frame goes through pub/sub, so the instance running
	// the poll does not need to be the one holding the websocket.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

// Run owns registration until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Channel] = append(h.clients[client.Channel], client)
			h.mu.Unlock()
			h.logger.Debug("Hub", "Client registered", map[string]interface{}{"channel": client.Channel})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Notify implements service.ProgressNotifier.
func (h *Hub) Notify(frame dto.ProgressFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode progress frame", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(relayMessage{Channel: frame.Channel, Message: data})
		err := h.rdb.Publish(context.Background(), redisChannel, payload).Err()
		if err == nil {
			// Our own subscription delivers it locally.
			return
		}
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
	}

	h.deliver(frame.Channel, data)
}

type relayMessage struct {
	Channel string          `json:"channel"`
	Message json.RawMessage `json:"message"`
}

func (h *Hub) deliver(channel string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[channel] {
		select {
		case client.Send <- data:
		default:
			// Progress is superseded by the next frame anyway.
			h.logger.Warn("Hub", "Client Send buffer full, dropping frame", map[string]interface{}{"channel": channel})
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.Channel]
	for i, c := range clients {
		if c == client {
			h.clients[client.Channel] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.Channel]) == 0 {
		delete(h.clients, client.Channel)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, channel)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Unreadable progress message from Redis", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.deliver(payload.Channel, payload.Message)
		}
	}
}

// subscribe and unsubscribe give up once the hub has stopped.
func (h *Hub) subscribe(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
