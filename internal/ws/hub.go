package ws

import (
	"context"
	"log/slog"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dom/webdesk-core/internal/broadcast"
)

// Hub bridges the Redis pub/sub broadcaster to connected websocket clients.
// Clients subscribe to channels ("rooms", "room:{id}", "listen:{id}") and
// receive every event published on them, regardless of which server process
// published it.
type Hub struct {
	rdb    *goredis.Client
	logger *slog.Logger

	clients  map[*Client]bool
	channels map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscription
	unsubscribe chan *subscription
	stop        chan struct{}
	done        chan struct{} // closed when Run() exits
	stopped     bool
	mu          sync.RWMutex
}

type subscription struct {
	client  *Client
	channel string
}

func NewHub(rdb *goredis.Client, logger *slog.Logger) *Hub {
	return &Hub{
		rdb:         rdb,
		logger:      logger,
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *subscription),
		unsubscribe: make(chan *subscription),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.rdb.PSubscribe(ctx,
		broadcast.LobbyChannel,
		broadcast.RoomChannel("*"),
		broadcast.ListenChannel("*"),
	)
	defer pubsub.Close()
	messages := pubsub.Channel()

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.channels = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for channel := range client.channels {
					h.dropSubscription(channel, client)
				}
				client.Close()
			}
			h.mu.Unlock()

		case sub := <-h.subscribe:
			h.mu.Lock()
			if !h.stopped {
				if h.channels[sub.channel] == nil {
					h.channels[sub.channel] = make(map[*Client]bool)
				}
				h.channels[sub.channel][sub.client] = true
				sub.client.channels[sub.channel] = true
			}
			h.mu.Unlock()

		case sub := <-h.unsubscribe:
			h.mu.Lock()
			h.dropSubscription(sub.channel, sub.client)
			delete(sub.client.channels, sub.channel)
			h.mu.Unlock()

		case msg, ok := <-messages:
			if !ok {
				h.logger.Error("pubsub channel closed")
				return
			}
			h.fanOut(msg.Channel, []byte(msg.Payload))
		}
	}
}

// Stop gracefully shuts down the hub, closing every client connection.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) fanOut(channel string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.channels[channel] {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the event.
		}
	}
}

// dropSubscription must be called with h.mu held.
func (h *Hub) dropSubscription(channel string, client *Client) {
	if subs := h.channels[channel]; subs != nil {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Register hands a client to the hub loop; a no-op once the hub stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// enqueueSubscribe and enqueueUnsubscribe guard against the hub loop having
// exited, otherwise a read pump racing shutdown would block forever.
func (h *Hub) enqueueSubscribe(sub *subscription) {
	select {
	case h.subscribe <- sub:
	case <-h.done:
	}
}

func (h *Hub) enqueueUnsubscribe(sub *subscription) {
	select {
	case h.unsubscribe <- sub:
	case <-h.done:
	}
}

// Unregister safely unregisters a client, tolerating a stopped hub.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
