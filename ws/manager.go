package ws

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrManagerStopped = errors.New("broadcast manager stopped")

// WebSocketManager fans frames out to every connected websocket and SSE client.
// Run owns registration; Publish and Deliver are safe from any goroutine.
type WebSocketManager struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan Frame
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewWebSocketManager(logger *zap.Logger) *WebSocketManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketManager{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Frame, 64),
		done:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// Run blocks until ctx is cancelled, then closes every client.
func (m *WebSocketManager) Run(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		for client := range m.clients {
			close(client.Send)
			delete(m.clients, client)
		}
		m.mu.Unlock()
		close(m.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = struct{}{}
			total := len(m.clients)
			m.mu.Unlock()
			m.logger.Debug("client registered",
				zap.String("client_id", client.ID),
				zap.String("user_id", client.UserID),
				zap.Int("total", total))

		case client := <-m.unregister:
			m.remove(client)

		case frame := <-m.broadcast:
			m.broadcastMessage(frame)
		}
	}
}

func (m *WebSocketManager) remove(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[client]; ok {
		close(client.Send)
		delete(m.clients, client)
		m.logger.Debug("client unregistered",
			zap.String("client_id", client.ID),
			zap.Int("total", len(m.clients)))
	}
}

// broadcastMessage never blocks: a client whose buffer is full is dropped.
func (m *WebSocketManager) broadcastMessage(frame Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for client := range m.clients {
		select {
		case client.Send <- frame:
		default:
			close(client.Send)
			delete(m.clients, client)
			m.logger.Warn("client dropped, send buffer full", zap.String("client_id", client.ID))
		}
	}
}

// Publish broadcasts events as a single frame to local clients.
func (m *WebSocketManager) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	return m.Deliver(ctx, NewFrame(events...))
}

// Deliver hands an already built frame to local clients. The redis relay uses it
// for frames published by other instances.
func (m *WebSocketManager) Deliver(ctx context.Context, frame Frame) error {
	select {
	case <-m.done:
		return ErrManagerStopped
	default:
	}

	select {
	case m.broadcast <- frame:
		return nil
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a connection-less client, used by the SSE stream.
func (m *WebSocketManager) Subscribe(ctx context.Context, id, userID string) (*Client, error) {
	client := newClient(id, userID, nil, m)
	if err := m.add(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (m *WebSocketManager) Unsubscribe(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

func (m *WebSocketManager) add(ctx context.Context, client *Client) error {
	select {
	case m.register <- client:
		return nil
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *WebSocketManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *WebSocketManager) IsUserConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.clients {
		if client.UserID == userID {
			return true
		}
	}
	return false
}
