package sse

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/fritterapp/fritter-server/internal/id"
)

const (
	queueSize         = 1000
	clientBufferSize  = 100
	heartbeatInterval = 30 * time.Second
)

// Client is one open event stream. A user may hold several, one per tab or device.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	UserID      string
}

// Manager routes queued events to the streams of the user they address.
type Manager struct {
	logger    *slog.Logger
	queue     chan Event
	heartbeat time.Duration
	loops     sync.WaitGroup

	// mu guards both indexes; byUser holds the same clients as byID.
	mu     sync.RWMutex
	byID   map[string]*Client
	byUser map[string]map[string]*Client

	// stopMu orders Emit against the close of queue in Shutdown.
	stopMu  sync.RWMutex
	stopped bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		queue:     make(chan Event, queueSize),
		heartbeat: heartbeatInterval,
		byID:      make(map[string]*Client),
		byUser:    make(map[string]map[string]*Client),
	}
}

// Start runs the delivery loop until ctx is cancelled or Shutdown closes the
// queue. Call it once, in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.loops.Add(1)
	defer m.loops.Done()

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(event)

		case <-ticker.C:
			m.deliver(NewHeartbeatEvent())

		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.closeAll()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is still queued and closes
// every stream. Later calls are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopMu.Lock()
	if m.stopped {
		m.stopMu.Unlock()
		return nil
	}
	m.stopped = true
	close(m.queue)
	m.stopMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range m.queue {
			m.deliver(event)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("SSE drain timed out, pending events dropped")
	}

	m.loops.Wait()
	m.closeAll()
	return nil
}

// recipients returns the clients an event is addressed to. The caller holds mu.
func (m *Manager) recipients(event Event) []*Client {
	if event.UserID == "" {
		return slices.Collect(maps.Values(m.byID))
	}
	return slices.Collect(maps.Values(m.byUser[event.UserID]))
}

func (m *Manager) deliver(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := m.recipients(event)
	dropped := 0
	for _, client := range targets {
		// A stuck client loses the event rather than stalling everyone else.
		select {
		case client.EventChan <- event:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		m.logger.Warn("SSE events dropped for slow clients",
			slog.String("event_type", string(event.Type)),
			slog.Int("dropped", dropped))
	}
	if event.Type != EventHeartbeat {
		m.logger.Debug("SSE event delivered",
			slog.String("event_type", string(event.Type)),
			slog.String("user_id", event.UserID),
			slog.Int("clients", len(targets)-dropped))
	}
}

// Connect opens a stream for userID.
func (m *Manager) Connect(userID string) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	client := &Client{
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
		ID:          clientID,
		UserID:      userID,
	}

	m.mu.Lock()
	m.byID[clientID] = client
	if m.byUser[userID] == nil {
		m.byUser[userID] = make(map[string]*Client)
	}
	m.byUser[userID][clientID] = client
	total := len(m.byID)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("user_id", userID),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect closes one stream. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.byID[clientID]
	if ok {
		m.remove(client)
	}
	m.mu.Unlock()

	if ok {
		m.logger.Info("SSE client disconnected",
			slog.String("client_id", clientID),
			slog.Duration("duration", time.Since(client.ConnectedAt)))
	}
}

// DisconnectUser closes every stream held by userID and returns how many
// there were. Called when the account is deleted.
func (m *Manager) DisconnectUser(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients := m.byUser[userID]
	n := len(clients)
	for _, client := range clients {
		m.remove(client)
	}
	return n
}

// remove drops client from both indexes and closes its channels.
// The caller holds mu for writing.
func (m *Manager) remove(client *Client) {
	delete(m.byID, client.ID)
	if streams := m.byUser[client.UserID]; streams != nil {
		delete(streams, client.ID)
		if len(streams) == 0 {
			delete(m.byUser, client.UserID)
		}
	}
	close(client.Done)
	close(client.EventChan)
}

// Emit queues an event. Values that are not an Event are logged and dropped,
// as is everything emitted after Shutdown.
func (m *Manager) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		m.logger.Error("SSE emit with non-event value")
		return
	}

	m.stopMu.RLock()
	defer m.stopMu.RUnlock()
	if m.stopped {
		return
	}

	select {
	case m.queue <- evt:
	default:
		m.logger.Error("SSE queue full, dropping event",
			slog.String("event_type", string(evt.Type)))
	}
}

// EmitToUser queues event for userID only.
func (m *Manager) EmitToUser(userID string, event Event) {
	event.UserID = userID
	m.Emit(event)
}

// ClientCount returns the number of open streams.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.byID {
		m.remove(client)
	}
}
