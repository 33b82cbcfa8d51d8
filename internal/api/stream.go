package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// IngestEvent describes websocket payloads emitted during report ingestion.
type IngestEvent struct {
	Type      string    `json:"type"`
	JobID     string    `json:"job_id"`
	BatchID   uint      `json:"batch_id"`
	Total     int       `json:"total,omitempty"`
	Processed int       `json:"processed,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// IngestNotifier tracks active websocket clients and broadcasts ingestion
// progress events.
type IngestNotifier struct {
	mu         sync.Mutex
	clients    map[*wsClient]struct{}
	lastStatus *IngestEvent
}

// NewIngestNotifier constructs a notifier instance.
func NewIngestNotifier() *IngestNotifier {
	return &IngestNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and returns a client handle. The
// most recent status event is replayed to the new client.
func (n *IngestNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	status := n.lastStatus
	n.mu.Unlock()

	if status != nil {
		_ = client.writeJSON(*status)
	}
	return client
}

// Unregister removes the websocket client and closes the socket.
func (n *IngestNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the event to all registered websocket clients.
func (n *IngestNotifier) Broadcast(event IngestEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	if event.Type == "started" || event.Type == "progress" || event.Type == "completed" {
		snapshot := event
		n.lastStatus = &snapshot
	}
	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	n.mu.Unlock()
}

// LastStatus returns a copy of the most recent status event, nil when none.
func (n *IngestNotifier) LastStatus() *IngestEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastStatus == nil {
		return nil
	}
	copied := *n.lastStatus
	return &copied
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
