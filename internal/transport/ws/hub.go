package ws

import (
	"encoding/json"
	"sync"

	"wildscrap.game/internal/protocol"
	"wildscrap.game/internal/sim/game"
)

// Hub fans server messages out to every connected client. It implements
// game.Notifier so the loop can report save/load outcomes.
type Hub struct {
	mu      sync.Mutex
	nextID  uint64
	clients map[uint64]chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: map[uint64]chan []byte{}}
}

func (h *Hub) add(out chan []byte) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.clients[h.nextID] = out
	return h.nextID
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.clients {
		sendLatest(out, b)
	}
}

func (h *Hub) Notify(n game.Notice) {
	h.Broadcast(protocol.NoticeMsg{
		Type:            protocol.TypeNotice,
		ProtocolVersion: protocol.Version,
		Level:           n.Level,
		Op:              string(n.Op),
		Text:            n.Text,
	})
}

// sendLatest never blocks: when the queue is full the oldest message is dropped.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
