package system

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const subscriberBuffer = 32

// Message is the frame written to websocket listeners.
type Message struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sentAt"`
}

// EventHub fans published events out to every connected listener. A slow
// listener loses messages instead of blocking the publisher.
type EventHub struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]chan []byte
	logger      *zap.Logger
}

func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		subscribers: make(map[uint64]chan []byte),
		logger:      logger,
	}
}

func (h *EventHub) Subscribe() (uint64, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan []byte, subscriberBuffer)
	h.subscribers[h.nextID] = ch
	return h.nextID, ch
}

func (h *EventHub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

func (h *EventHub) Publish(topic string, payload interface{}) {
	frame, err := json.Marshal(Message{Topic: topic, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("topic", topic), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- frame:
		default:
			h.logger.Warn("Dropping event for slow listener", zap.Uint64("subscriber", id), zap.String("topic", topic))
		}
	}
}

func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
