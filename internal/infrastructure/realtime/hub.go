package realtime

import (
	"sync"
)

// DefaultBufferSize is the number of frames a slow subscriber may lag behind
const DefaultBufferSize = 16

// Subscription receives the frames published to one topic
type Subscription struct {
	topic string
	ch    chan []byte
	hub   *Hub
	once  sync.Once
}

// C yields frames until the subscription is closed
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Topic returns the subscribed topic
func (s *Subscription) Topic() string {
	return s.topic
}

// Close unsubscribes; it is safe to call more than once
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans frames out to the sockets connected to this process. Delivery is
// at most once: a subscriber whose buffer is full misses the frame.
type Hub struct {
	mu         sync.RWMutex
	topics     map[string]map[*Subscription]struct{}
	bufferSize int
	onDrop     func(topic string)
}

// NewHub creates a hub; bufferSize <= 0 uses DefaultBufferSize
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		topics:     make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// OnDrop registers a callback invoked for every dropped frame
func (h *Hub) OnDrop(fn func(topic string)) {
	h.mu.Lock()
	h.onDrop = fn
	h.mu.Unlock()
}

// Subscribe registers a new subscriber on topic
func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{topic: topic, ch: make(chan []byte, h.bufferSize), hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	return s
}

// Deliver hands frame to every subscriber of topic and returns how many got it
func (h *Hub) Deliver(topic string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.topics[topic] {
		select {
		case s.ch <- frame:
			delivered++
		default:
			if h.onDrop != nil {
				h.onDrop(topic)
			}
		}
	}
	return delivered
}

// SubscriberCount returns the number of live subscribers on topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[s.topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, s.topic)
		}
	}
	close(s.ch)
}
