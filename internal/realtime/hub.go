package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/repository"
	"playstore-predictor/pkg/common"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/postgres"
	"sync"

	"github.com/google/uuid"
)

var ErrHubClosed = errors.New("realtime hub closed")

// Source produces raw notifications until ctx is done. postgres.Listener is
// the production source.
type Source interface {
	Listen(ctx context.Context, handle func(postgres.Notification), onConnect func(reconnected bool)) error
}

// Hub fans change notifications from one Source out to any number of
// subscriptions. Delivery to a subscription blocks until it is received or
// the subscription is closed, so an open subscription never misses an event.
type Hub struct {
	source Source
	log    *logger.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[uuid.UUID]*subscription
	closed bool
}

func NewHub(source Source, buffer int, log *logger.Logger) *Hub {
	if buffer < 0 {
		buffer = 0
	}
	return &Hub{
		source: source,
		log:    log,
		buffer: buffer,
		subs:   make(map[uuid.UUID]*subscription),
	}
}

// Run consumes the source until ctx is cancelled, then closes every
// remaining subscription.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	return h.source.Listen(ctx, h.handle, func(reconnected bool) {
		if reconnected {
			h.Publish(dto.ChangeEvent{Op: common.ChangeOpResync})
		}
	})
}

func (h *Hub) handle(n postgres.Notification) {
	event, err := DecodeEvent(n.Payload)
	if err != nil {
		h.log.Warn("Undecodable change notification, forwarding as resync",
			logger.StringField("payload", n.Payload),
			logger.ErrorField(err))
		event = dto.ChangeEvent{Op: common.ChangeOpResync}
	}
	h.Publish(event)
}

// DecodeEvent parses the trigger payload {"op": "...", "id": N}.
func DecodeEvent(payload string) (dto.ChangeEvent, error) {
	var event dto.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return dto.ChangeEvent{}, err
	}
	switch event.Op {
	case common.ChangeOpInsert, common.ChangeOpUpdate, common.ChangeOpDelete:
		return event, nil
	default:
		return dto.ChangeEvent{}, errors.New("unknown change operation " + event.Op)
	}
}

// Publish delivers event to every open subscription.
func (h *Hub) Publish(event dto.ChangeEvent) {
	h.mu.RLock()
	targets := make([]*subscription, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.deliver(event)
	}
}

func (h *Hub) Subscribe(ctx context.Context) (repository.Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	s := &subscription{
		id:   uuid.New(),
		hub:  h,
		ch:   make(chan dto.ChangeEvent, h.buffer),
		done: make(chan struct{}),
	}
	h.subs[s.id] = s
	h.log.DebugContext(ctx, "Change subscription opened", logger.StringField("subscription_id", s.id.String()))
	return s, nil
}

// Subscribers reports the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id uuid.UUID) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[uuid.UUID]*subscription)
	h.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}
}

type subscription struct {
	id  uuid.UUID
	hub *Hub

	// sendMu serialises deliveries with Close so ch is never written after
	// it is closed.
	sendMu sync.Mutex
	ch     chan dto.ChangeEvent
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) C() <-chan dto.ChangeEvent {
	return s.ch
}

func (s *subscription) deliver(event dto.ChangeEvent) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- event:
	case <-s.done:
	}
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s.id)
		s.sendMu.Lock()
		close(s.ch)
		s.sendMu.Unlock()
	})
	return nil
}
