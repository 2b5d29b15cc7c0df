package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventConnected       = "connected"
	EventBudgetGenerated = "budget_generated"

	subscriberBuffer = 10
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// BudgetGenerated is the payload of EventBudgetGenerated.
type BudgetGenerated struct {
	BudgetID        uuid.UUID `json:"budgetId"`
	TotalBudget     int64     `json:"totalBudget"`
	AIGenerated     bool      `json:"aiGenerated"`
	Confidence      float64   `json:"confidence"`
	ValidationScore int       `json:"validationScore"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам пользователя и возвращает число доставок.
// Подписчик с заполненным буфером событие пропускает.
func (h *Hub) Publish(userID uuid.UUID, event Event) int {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}

	return delivered
}

// PublishBudgetGenerated уведомляет пользователя о новом бюджете.
func (h *Hub) PublishBudgetGenerated(userID uuid.UUID, payload BudgetGenerated) int {
	return h.Publish(userID, Event{Type: EventBudgetGenerated, Data: payload})
}
