package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	budgetID := uuid.New()
	if delivered := hub.PublishBudgetGenerated(userID, BudgetGenerated{BudgetID: budgetID, TotalBudget: 60000}); delivered != 1 {
		t.Fatalf("expected one delivery, got %d", delivered)
	}

	select {
	case event := <-ch:
		if event.Type != EventBudgetGenerated {
			t.Fatalf("expected event type %s, got %s", EventBudgetGenerated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
		payload, ok := event.Data.(BudgetGenerated)
		if !ok || payload.BudgetID != budgetID {
			t.Fatalf("unexpected payload %#v", event.Data)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что события не уходят чужим подписчикам.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	if delivered := hub.Publish(uuid.New(), Event{Type: "test"}); delivered != 0 {
		t.Fatalf("expected no deliveries, got %d", delivered)
	}
	select {
	case event := <-ch:
		t.Fatalf("unexpected event %v", event)
	default:
	}
}

// TestHubDropsWhenBufferFull проверяет, что медленный подписчик не блокирует публикацию.
func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	_, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	for i := 0; i < subscriberBuffer; i++ {
		hub.Publish(userID, Event{Type: "test"})
	}
	if delivered := hub.Publish(userID, Event{Type: "test"}); delivered != 0 {
		t.Fatalf("expected the event to be dropped, got %d deliveries", delivered)
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}
