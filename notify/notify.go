package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	OrderSubmitted     EventType = "order_submitted"
	OrderStatusChanged EventType = "order_status_changed"
	TableStatusChanged EventType = "table_status_changed"
	SaleCreated        EventType = "sale_created"
)

type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	BusinessID string         `json:"businessId"`
	UserID     string         `json:"userId"`
	Subject    string         `json:"subject"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func NewEvent(typ EventType, businessID, userID, subject string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		BusinessID: businessID,
		UserID:     userID,
		Subject:    subject,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Emit publishes in the background; a failed publish is logged and never
// reaches the user operation that caused it.
func Emit(p Publisher, e Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, e); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"event": e.Type, "subject": e.Subject}).Warn("event publish failed")
		}
	}()
}
