package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix is shared by every storefront topic.
const TopicPrefix = "storefront"

// Topic returns the topic for an action on an entity, e.g. storefront.cart.updated.
func Topic(entity, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, entity, action)
}

// Event is the JSON envelope of every published message. AggregateID is
// also the message key, so events about one session or order stay in order
// on a single partition.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EventOption sets optional envelope fields.
type EventOption func(*Event)

// ForAggregate names the entity the event is about.
func ForAggregate(kind, id string) EventOption {
	return func(e *Event) {
		e.AggregateType = kind
		e.AggregateID = id
	}
}

// CorrelatedWith ties the event to the request that caused it. An empty id is ignored.
func CorrelatedWith(id string) EventOption {
	return func(e *Event) { e.CorrelationID = id }
}

// WithMetadata adds a metadata entry. Empty values are skipped.
func WithMetadata(key, value string) EventOption {
	return func(e *Event) {
		if value == "" {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata[key] = value
	}
}

// NewEvent encodes data into a fresh version 1 envelope.
func NewEvent(eventType, source string, data any, opts ...EventOption) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	e := &Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Version:   1,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Data:      raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Key is the partitioning key: the aggregate id, or the event id for events
// without an aggregate.
func (e *Event) Key() []byte {
	if e.AggregateID != "" {
		return []byte(e.AggregateID)
	}
	return []byte(e.EventID)
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
