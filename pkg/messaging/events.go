package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	// Inventory events
	EventMovementRecorded = "inventory.movement.recorded"
	EventMovementReversed = "inventory.movement.reversed"
	EventBatchReceived    = "inventory.batch.received"
	EventAlertGenerated   = "inventory.alert.generated"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Inventory Events

// MovementRecordedEvent is published when a stock movement is recorded
type MovementRecordedEvent struct {
	MovementID   string          `json:"movement_id"`
	ItemID       string          `json:"item_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason"`
	PerformedBy  string          `json:"performed_by,omitempty"`
}

// MovementReversedEvent is published when a stock movement is reversed
type MovementReversedEvent struct {
	MovementID string `json:"movement_id"`
	ItemID     string `json:"item_id"`
}

// BatchReceivedEvent is published when a replenishment batch is recorded
type BatchReceivedEvent struct {
	BatchID     string          `json:"batch_id"`
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	ExpiryDate  time.Time       `json:"expiry_date"`
}

// AlertGeneratedEvent is published when an alert is generated
type AlertGeneratedEvent struct {
	AlertID   string `json:"alert_id"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	ItemID    string `json:"item_id,omitempty"`
	BatchID   string `json:"batch_id,omitempty"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
