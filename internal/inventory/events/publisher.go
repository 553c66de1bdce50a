package events

import (
	"context"

	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishMovementRecorded publishes a movement recorded event
func (p *InventoryEventPublisher) PublishMovementRecorded(ctx context.Context, movement *repository.StockMovement) {
	if p == nil {
		return
	}

	reason := ""
	if movement.Reason != nil {
		reason = *movement.Reason
	}
	performedBy := ""
	if movement.PerformedBy != nil {
		performedBy = *movement.PerformedBy
	}

	data := messaging.MovementRecordedEvent{
		MovementID:   movement.ID,
		ItemID:       movement.ItemID,
		MovementType: movement.MovementType,
		Quantity:     movement.Quantity,
		Reason:       reason,
		PerformedBy:  performedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventMovementRecorded, data); err != nil {
		p.logger.Error().Err(err).Str("movement_id", movement.ID).Msg("failed to publish movement recorded event")
	}
}

// PublishMovementReversed publishes a movement reversed event
func (p *InventoryEventPublisher) PublishMovementReversed(ctx context.Context, movement *repository.StockMovement) {
	if p == nil {
		return
	}

	data := messaging.MovementReversedEvent{
		MovementID: movement.ID,
		ItemID:     movement.ItemID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventMovementReversed, data); err != nil {
		p.logger.Error().Err(err).Str("movement_id", movement.ID).Msg("failed to publish movement reversed event")
	}
}

// PublishBatchReceived publishes a batch received event
func (p *InventoryEventPublisher) PublishBatchReceived(ctx context.Context, batch *repository.InventoryBatch) {
	if p == nil {
		return
	}

	data := messaging.BatchReceivedEvent{
		BatchID:     batch.ID,
		ItemID:      batch.ItemID,
		Quantity:    batch.Quantity,
		CostPerUnit: batch.CostPerUnit,
		ExpiryDate:  batch.ExpiryDate,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchReceived, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("failed to publish batch received event")
	}
}

// PublishAlertGenerated publishes an alert generated event
func (p *InventoryEventPublisher) PublishAlertGenerated(ctx context.Context, alert *repository.InventoryAlert) {
	if p == nil {
		return
	}

	data := messaging.AlertGeneratedEvent{
		AlertID:   alert.ID,
		AlertType: alert.AlertType,
		Severity:  alert.Severity,
		Message:   alert.Message,
		ItemID:    alert.ItemID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to publish alert generated event")
	}
}
