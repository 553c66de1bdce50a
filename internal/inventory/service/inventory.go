package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/larderhq/larder-backend/internal/inventory/engine"
	"github.com/larderhq/larder-backend/internal/inventory/events"
	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
)

// InventoryService handles inventory business logic. Valuation and
// aggregation are delegated to the engine package over snapshots loaded
// from the repositories.
type InventoryService struct {
	itemRepo     *repository.ItemRepository
	batchRepo    *repository.BatchRepository
	movementRepo *repository.MovementRepository
	alertRepo    *repository.AlertRepository
	publisher    *events.InventoryEventPublisher
	logger       *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	itemRepo *repository.ItemRepository,
	batchRepo *repository.BatchRepository,
	movementRepo *repository.MovementRepository,
	alertRepo *repository.AlertRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		itemRepo:     itemRepo,
		batchRepo:    batchRepo,
		movementRepo: movementRepo,
		alertRepo:    alertRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// ItemWithValuation is an item enriched with its FEFO valuation
type ItemWithValuation struct {
	*repository.InventoryItem
	OnHandQuantity decimal.Decimal              `json:"on_hand_quantity"`
	TotalValue     decimal.Decimal              `json:"total_value"`
	AverageCost    decimal.Decimal              `json:"average_cost"`
	LowStock       bool                         `json:"low_stock"`
	ExpiryStatus   *engine.ExpiryStatus         `json:"expiry_status,omitempty"`
	Batches        []*repository.InventoryBatch `json:"batches"`
}

// Item operations

// CreateItem creates a new inventory item
func (s *InventoryService) CreateItem(ctx context.Context, item *repository.InventoryItem) error {
	return s.itemRepo.Create(ctx, item)
}

// GetItem gets an item with its batches and valuation
func (s *InventoryService) GetItem(ctx context.Context, id string) (*ItemWithValuation, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	batches, err := s.batchRepo.ListByItem(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.enrichItem(item, batches, time.Now()), nil
}

// ListItems lists items with their valuations
func (s *InventoryService) ListItems(ctx context.Context, page, perPage int, category string) ([]*ItemWithValuation, int64, error) {
	items, total, err := s.itemRepo.List(ctx, page, perPage, category)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	result := make([]*ItemWithValuation, len(items))
	for i, item := range items {
		batches, err := s.batchRepo.ListByItem(ctx, item.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to load batches for item")
		}
		result[i] = s.enrichItem(item, batches, now)
	}

	return result, total, nil
}

// UpdateItem updates an inventory item
func (s *InventoryService) UpdateItem(ctx context.Context, item *repository.InventoryItem) error {
	return s.itemRepo.Update(ctx, item)
}

// DeleteItem soft deletes an inventory item
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	return s.itemRepo.SoftDelete(ctx, id)
}

// enrichItem values an item's stock from its batches
func (s *InventoryService) enrichItem(item *repository.InventoryItem, batches []*repository.InventoryBatch, now time.Time) *ItemWithValuation {
	valuation := engine.ValueItem(toEngineItem(item), toEngineBatches(batches), now)

	return &ItemWithValuation{
		InventoryItem:  item,
		OnHandQuantity: valuation.OnHandQuantity,
		TotalValue:     valuation.TotalValue,
		AverageCost:    valuation.AverageCost,
		LowStock:       valuation.LowStock,
		ExpiryStatus:   valuation.ExpiryStatus,
		Batches:        batches,
	}
}

// Batch operations

// CreateBatch records a replenishment batch
func (s *InventoryService) CreateBatch(ctx context.Context, batch *repository.InventoryBatch) error {
	// Item must exist and be live
	if _, err := s.itemRepo.GetByID(ctx, batch.ItemID); err != nil {
		return err
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return err
	}

	s.publisher.PublishBatchReceived(ctx, batch)
	return nil
}

// GetBatch gets a batch by ID
func (s *InventoryService) GetBatch(ctx context.Context, id string) (*repository.InventoryBatch, error) {
	return s.batchRepo.GetByID(ctx, id)
}

// ListBatchesByItem lists active batches for an item, earliest expiry first
func (s *InventoryService) ListBatchesByItem(ctx context.Context, itemID string) ([]*repository.InventoryBatch, error) {
	return s.batchRepo.ListByItem(ctx, itemID)
}

// UpdateBatch updates a batch
func (s *InventoryService) UpdateBatch(ctx context.Context, batch *repository.InventoryBatch) error {
	return s.batchRepo.Update(ctx, batch)
}

// DeleteBatch deactivates a batch
func (s *InventoryService) DeleteBatch(ctx context.Context, id string) error {
	return s.batchRepo.Deactivate(ctx, id)
}

// Movement operations

// RecordMovement records a manual stock adjustment
func (s *InventoryService) RecordMovement(ctx context.Context, movement *repository.StockMovement) error {
	if !engine.MovementType(movement.MovementType).IsValid() {
		return errors.BadRequest("unknown movement type: " + movement.MovementType)
	}
	if !movement.Quantity.IsPositive() {
		return errors.BadRequest("movement quantity must be positive")
	}

	if _, err := s.itemRepo.GetByID(ctx, movement.ItemID); err != nil {
		return err
	}

	movement.IsActive = true
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return err
	}

	s.publisher.PublishMovementRecorded(ctx, movement)
	return nil
}

// GetMovement gets a movement by ID
func (s *InventoryService) GetMovement(ctx context.Context, id string) (*repository.StockMovement, error) {
	return s.movementRepo.GetByID(ctx, id)
}

// ReverseMovement reverses a previously recorded movement. The record is
// kept but excluded from all aggregations from now on.
func (s *InventoryService) ReverseMovement(ctx context.Context, id string) error {
	movement, err := s.movementRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !movement.IsActive {
		return errors.Conflict("movement is already reversed")
	}

	if err := s.movementRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishMovementReversed(ctx, movement)
	return nil
}

// ListMovementsByItem lists movements for an item, newest first
func (s *InventoryService) ListMovementsByItem(ctx context.Context, itemID string, limit int) ([]*repository.StockMovement, error) {
	return s.movementRepo.ListByItem(ctx, itemID, limit)
}

// GetDaySummary aggregates the given day's movements
func (s *InventoryService) GetDaySummary(ctx context.Context, day time.Time) (*engine.MovementSummary, error) {
	movements, err := s.movementRepo.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	summary := engine.SummarizeDay(toEngineMovements(movements), day)
	return &summary, nil
}

// Dashboard operations

// GetDashboard builds the dashboard read model from a fresh snapshot
func (s *InventoryService) GetDashboard(ctx context.Context) (*engine.DashboardMetrics, error) {
	now := time.Now()

	items, err := s.itemRepo.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	batches, err := s.batchRepo.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.ListByDay(ctx, now)
	if err != nil {
		return nil, err
	}

	metrics := engine.BuildDashboard(
		toEngineItems(items),
		toEngineBatches(batches),
		toEngineMovements(movements),
		now,
	)
	return &metrics, nil
}

// GetCatalogValuation values the full catalog
func (s *InventoryService) GetCatalogValuation(ctx context.Context) (*engine.CatalogValuation, error) {
	now := time.Now()

	items, err := s.itemRepo.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	batches, err := s.batchRepo.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	catalog := engine.ValueCatalog(toEngineItems(items), toEngineBatches(batches), now)
	return &catalog, nil
}

// Alert operations

// ListAlerts lists alerts, unacknowledged first
func (s *InventoryService) ListAlerts(ctx context.Context, includeAcknowledged bool, limit int) ([]*repository.InventoryAlert, error) {
	return s.alertRepo.List(ctx, includeAcknowledged, limit)
}

// AcknowledgeAlert marks an alert as acknowledged
func (s *InventoryService) AcknowledgeAlert(ctx context.Context, id string) error {
	return s.alertRepo.Acknowledge(ctx, id)
}

// Repository-to-engine mapping

func toEngineItem(item *repository.InventoryItem) engine.Item {
	return engine.Item{
		ID:       item.ID,
		Name:     item.Name,
		MinStock: item.MinStock,
		Active:   item.IsActive,
	}
}

func toEngineItems(items []*repository.InventoryItem) []engine.Item {
	out := make([]engine.Item, len(items))
	for i, item := range items {
		out[i] = toEngineItem(item)
	}
	return out
}

func toEngineBatches(batches []*repository.InventoryBatch) []engine.Batch {
	out := make([]engine.Batch, len(batches))
	for i, b := range batches {
		out[i] = engine.Batch{
			ID:          b.ID,
			ItemID:      b.ItemID,
			Quantity:    b.Quantity,
			CostPerUnit: b.CostPerUnit,
			ExpiryDate:  b.ExpiryDate,
			Active:      b.IsActive,
		}
	}
	return out
}

func toEngineMovements(movements []*repository.StockMovement) []engine.Movement {
	out := make([]engine.Movement, len(movements))
	for i, m := range movements {
		reason := ""
		if m.Reason != nil {
			reason = *m.Reason
		}
		out[i] = engine.Movement{
			ID:        m.ID,
			ItemID:    m.ItemID,
			Type:      engine.MovementType(m.MovementType),
			Quantity:  m.Quantity,
			Reason:    reason,
			CreatedAt: m.CreatedAt,
			Active:    m.IsActive,
		}
	}
	return out
}
