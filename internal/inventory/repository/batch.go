package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/larderhq/larder-backend/pkg/database"
	"github.com/larderhq/larder-backend/pkg/errors"
)

// InventoryBatch represents a replenishment batch of an item
type InventoryBatch struct {
	ID           string          `db:"id" json:"id"`
	ItemID       string          `db:"item_id" json:"item_id"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	CostPerUnit  decimal.Decimal `db:"cost_per_unit" json:"cost_per_unit"`
	ExpiryDate   time.Time       `db:"expiry_date" json:"expiry_date"`
	ReceivedDate time.Time       `db:"received_date" json:"received_date"`
	Supplier     *string         `db:"supplier" json:"supplier,omitempty"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// BatchRepository handles batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch
func (r *BatchRepository) Create(ctx context.Context, batch *InventoryBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	query := `
		INSERT INTO inventory_batches (id, item_id, quantity, cost_per_unit, expiry_date, received_date, supplier, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		batch.ID, batch.ItemID, batch.Quantity, batch.CostPerUnit,
		batch.ExpiryDate, batch.ReceivedDate, batch.Supplier, batch.IsActive,
	).Scan(&batch.CreatedAt, &batch.UpdatedAt)
}

// GetByID gets a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*InventoryBatch, error) {
	var batch InventoryBatch
	query := `SELECT * FROM inventory_batches WHERE id = $1`
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, err
	}
	return &batch, nil
}

// ListByItem lists active batches for an item, earliest expiry first
func (r *BatchRepository) ListByItem(ctx context.Context, itemID string) ([]*InventoryBatch, error) {
	var batches []*InventoryBatch
	query := `
		SELECT * FROM inventory_batches
		WHERE item_id = $1 AND is_active = true
		ORDER BY expiry_date
	`
	if err := r.db.SelectContext(ctx, &batches, query, itemID); err != nil {
		return nil, err
	}
	return batches, nil
}

// Update updates a batch
func (r *BatchRepository) Update(ctx context.Context, batch *InventoryBatch) error {
	query := `
		UPDATE inventory_batches SET
			quantity = $2, cost_per_unit = $3, expiry_date = $4, received_date = $5,
			supplier = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		batch.ID, batch.Quantity, batch.CostPerUnit, batch.ExpiryDate,
		batch.ReceivedDate, batch.Supplier, batch.IsActive,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}

	return nil
}

// Deactivate marks a batch as inactive (fully consumed or discarded)
func (r *BatchRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE inventory_batches SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}

	return nil
}

// GetAllActive gets all active batches, earliest expiry first
func (r *BatchRepository) GetAllActive(ctx context.Context) ([]*InventoryBatch, error) {
	var batches []*InventoryBatch
	query := `SELECT * FROM inventory_batches WHERE is_active = true ORDER BY expiry_date`
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, err
	}
	return batches, nil
}

// GetExpiringBatches gets stocked batches expiring within days
func (r *BatchRepository) GetExpiringBatches(ctx context.Context, withinDays int) ([]*InventoryBatch, error) {
	var batches []*InventoryBatch
	query := `
		SELECT * FROM inventory_batches
		WHERE is_active = true AND quantity > 0
		AND expiry_date <= NOW() + INTERVAL '1 day' * $1
		ORDER BY expiry_date
	`
	if err := r.db.SelectContext(ctx, &batches, query, withinDays); err != nil {
		return nil, err
	}
	return batches, nil
}
