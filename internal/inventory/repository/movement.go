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

// StockMovement represents a manual stock adjustment
type StockMovement struct {
	ID           string          `db:"id" json:"id"`
	ItemID       string          `db:"item_id" json:"item_id"`
	MovementType string          `db:"movement_type" json:"movement_type"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Reason       *string         `db:"reason" json:"reason,omitempty"`
	PerformedBy  *string         `db:"performed_by" json:"performed_by,omitempty"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// MovementRepository handles stock movement persistence
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create records a stock movement
func (r *MovementRepository) Create(ctx context.Context, movement *StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}

	query := `
		INSERT INTO stock_movements (id, item_id, movement_type, quantity, reason, performed_by, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		movement.ID, movement.ItemID, movement.MovementType, movement.Quantity,
		movement.Reason, movement.PerformedBy, movement.IsActive,
	).Scan(&movement.CreatedAt)
}

// GetByID gets a movement by ID
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*StockMovement, error) {
	var movement StockMovement
	query := `SELECT * FROM stock_movements WHERE id = $1`
	if err := r.db.GetContext(ctx, &movement, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("movement")
		}
		return nil, err
	}
	return &movement, nil
}

// ListByDay lists active movements recorded on the given calendar day, oldest first.
// The day boundary follows the given time's location.
func (r *MovementRepository) ListByDay(ctx context.Context, day time.Time) ([]*StockMovement, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var movements []*StockMovement
	query := `
		SELECT * FROM stock_movements
		WHERE is_active = true AND created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &movements, query, start, end); err != nil {
		return nil, err
	}
	return movements, nil
}

// ListByItem lists movements for an item, newest first
func (r *MovementRepository) ListByItem(ctx context.Context, itemID string, limit int) ([]*StockMovement, error) {
	var movements []*StockMovement
	query := `
		SELECT * FROM stock_movements
		WHERE item_id = $1 AND is_active = true
		ORDER BY created_at DESC LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &movements, query, itemID, limit); err != nil {
		return nil, err
	}
	return movements, nil
}

// Deactivate marks a movement as reversed
func (r *MovementRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE stock_movements SET is_active = false WHERE id = $1 AND is_active = true`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("movement")
	}

	return nil
}
