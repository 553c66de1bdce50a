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

// Alert types
const (
	AlertTypeExpiry   = "expiry"
	AlertTypeLowStock = "low_stock"
)

// Alert severities
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// InventoryAlert represents a generated inventory alert
type InventoryAlert struct {
	ID              string           `db:"id" json:"id"`
	ItemID          string           `db:"item_id" json:"item_id"`
	ItemName        string           `db:"item_name" json:"item_name"`
	AlertType       string           `db:"alert_type" json:"alert_type"`
	Severity        string           `db:"severity" json:"severity"`
	Message         string           `db:"message" json:"message"`
	DaysUntilExpiry *int             `db:"days_until_expiry" json:"days_until_expiry,omitempty"`
	CurrentStock    *decimal.Decimal `db:"current_stock" json:"current_stock,omitempty"`
	MinStock        *decimal.Decimal `db:"min_stock" json:"min_stock,omitempty"`
	Acknowledged    bool             `db:"acknowledged" json:"acknowledged"`
	AcknowledgedAt  *time.Time       `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// AlertRepository handles alert persistence
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create creates a new alert
func (r *AlertRepository) Create(ctx context.Context, alert *InventoryAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	query := `
		INSERT INTO inventory_alerts (id, item_id, item_name, alert_type, severity, message, days_until_expiry, current_stock, min_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		alert.ID, alert.ItemID, alert.ItemName, alert.AlertType, alert.Severity,
		alert.Message, alert.DaysUntilExpiry, alert.CurrentStock, alert.MinStock,
	).Scan(&alert.CreatedAt)
}

// GetByID gets an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*InventoryAlert, error) {
	var alert InventoryAlert
	query := `SELECT * FROM inventory_alerts WHERE id = $1`
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("alert")
		}
		return nil, err
	}
	return &alert, nil
}

// List lists alerts, unacknowledged first, newest first within each group
func (r *AlertRepository) List(ctx context.Context, includeAcknowledged bool, limit int) ([]*InventoryAlert, error) {
	query := `SELECT * FROM inventory_alerts`
	if !includeAcknowledged {
		query += ` WHERE acknowledged = false`
	}
	query += ` ORDER BY acknowledged, created_at DESC LIMIT $1`

	var alerts []*InventoryAlert
	if err := r.db.SelectContext(ctx, &alerts, query, limit); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Acknowledge marks an alert as acknowledged
func (r *AlertRepository) Acknowledge(ctx context.Context, id string) error {
	query := `
		UPDATE inventory_alerts SET acknowledged = true, acknowledged_at = NOW()
		WHERE id = $1 AND acknowledged = false
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("alert")
	}

	return nil
}

// HasOpenAlert reports whether the item already has an unacknowledged alert of the given type
func (r *AlertRepository) HasOpenAlert(ctx context.Context, itemID, alertType string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM inventory_alerts
		WHERE item_id = $1 AND alert_type = $2 AND acknowledged = false
	`
	if err := r.db.GetContext(ctx, &count, query, itemID, alertType); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAcknowledgedBefore deletes acknowledged alerts older than the cutoff
func (r *AlertRepository) DeleteAcknowledgedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM inventory_alerts WHERE acknowledged = true AND created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
