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

// InventoryItem represents a catalog item
type InventoryItem struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	Category    string          `db:"category" json:"category"`
	Unit        string          `db:"unit" json:"unit"`
	MinStock    decimal.Decimal `db:"min_stock" json:"min_stock"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time      `db:"deleted_at" json:"-"`
}

// ItemRepository handles inventory item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create creates a new inventory item
func (r *ItemRepository) Create(ctx context.Context, item *InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO inventory_items (id, name, description, category, unit, min_stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		item.ID, item.Name, item.Description, item.Category, item.Unit,
		item.MinStock, item.IsActive,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

// GetByID gets an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*InventoryItem, error) {
	var item InventoryItem
	query := `
		SELECT id, name, description, category, unit, min_stock, is_active, created_at, updated_at
		FROM inventory_items WHERE id = $1 AND deleted_at IS NULL
	`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("item")
		}
		return nil, err
	}
	return &item, nil
}

// List lists inventory items with pagination
func (r *ItemRepository) List(ctx context.Context, page, perPage int, category string) ([]*InventoryItem, int64, error) {
	var total int64

	countQuery := `SELECT COUNT(*) FROM inventory_items WHERE deleted_at IS NULL`
	args := []interface{}{}

	if category != "" {
		countQuery += ` AND category = $1`
		args = append(args, category)
	}

	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, name, description, category, unit, min_stock, is_active, created_at, updated_at
		FROM inventory_items WHERE deleted_at IS NULL
	`

	if category != "" {
		query += ` AND category = $1 ORDER BY name LIMIT $2 OFFSET $3`
		args = append(args, perPage, offset)
	} else {
		query += ` ORDER BY name LIMIT $1 OFFSET $2`
		args = append(args, perPage, offset)
	}

	var items []*InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Update updates an inventory item
func (r *ItemRepository) Update(ctx context.Context, item *InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			name = $2, description = $3, category = $4, unit = $5,
			min_stock = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.Category, item.Unit,
		item.MinStock, item.IsActive,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// SoftDelete soft deletes an item
func (r *ItemRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE inventory_items SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// GetAllActive gets all active items
func (r *ItemRepository) GetAllActive(ctx context.Context) ([]*InventoryItem, error) {
	var items []*InventoryItem
	query := `
		SELECT id, name, description, category, unit, min_stock, is_active, created_at, updated_at
		FROM inventory_items WHERE deleted_at IS NULL AND is_active = true ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}
