package service

import (
	"context"
	"fmt"
	"time"

	"github.com/larderhq/larder-backend/internal/inventory/engine"
	"github.com/larderhq/larder-backend/internal/inventory/events"
	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/pkg/logger"
)

// AlertScanner scans the catalog and generates expiry and low stock alerts.
// Classification is delegated to the engine so the scanner and the dashboard
// always agree on what counts as expiring or low.
type AlertScanner struct {
	itemRepo    *repository.ItemRepository
	batchRepo   *repository.BatchRepository
	alertRepo   *repository.AlertRepository
	publisher   *events.InventoryEventPublisher
	horizonDays int
	logger      *logger.Logger
}

// NewAlertScanner creates a new alert scanner. horizonDays bounds how far
// ahead expiry alerts are raised.
func NewAlertScanner(
	itemRepo *repository.ItemRepository,
	batchRepo *repository.BatchRepository,
	alertRepo *repository.AlertRepository,
	publisher *events.InventoryEventPublisher,
	horizonDays int,
	log *logger.Logger,
) *AlertScanner {
	return &AlertScanner{
		itemRepo:    itemRepo,
		batchRepo:   batchRepo,
		alertRepo:   alertRepo,
		publisher:   publisher,
		horizonDays: horizonDays,
		logger:      log,
	}
}

// acknowledgedRetention is how long acknowledged alerts are kept before
// the scan cycle sweeps them.
const acknowledgedRetention = 30 * 24 * time.Hour

// ScanAll runs all alert scans. Logs errors but continues scanning.
func (s *AlertScanner) ScanAll(ctx context.Context) error {
	scanners := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"expiry", s.scanExpiry},
		{"low_stock", s.scanLowStock},
		{"sweep", s.sweepAcknowledged},
	}

	var lastErr error
	for _, scanner := range scanners {
		if err := scanner.fn(ctx); err != nil {
			s.logger.Error().Err(err).Str("scanner", scanner.name).Msg("alert scan failed")
			lastErr = err
		}
	}

	return lastErr
}

// sweepAcknowledged removes acknowledged alerts past their retention window
func (s *AlertScanner) sweepAcknowledged(ctx context.Context) error {
	deleted, err := s.alertRepo.DeleteAcknowledgedBefore(ctx, time.Now().Add(-acknowledgedRetention))
	if err != nil {
		return fmt.Errorf("sweepAcknowledged: %w", err)
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("swept acknowledged alerts")
	}
	return nil
}

// loadValuations values every active item against the current batch snapshot
func (s *AlertScanner) loadValuations(ctx context.Context) ([]engine.ItemValuation, error) {
	items, err := s.itemRepo.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active items: %w", err)
	}

	batches, err := s.batchRepo.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active batches: %w", err)
	}

	catalog := engine.ValueCatalog(toEngineItems(items), toEngineBatches(batches), time.Now())
	return catalog.Items, nil
}

// scanExpiry raises alerts for items whose worst batch is expired or
// expiring within the horizon
func (s *AlertScanner) scanExpiry(ctx context.Context) error {
	valuations, err := s.loadValuations(ctx)
	if err != nil {
		return fmt.Errorf("scanExpiry: %w", err)
	}

	for _, v := range valuations {
		if v.ExpiryStatus == nil {
			continue
		}

		var severity, message string
		days := v.ExpiryStatus.Days

		switch v.ExpiryStatus.Category {
		case engine.ExpiryExpired:
			severity = repository.SeverityCritical
			message = fmt.Sprintf("%s expired %d day(s) ago", v.ItemName, days)
		case engine.ExpiryCritical:
			severity = repository.SeverityCritical
			message = fmt.Sprintf("%s expires in %d day(s)", v.ItemName, days)
		case engine.ExpirySoon:
			if days > s.horizonDays {
				continue
			}
			severity = repository.SeverityWarning
			message = fmt.Sprintf("%s expires in %d day(s)", v.ItemName, days)
		default:
			continue
		}

		exists, err := s.alertRepo.HasOpenAlert(ctx, v.ItemID, repository.AlertTypeExpiry)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", v.ItemID).Msg("scanExpiry: failed to check existing alert")
			continue
		}
		if exists {
			continue
		}

		alert := &repository.InventoryAlert{
			ItemID:          v.ItemID,
			ItemName:        v.ItemName,
			AlertType:       repository.AlertTypeExpiry,
			Severity:        severity,
			Message:         message,
			DaysUntilExpiry: &days,
		}

		if err := s.alertRepo.Create(ctx, alert); err != nil {
			s.logger.Error().Err(err).Str("item_id", v.ItemID).Msg("scanExpiry: failed to create alert")
			continue
		}

		s.publisher.PublishAlertGenerated(ctx, alert)
	}

	return nil
}

// scanLowStock raises alerts for items at or below their minimum stock
func (s *AlertScanner) scanLowStock(ctx context.Context) error {
	items, err := s.itemRepo.GetAllActive(ctx)
	if err != nil {
		return fmt.Errorf("scanLowStock: get active items: %w", err)
	}

	minStockByItem := make(map[string]*repository.InventoryItem, len(items))
	for _, item := range items {
		minStockByItem[item.ID] = item
	}

	valuations, err := s.loadValuations(ctx)
	if err != nil {
		return fmt.Errorf("scanLowStock: %w", err)
	}

	for _, v := range valuations {
		if !v.LowStock {
			continue
		}

		item, ok := minStockByItem[v.ItemID]
		if !ok {
			continue
		}

		severity := repository.SeverityWarning
		if v.OnHandQuantity.IsZero() {
			severity = repository.SeverityCritical
		}

		exists, err := s.alertRepo.HasOpenAlert(ctx, v.ItemID, repository.AlertTypeLowStock)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", v.ItemID).Msg("scanLowStock: failed to check existing alert")
			continue
		}
		if exists {
			continue
		}

		stock := v.OnHandQuantity
		min := item.MinStock
		alert := &repository.InventoryAlert{
			ItemID:       v.ItemID,
			ItemName:     v.ItemName,
			AlertType:    repository.AlertTypeLowStock,
			Severity:     severity,
			Message:      fmt.Sprintf("%s is low on stock (%s/%s %s)", v.ItemName, stock.String(), min.String(), item.Unit),
			CurrentStock: &stock,
			MinStock:     &min,
		}

		if err := s.alertRepo.Create(ctx, alert); err != nil {
			s.logger.Error().Err(err).Str("item_id", v.ItemID).Msg("scanLowStock: failed to create alert")
			continue
		}

		s.publisher.PublishAlertGenerated(ctx, alert)
	}

	return nil
}
