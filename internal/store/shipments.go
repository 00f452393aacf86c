package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
	apperrors "inventory-service/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// ShipmentRequest is the caller-held basket submitted as a single batch.
type ShipmentRequest struct {
	Lines       []models.ShipmentRequestLine
	Folio       string
	Destination string
	Description string
	ShipDate    string
}

// ProcessShipment allocates eligible units against the requested basket and
// commits the shipment atomically. Allocation is FIFO by intake date (ties
// broken by unit id), so identical ledger state and basket always select
// the identical unit set. If any line cannot be fully satisfied the whole
// transaction rolls back and no unit changes status.
func (s *Store) ProcessShipment(ctx context.Context, req ShipmentRequest) (*models.ShipmentResult, error) {
	lines := mergeLines(req.Lines)

	var result models.ShipmentResult
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM shipments WHERE folio = ?)`, req.Folio); err != nil {
			return apperrors.Storage("checking folio", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateFolio, req.Folio)
		}

		var unitIDs []int64
		for _, line := range lines {
			selected, err := allocateLine(ctx, tx, line)
			if err != nil {
				return err
			}
			unitIDs = append(unitIDs, selected...)
		}

		shipmentResult, err := tx.ExecContext(ctx,
			`INSERT INTO shipments (folio, ship_date, destination, description)
			 VALUES (?, ?, ?, ?)`,
			req.Folio, req.ShipDate, req.Destination, req.Description)
		if err != nil {
			return apperrors.Storage("creating shipment", err)
		}
		shipmentID, err := shipmentResult.LastInsertId()
		if err != nil {
			return apperrors.Storage("reading shipment id", err)
		}

		for _, unitID := range unitIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO shipment_lines (shipment_id, unit_id) VALUES (?, ?)`,
				shipmentID, unitID); err != nil {
				return apperrors.Storage("creating shipment line", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE inventory_units SET status = ? WHERE id = ?`,
				models.StatusShipped, unitID); err != nil {
				return apperrors.Storage("updating unit status", err)
			}
		}

		result = models.ShipmentResult{
			ShipmentID:   shipmentID,
			Folio:        req.Folio,
			UnitsShipped: len(unitIDs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// allocateLine selects the FIFO unit set for one requested line and
// re-verifies that configurable types actually carry a completed final
// configuration date, guarding against status/data mismatches introduced
// by manual corrections.
func allocateLine(ctx context.Context, tx *sqlx.Tx, line models.ShipmentRequestLine) ([]int64, error) {
	var product models.Product
	err := tx.GetContext(ctx, &product,
		`SELECT * FROM products WHERE id = ?`, line.ProductID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, line.ProductID)
	}
	if err != nil {
		return nil, apperrors.Storage("getting product", err)
	}

	eligible := models.ShippableStatus(product.Type)

	var selected []int64
	err = tx.SelectContext(ctx, &selected,
		`SELECT id FROM inventory_units
		 WHERE product_id = ? AND status = ?
		 ORDER BY intake_date ASC, id ASC
		 LIMIT ?`, line.ProductID, eligible, line.Quantity)
	if err != nil {
		return nil, apperrors.Storage("selecting eligible units", err)
	}

	if len(selected) < line.Quantity {
		return nil, &apperrors.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   line.Quantity,
			Available:   len(selected),
		}
	}

	if models.RequiresConfiguration(product.Type) {
		configTable := "device_configurations"
		configColumn := "config_final_date"
		if product.Type == models.TypeStorageCard {
			configTable = "card_configurations"
			configColumn = "final_config_date"
		}
		for _, unitID := range selected {
			var configured bool
			query := fmt.Sprintf(
				`SELECT EXISTS(SELECT 1 FROM %s WHERE unit_id = ? AND %s IS NOT NULL)`,
				configTable, configColumn)
			if err := tx.GetContext(ctx, &configured, query, unitID); err != nil {
				return nil, apperrors.Storage("verifying configuration", err)
			}
			if !configured {
				return nil, &apperrors.MissingConfigurationError{UnitID: unitID}
			}
		}
	}

	return selected, nil
}

// mergeLines collapses duplicate products in a basket, preserving the
// order in which each product first appears.
func mergeLines(lines []models.ShipmentRequestLine) []models.ShipmentRequestLine {
	index := make(map[int64]int, len(lines))
	merged := make([]models.ShipmentRequestLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// ListShipments returns all shipments with their line counts, newest first.
func (s *Store) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	shipments := []models.Shipment{}
	err := s.db.SelectContext(ctx, &shipments,
		`SELECT sh.id, sh.folio, sh.ship_date, sh.destination, sh.description, sh.created_at,
		        COUNT(sl.id) AS total_items
		 FROM shipments sh
		 LEFT JOIN shipment_lines sl ON sl.shipment_id = sh.id
		 GROUP BY sh.id
		 ORDER BY sh.ship_date DESC, sh.id DESC`)
	if err != nil {
		return nil, apperrors.Storage("listing shipments", err)
	}
	return shipments, nil
}

// GetShipmentDetail returns a shipment and its lines joined with unit,
// product and configuration data.
func (s *Store) GetShipmentDetail(ctx context.Context, id int64) (*models.Shipment, []models.ShipmentLine, error) {
	var shipment models.Shipment
	err := s.db.GetContext(ctx, &shipment,
		`SELECT sh.id, sh.folio, sh.ship_date, sh.destination, sh.description, sh.created_at,
		        COUNT(sl.id) AS total_items
		 FROM shipments sh
		 LEFT JOIN shipment_lines sl ON sl.shipment_id = sh.id
		 WHERE sh.id = ?
		 GROUP BY sh.id`, id)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: shipment %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, apperrors.Storage("getting shipment", err)
	}

	lines := []models.ShipmentLine{}
	err = s.db.SelectContext(ctx, &lines,
		`SELECT sl.id, sl.shipment_id, sl.unit_id,
		        p.reference_code, p.name AS product_name, p.type AS product_type,
		        cc.final_config_date AS card_final_config,
		        dc.config_final_date AS device_final_date
		 FROM shipment_lines sl
		 JOIN inventory_units u ON u.id = sl.unit_id
		 JOIN products p ON p.id = u.product_id
		 LEFT JOIN card_configurations cc ON cc.unit_id = u.id
		 LEFT JOIN device_configurations dc ON dc.unit_id = u.id
		 WHERE sl.shipment_id = ?
		 ORDER BY sl.id`, id)
	if err != nil {
		return nil, nil, apperrors.Storage("listing shipment lines", err)
	}

	return &shipment, lines, nil
}
