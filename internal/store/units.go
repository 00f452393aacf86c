package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
	apperrors "inventory-service/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// unitRecord is a unit with the owning product's name and type, as loaded
// by precondition checks.
type unitRecord struct {
	models.InventoryUnit
	ProductType models.ProductType `db:"product_type"`
	ProductName string             `db:"product_name"`
}

// getUnit loads a unit with product data; q may be the store db or a tx.
func getUnit(ctx context.Context, q sqlx.QueryerContext, id int64) (*unitRecord, error) {
	var unit unitRecord
	err := sqlx.GetContext(ctx, q, &unit,
		`SELECT u.id, u.product_id, u.status, u.intake_date, u.created_at,
		        p.type AS product_type, p.name AS product_name
		 FROM inventory_units u
		 JOIN products p ON p.id = u.product_id
		 WHERE u.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: unit %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, apperrors.Storage("getting unit", err)
	}
	return &unit, nil
}

// Intake creates quantity AVAILABLE units of a product, one row per
// physical unit so each stays independently trackable.
func (s *Store) Intake(ctx context.Context, productID int64, quantity int, intakeDate string) ([]int64, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}

	ids := make([]int64, 0, quantity)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, productID); err != nil {
			return apperrors.Storage("checking product", err)
		}
		if !exists {
			return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
		}

		for i := 0; i < quantity; i++ {
			result, err := tx.ExecContext(ctx,
				`INSERT INTO inventory_units (product_id, status, intake_date) VALUES (?, ?, ?)`,
				productID, models.StatusAvailable, intakeDate)
			if err != nil {
				return apperrors.Storage("creating unit", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return apperrors.Storage("reading unit id", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UnitFilter narrows ListUnits. Zero values mean no filtering.
type UnitFilter struct {
	Status    models.UnitStatus
	Type      models.ProductType
	ProductID int64
}

const unitViewColumns = `
	u.id, u.product_id, u.status, u.intake_date, u.created_at,
	p.reference_code, p.name AS product_name, p.type AS product_type,
	cc.final_config_date AS card_final_config,
	cc.configuration_date AS card_config_date,
	dc.config_start_date AS device_start_date,
	dc.config_final_date AS device_final_date`

const unitViewJoins = `
	FROM inventory_units u
	JOIN products p ON p.id = u.product_id
	LEFT JOIN card_configurations cc ON cc.unit_id = u.id
	LEFT JOIN device_configurations dc ON dc.unit_id = u.id`

// ListUnits returns the joined inventory view, actionable statuses first,
// newest intake first within a status.
func (s *Store) ListUnits(ctx context.Context, filter UnitFilter) ([]models.UnitView, error) {
	query := `SELECT` + unitViewColumns + unitViewJoins + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND u.status = ?`
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += ` AND p.type = ?`
		args = append(args, filter.Type)
	}
	if filter.ProductID > 0 {
		query += ` AND u.product_id = ?`
		args = append(args, filter.ProductID)
	}

	query += `
	ORDER BY
		CASE u.status
			WHEN 'AVAILABLE' THEN 1
			WHEN 'REBOOTED' THEN 2
			WHEN 'CONFIGURED' THEN 3
			WHEN 'SHIPPED' THEN 4
			ELSE 5
		END,
		u.intake_date DESC, u.id DESC`

	units := []models.UnitView{}
	if err := s.db.SelectContext(ctx, &units, query, args...); err != nil {
		return nil, apperrors.Storage("listing units", err)
	}
	return units, nil
}

// GetUnit returns the joined view of a single unit.
func (s *Store) GetUnit(ctx context.Context, id int64) (*models.UnitView, error) {
	var unit models.UnitView
	err := s.db.GetContext(ctx, &unit,
		`SELECT`+unitViewColumns+unitViewJoins+` WHERE u.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: unit %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, apperrors.Storage("getting unit", err)
	}
	return &unit, nil
}

// UpdateUnitStatus overwrites a unit's status for manual correction.
// SHIPPED can be neither the source nor the target of a manual change.
func (s *Store) UpdateUnitStatus(ctx context.Context, id int64, target models.UnitStatus) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		unit, err := getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := models.ValidateManualStatus(unit.Status, target); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_units SET status = ? WHERE id = ?`, target, id); err != nil {
			return apperrors.Storage("updating unit status", err)
		}
		return nil
	})
}

// MarkDefective transitions a unit to DEFECTIVE and removes its
// configuration records; their existence is tied to an active unit.
func (s *Store) MarkDefective(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		unit, err := getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := models.NextStatus(unit.Status, models.EventMarkDefective)
		if err != nil {
			return err
		}
		if err := deleteConfigurations(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_units SET status = ? WHERE id = ?`, next, id); err != nil {
			return apperrors.Storage("updating unit status", err)
		}
		return nil
	})
}

// DeleteUnit removes a unit and its configuration rows. Shipped units and
// units referenced by a shipment line are never deleted.
func (s *Store) DeleteUnit(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		unit, err := getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		if unit.Status == models.StatusShipped {
			return fmt.Errorf("%w: shipped units cannot be deleted", apperrors.ErrInvalidTransition)
		}

		var referenced bool
		if err := tx.GetContext(ctx, &referenced,
			`SELECT EXISTS(SELECT 1 FROM shipment_lines WHERE unit_id = ?)`, id); err != nil {
			return apperrors.Storage("checking shipment references", err)
		}
		if referenced {
			return fmt.Errorf("%w: unit %d", apperrors.ErrReferencedByShipment, id)
		}

		if err := deleteConfigurations(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM inventory_units WHERE id = ?`, id); err != nil {
			return apperrors.Storage("deleting unit", err)
		}
		return nil
	})
}

// deleteConfigurations removes both configuration rows of a unit.
func deleteConfigurations(ctx context.Context, tx *sqlx.Tx, unitID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM card_configurations WHERE unit_id = ?`, unitID); err != nil {
		return apperrors.Storage("deleting card configuration", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM device_configurations WHERE unit_id = ?`, unitID); err != nil {
		return apperrors.Storage("deleting device configuration", err)
	}
	return nil
}
