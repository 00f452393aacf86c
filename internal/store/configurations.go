package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-service/internal/models"
	apperrors "inventory-service/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// ConfigureCard records the write-once configuration of a storage card and
// moves the unit straight to CONFIGURED.
func (s *Store) ConfigureCard(ctx context.Context, unitID int64, finalConfigDate string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		unit, err := getUnit(ctx, tx, unitID)
		if err != nil {
			return err
		}
		if unit.ProductType != models.TypeStorageCard {
			return fmt.Errorf("%w: unit %d is a %s, only storage cards can be configured this way",
				apperrors.ErrWrongType, unitID, unit.ProductType)
		}

		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM card_configurations WHERE unit_id = ?)`, unitID); err != nil {
			return apperrors.Storage("checking card configuration", err)
		}
		if exists {
			return fmt.Errorf("%w: unit %d", apperrors.ErrAlreadyConfigured, unitID)
		}

		next, err := models.NextStatus(unit.Status, models.EventConfigureCard)
		if err != nil {
			return fmt.Errorf("%w: unit %d is %s, expected %s",
				apperrors.ErrInvalidState, unitID, unit.Status, models.StatusAvailable)
		}

		today := time.Now().Format("2006-01-02")
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_configurations (unit_id, final_config_date, configuration_date)
			 VALUES (?, ?, ?)`, unitID, finalConfigDate, today); err != nil {
			return apperrors.Storage("creating card configuration", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_units SET status = ? WHERE id = ?`, next, unitID); err != nil {
			return apperrors.Storage("updating unit status", err)
		}
		return nil
	})
}

// StartDeviceConfiguration opens the device workflow: a configuration row
// with no final date yet, and the unit moved to REBOOTED.
func (s *Store) StartDeviceConfiguration(ctx context.Context, unitID int64, startDate string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		unit, err := getUnit(ctx, tx, unitID)
		if err != nil {
			return err
		}
		if unit.ProductType != models.TypeDevice {
			return fmt.Errorf("%w: unit %d is a %s, only devices have a reboot workflow",
				apperrors.ErrWrongType, unitID, unit.ProductType)
		}

		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM device_configurations WHERE unit_id = ?)`, unitID); err != nil {
			return apperrors.Storage("checking device configuration", err)
		}
		if exists {
			return fmt.Errorf("%w: unit %d", apperrors.ErrAlreadyStarted, unitID)
		}

		next, err := models.NextStatus(unit.Status, models.EventStartDeviceConfig)
		if err != nil {
			return fmt.Errorf("%w: unit %d is %s, expected %s",
				apperrors.ErrInvalidState, unitID, unit.Status, models.StatusAvailable)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO device_configurations (unit_id, config_start_date) VALUES (?, ?)`,
			unitID, startDate); err != nil {
			return apperrors.Storage("creating device configuration", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_units SET status = ? WHERE id = ?`, next, unitID); err != nil {
			return apperrors.Storage("updating unit status", err)
		}
		return nil
	})
}

// FinalizeDeviceConfiguration completes an open device configuration and
// moves the unit to CONFIGURED. The start date may not exceed the final
// date.
func (s *Store) FinalizeDeviceConfiguration(ctx context.Context, unitID int64, finalDate string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		unit, err := getUnit(ctx, tx, unitID)
		if err != nil {
			return err
		}

		var config models.DeviceConfiguration
		err = tx.GetContext(ctx, &config,
			`SELECT id, unit_id, config_start_date, config_final_date, finalized_at, created_at
			 FROM device_configurations
			 WHERE unit_id = ? AND config_final_date IS NULL`, unitID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: unit %d", apperrors.ErrNoOpenConfiguration, unitID)
		}
		if err != nil {
			return apperrors.Storage("getting device configuration", err)
		}

		next, err := models.NextStatus(unit.Status, models.EventFinalizeDeviceConfig)
		if err != nil {
			return fmt.Errorf("%w: unit %d", apperrors.ErrNoOpenConfiguration, unitID)
		}

		if config.ConfigStartDate > finalDate {
			return fmt.Errorf("%w: final date %s precedes start date %s",
				apperrors.ErrInvalidState, finalDate, config.ConfigStartDate)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE device_configurations
			 SET config_final_date = ?, finalized_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, finalDate, config.ID); err != nil {
			return apperrors.Storage("finalizing device configuration", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_units SET status = ? WHERE id = ?`, next, unitID); err != nil {
			return apperrors.Storage("updating unit status", err)
		}
		return nil
	})
}
