package store

import (
	"context"

	"inventory-service/internal/models"
	apperrors "inventory-service/pkg/errors"
)

// GetMetrics computes the dashboard rollups. Reads run outside any
// transaction; the result reflects a recent committed snapshot.
func (s *Store) GetMetrics(ctx context.Context) (*models.Metrics, error) {
	m := &models.Metrics{AvailableByType: map[string]int{}}

	err := s.db.GetContext(ctx, &m.TotalInStock,
		`SELECT COUNT(*) FROM inventory_units WHERE status IN (?, ?, ?)`,
		models.StatusAvailable, models.StatusRebooted, models.StatusConfigured)
	if err != nil {
		return nil, apperrors.Storage("counting stock", err)
	}

	if err := s.db.GetContext(ctx, &m.TotalShipments,
		`SELECT COUNT(*) FROM shipments`); err != nil {
		return nil, apperrors.Storage("counting shipments", err)
	}

	err = s.db.GetContext(ctx, &m.ConfiguredCards,
		`SELECT COUNT(*) FROM inventory_units u
		 JOIN products p ON p.id = u.product_id
		 WHERE p.type = ? AND u.status = ?`,
		models.TypeStorageCard, models.StatusConfigured)
	if err != nil {
		return nil, apperrors.Storage("counting configured cards", err)
	}

	deviceCounts := []struct {
		Status models.UnitStatus `db:"status"`
		Count  int               `db:"count"`
	}{}
	err = s.db.SelectContext(ctx, &deviceCounts,
		`SELECT u.status, COUNT(*) AS count
		 FROM inventory_units u
		 JOIN products p ON p.id = u.product_id
		 WHERE p.type = ?
		 GROUP BY u.status`, models.TypeDevice)
	if err != nil {
		return nil, apperrors.Storage("counting devices", err)
	}
	for _, row := range deviceCounts {
		switch row.Status {
		case models.StatusConfigured:
			m.ConfiguredDevices = row.Count
		case models.StatusRebooted:
			m.RebootedDevices = row.Count
		case models.StatusDefective:
			m.DefectiveDevices = row.Count
		}
	}

	typeCounts := []struct {
		Type  models.ProductType `db:"type"`
		Count int                `db:"count"`
	}{}
	err = s.db.SelectContext(ctx, &typeCounts,
		`SELECT p.type, COUNT(*) AS count
		 FROM inventory_units u
		 JOIN products p ON p.id = u.product_id
		 WHERE u.status = ?
		 GROUP BY p.type`, models.StatusAvailable)
	if err != nil {
		return nil, apperrors.Storage("counting available units", err)
	}
	for _, row := range typeCounts {
		m.AvailableByType[string(row.Type)] = row.Count
	}

	return m, nil
}
