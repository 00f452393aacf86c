package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema. Calendar dates are stored as
// YYYY-MM-DD text; NULL means "not yet set".
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id             INTEGER PRIMARY KEY,
    reference_code TEXT NOT NULL UNIQUE,
    name           TEXT NOT NULL,
    type           TEXT NOT NULL CHECK (type IN ('DEVICE', 'STORAGE_CARD', 'CABLE_USB', 'CABLE_ETHERNET', 'CABLE_C')),
    description    TEXT NOT NULL DEFAULT '',
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reference_counters (
    type    TEXT PRIMARY KEY,
    counter INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS inventory_units (
    id          INTEGER PRIMARY KEY,
    product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
    status      TEXT NOT NULL DEFAULT 'AVAILABLE'
        CHECK (status IN ('AVAILABLE', 'REBOOTED', 'CONFIGURED', 'SHIPPED', 'DEFECTIVE')),
    intake_date TEXT NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS card_configurations (
    id                 INTEGER PRIMARY KEY,
    unit_id            INTEGER NOT NULL UNIQUE REFERENCES inventory_units(id) ON DELETE CASCADE,
    final_config_date  TEXT NOT NULL,
    configuration_date TEXT NOT NULL,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS device_configurations (
    id                INTEGER PRIMARY KEY,
    unit_id           INTEGER NOT NULL UNIQUE REFERENCES inventory_units(id) ON DELETE CASCADE,
    config_start_date TEXT NOT NULL,
    config_final_date TEXT,
    finalized_at      DATETIME,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS shipments (
    id          INTEGER PRIMARY KEY,
    folio       TEXT NOT NULL UNIQUE,
    ship_date   TEXT NOT NULL,
    destination TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS shipment_lines (
    id          INTEGER PRIMARY KEY,
    shipment_id INTEGER NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
    unit_id     INTEGER NOT NULL UNIQUE REFERENCES inventory_units(id) ON DELETE RESTRICT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_units_status ON inventory_units(status);
CREATE INDEX IF NOT EXISTS idx_units_product ON inventory_units(product_id);
CREATE INDEX IF NOT EXISTS idx_units_intake ON inventory_units(product_id, status, intake_date);
CREATE INDEX IF NOT EXISTS idx_shipment_lines_shipment ON shipment_lines(shipment_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
