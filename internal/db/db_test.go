package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	database := NewTestDB(t)
	require.NoError(t, EnsureSchema(database))
	require.NoError(t, EnsureSchema(database))
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO inventory_units (product_id, status, intake_date) VALUES (999, 'AVAILABLE', '2024-01-01')`)
	assert.Error(t, err)
}

func TestProductTypeCheckConstraint(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO products (reference_code, name, type) VALUES ('X-001', 'X', 'GADGET')`)
	assert.Error(t, err)
}
