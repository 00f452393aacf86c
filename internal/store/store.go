package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/db"
	"inventory-service/internal/models"
	apperrors "inventory-service/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// Store wraps the SQLite database. Every mutating method runs inside a
// single immediate-mode write transaction; read methods query in
// autocommit and never take the writer lock.
type Store struct {
	db *sqlx.DB
}

// NewStore opens the database at path and ensures the schema exists.
func NewStore(path string) (*Store, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

// NewStoreWithDB wraps an already-open database. Used by tests.
func NewStoreWithDB(database *sqlx.DB) *Store {
	return &Store{db: database}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a write transaction, rolling back on any error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Storage("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage("committing transaction", err)
	}
	return nil
}

// typeLabels provides default product names per type.
var typeLabels = map[models.ProductType]string{
	models.TypeDevice:        "Device",
	models.TypeStorageCard:   "Storage card",
	models.TypeCableUSB:      "USB cable",
	models.TypeCableEthernet: "Ethernet cable",
	models.TypeCableC:        "USB-C cable",
}

// CreateProduct creates a catalog entry. When referenceCode is empty a new
// code is drawn from the per-type sequencer inside the same transaction, so
// a failed insert rolls the counter back and codes can never repeat.
func (s *Store) CreateProduct(ctx context.Context, ptype models.ProductType, name, description, referenceCode string) (*models.Product, error) {
	if !models.ValidProductType(ptype) {
		return nil, fmt.Errorf("%w: unknown product type %q", apperrors.ErrInvalidInput, ptype)
	}
	if name == "" {
		name = typeLabels[ptype]
	}

	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		code := referenceCode
		if code == "" {
			var err error
			code, err = nextReference(ctx, tx, ptype)
			if err != nil {
				return err
			}
		}

		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM products WHERE reference_code = ?)`, code); err != nil {
			return apperrors.Storage("checking reference code", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, code)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO products (reference_code, name, type, description) VALUES (?, ?, ?, ?)`,
			code, name, ptype, description)
		if err != nil {
			return apperrors.Storage("creating product", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return apperrors.Storage("reading product id", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id)
}

// nextReference atomically advances the counter for a product type and
// returns the formatted reference code. The increment-and-read is a single
// statement, never a read-then-write round trip.
func nextReference(ctx context.Context, tx *sqlx.Tx, ptype models.ProductType) (string, error) {
	prefix, err := models.ReferencePrefix(ptype)
	if err != nil {
		return "", err
	}

	var counter int64
	err = tx.GetContext(ctx, &counter,
		`INSERT INTO reference_counters (type, counter) VALUES (?, 1)
		 ON CONFLICT(type) DO UPDATE SET counter = counter + 1
		 RETURNING counter`, ptype)
	if err != nil {
		return "", apperrors.Storage("advancing reference counter", err)
	}

	return fmt.Sprintf("%s-%03d", prefix, counter), nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, `SELECT * FROM products WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, apperrors.Storage("getting product", err)
	}
	return &product, nil
}

// ListProducts retrieves the whole catalog.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY type, name, id`)
	if err != nil {
		return nil, apperrors.Storage("listing products", err)
	}
	return products, nil
}
