package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/socialoura/spotyz/internal/models"
)

const pricingRowID = "default"

type PricingRepository struct {
	db *sql.DB
}

func NewPricingRepository(db *sql.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// Get returns the stored document, or nil when nothing has been saved yet.
func (r *PricingRepository) Get(ctx context.Context) (models.PricingDocument, error) {
	const query = `SELECT data FROM pricing WHERE id = $1`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, pricingRowID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pricing: %w", err)
	}
	var doc models.PricingDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode pricing: %w", err)
	}
	return doc, nil
}

func (r *PricingRepository) Put(ctx context.Context, doc models.PricingDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode pricing: %w", err)
	}
	const query = `
INSERT INTO pricing (id, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, pricingRowID, string(raw)); err != nil {
		return fmt.Errorf("put pricing: %w", err)
	}
	return nil
}
