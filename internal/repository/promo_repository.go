package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/socialoura/spotyz/internal/models"
)

type PromoRepository struct {
	db *sql.DB
}

func NewPromoRepository(db *sql.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

const promoColumns = `id, code, discount_type, discount_value, max_uses, current_uses, expires_at, is_active, created_at, updated_at`

func scanPromo(row rowScanner) (*models.PromoCode, error) {
	var (
		promo     models.PromoCode
		maxUses   sql.NullInt32
		expiresAt sql.NullTime
	)
	if err := row.Scan(&promo.ID, &promo.Code, &promo.DiscountType, &promo.DiscountValue, &maxUses, &promo.CurrentUses,
		&expiresAt, &promo.IsActive, &promo.CreatedAt, &promo.UpdatedAt); err != nil {
		return nil, err
	}
	if maxUses.Valid {
		v := int(maxUses.Int32)
		promo.MaxUses = &v
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		promo.ExpiresAt = &t
	}
	return &promo, nil
}

func nullableInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

// GetByCode looks the code up case-insensitively.
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE LOWER(code) = LOWER($1)`
	promo, err := scanPromo(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promo by code: %w", err)
	}
	return promo, nil
}

func (r *PromoRepository) GetByID(ctx context.Context, id int64) (*models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`
	promo, err := scanPromo(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promo by id: %w", err)
	}
	return promo, nil
}

func (r *PromoRepository) List(ctx context.Context) ([]models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var promos []models.PromoCode
	for rows.Next() {
		promo, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promo list: %w", err)
		}
		promos = append(promos, *promo)
	}
	return promos, rows.Err()
}

func (r *PromoRepository) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	query := `
INSERT INTO promo_codes (code, discount_type, discount_value, max_uses, current_uses, expires_at, is_active)
VALUES ($1, $2, $3, $4, 0, $5, $6)
RETURNING ` + promoColumns
	row := r.db.QueryRowContext(ctx, query, promo.Code, promo.DiscountType, promo.DiscountValue, nullableInt(promo.MaxUses), promo.ExpiresAt, promo.IsActive)
	created, err := scanPromo(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create promo: %w", err)
	}
	return created, nil
}

// Update overwrites the admin-editable columns. current_uses is owned by Redeem.
// Returns nil when the promo does not exist.
func (r *PromoRepository) Update(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	query := `
UPDATE promo_codes
SET code = $1, discount_type = $2, discount_value = $3, max_uses = $4, expires_at = $5, is_active = $6, updated_at = NOW()
WHERE id = $7
RETURNING ` + promoColumns
	row := r.db.QueryRowContext(ctx, query, promo.Code, promo.DiscountType, promo.DiscountValue, nullableInt(promo.MaxUses),
		promo.ExpiresAt, promo.IsActive, promo.ID)
	updated, err := scanPromo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update promo: %w", err)
	}
	return updated, nil
}

func (r *PromoRepository) SetActive(ctx context.Context, id int64, active bool) (*models.PromoCode, error) {
	query := `UPDATE promo_codes SET is_active = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + promoColumns
	promo, err := scanPromo(r.db.QueryRowContext(ctx, query, active, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("set promo active: %w", err)
	}
	return promo, nil
}

func (r *PromoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM promo_codes WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete promo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("promo rows affected: %w", err)
	}
	return affected > 0, nil
}

// Redeem counts one use of the code in a single conditional statement, so two
// concurrent checkouts cannot both take the last use. Reports false when the code is
// unknown or already exhausted.
func (r *PromoRepository) Redeem(ctx context.Context, code string) (bool, error) {
	const query = `
UPDATE promo_codes SET current_uses = current_uses + 1, updated_at = NOW()
WHERE LOWER(code) = LOWER($1) AND (max_uses IS NULL OR current_uses < max_uses)`
	res, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("redeem promo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("promo usage rows affected: %w", err)
	}
	return affected > 0, nil
}
