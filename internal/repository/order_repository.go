package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/socialoura/spotyz/internal/models"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, username, email, platform, followers, price, amount, currency, COALESCE(promo_code, ''), discount,
payment_id, status, payment_status, order_status, notes, language, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.Username, &o.Email, &o.Platform, &o.Followers, &o.Price, &o.Amount, &o.Currency, &o.PromoCode, &o.Discount,
		&o.PaymentID, &o.Status, &o.PaymentStatus, &o.OrderStatus, &o.Notes, &o.Language, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by payment id: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// Create inserts the order and fills in its generated fields. A second insert for the
// same payment id returns ErrDuplicate.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	query := `
INSERT INTO orders (username, email, platform, followers, price, amount, currency, promo_code, discount,
    payment_id, status, payment_status, order_status, notes, language)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + orderColumns
	row := r.db.QueryRowContext(ctx, query, o.Username, o.Email, o.Platform, o.Followers, o.Price, o.Amount, o.Currency, o.PromoCode, o.Discount,
		o.PaymentID, o.Status, o.PaymentStatus, o.OrderStatus, o.Notes, o.Language)
	created, err := scanOrder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Update applies the admin-editable fields. Returns nil when the order does not exist.
func (r *OrderRepository) Update(ctx context.Context, id int64, update models.OrderUpdate) (*models.Order, error) {
	query := `
UPDATE orders
SET order_status = COALESCE($1, order_status), notes = COALESCE($2, notes), updated_at = NOW()
WHERE id = $3
RETURNING ` + orderColumns
	var status, notes sql.NullString
	if update.OrderStatus != nil {
		status = sql.NullString{String: string(*update.OrderStatus), Valid: true}
	}
	if update.Notes != nil {
		notes = sql.NullString{String: *update.Notes, Valid: true}
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, status, notes, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM orders WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("order rows affected: %w", err)
	}
	return affected > 0, nil
}
