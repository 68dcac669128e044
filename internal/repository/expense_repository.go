package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/socialoura/spotyz/internal/models"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) List(ctx context.Context, rng models.DateRange) ([]models.AdExpense, error) {
	var (
		where []string
		args  []any
	)
	if rng.From != nil {
		args = append(args, *rng.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if rng.To != nil {
		args = append(args, *rng.To)
		where = append(where, fmt.Sprintf("date < $%d", len(args)))
	}
	query := `SELECT id, date, amount, campaign, notes, created_at FROM google_ads_expenses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.AdExpense
	for rows.Next() {
		var e models.AdExpense
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Campaign, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.AdExpense) (*models.AdExpense, error) {
	const query = `
INSERT INTO google_ads_expenses (date, amount, campaign, notes)
VALUES ($1, $2, $3, $4)
RETURNING id, date, amount, campaign, notes, created_at`
	var created models.AdExpense
	row := r.db.QueryRowContext(ctx, query, e.Date, e.Amount, e.Campaign, e.Notes)
	if err := row.Scan(&created.ID, &created.Date, &created.Amount, &created.Campaign, &created.Notes, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return &created, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM google_ads_expenses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expense rows affected: %w", err)
	}
	return affected > 0, nil
}
