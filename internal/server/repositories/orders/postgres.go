package orders

import (
	"context"
	"fmt"

	"github.com/silvercar/backend/internal/dbx"
	"github.com/silvercar/backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {

	query :=
		`INSERT INTO orders (from_id, name, email, auto_name, number, comment, status)
	     VALUES ($1, $2, $3, $4, $5, $6, $7)
	     RETURNING id, created_at
	     `

	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	err := r.db.QueryRowContext(ctx, query,
		order.FromID, order.Name, order.Email, order.AutoName, order.Number, order.Comment, order.Status).
		Scan(&order.ID, &order.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return order, nil
}

func (r *PostgresRepository) ListByFromID(ctx context.Context, fromID string) ([]*models.Order, error) {
	query :=
		`SELECT id, from_id, name, email, auto_name, number, comment, status, created_at FROM orders
	     WHERE from_id = $1
	     ORDER BY created_at
	     `

	rows, err := r.db.QueryContext(ctx, query, fromID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.FromID, &o.Name, &o.Email, &o.AutoName, &o.Number, &o.Comment, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
