package orders

import (
	"context"

	"github.com/silvercar/backend/internal/server/models"
)

// Repository persists purchase orders.
type Repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ListByFromID(ctx context.Context, fromID string) ([]*models.Order, error)
}
