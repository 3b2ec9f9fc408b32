package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/logging"
	"github.com/silvercar/backend/internal/server/audit"
	"github.com/silvercar/backend/internal/server/email"
	"github.com/silvercar/backend/internal/server/metrics"
	"github.com/silvercar/backend/internal/server/models"
	"github.com/silvercar/backend/internal/server/repositories/repomanager"
)

// OrderService places purchase orders and sends the confirmation email.
// Email delivery is best-effort: a failed send is logged and never fails the
// already-persisted order.
type OrderService struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	mailer  email.Sender
	logger  logging.Logger
	audit   *audit.Recorder
	metrics *metrics.Collector
}

func NewOrderService(db *sql.DB, repos repomanager.RepositoryManager, mailer email.Sender,
	logger logging.Logger, rec *audit.Recorder, mc *metrics.Collector) *OrderService {

	return &OrderService{
		db:      db,
		repos:   repos,
		mailer:  mailer,
		logger:  logger.With("module", "order_service"),
		audit:   rec,
		metrics: mc,
	}
}

// Place persists the order and, when the customer left an email address,
// sends a confirmation message.
func (s *OrderService) Place(ctx context.Context, order *models.Order) (*models.Order, error) {

	if order.FromID == "" || order.AutoName == "" {
		return nil, fmt.Errorf("%w: from_id and auto_name are required", common.ErrValidation)
	}

	repo := s.repos.Orders(s.db)
	created, err := repo.Create(ctx, order)
	if err != nil {
		s.logger.Error(ctx, "creating order failed", "error", err.Error())
		return nil, common.ErrInternal
	}

	s.audit.Event(ctx, audit.CategoryOrder, "order placed", "order_id", created.ID, "auto_name", created.AutoName)

	if created.Email != "" {
		body, err := email.RenderOrderConfirmation(created)
		if err != nil {
			s.logger.Error(ctx, "rendering confirmation email failed", "error", err.Error())
			return created, nil
		}
		if err := s.mailer.Send(ctx, created.Email, email.SubjectOrderConfirmation, body); err != nil {
			s.logger.Error(ctx, "sending confirmation email failed", "email", created.Email, "error", err.Error())
			s.metrics.RecordEmail(false)
			return created, nil
		}
		s.metrics.RecordEmail(true)
	}

	return created, nil
}

// OrdersFor lists the orders placed by one visitor.
func (s *OrderService) OrdersFor(ctx context.Context, fromID string) ([]*models.Order, error) {
	repo := s.repos.Orders(s.db)
	result, err := repo.ListByFromID(ctx, fromID)
	if err != nil {
		s.logger.Error(ctx, "listing orders failed", "error", err.Error())
		return nil, common.ErrInternal
	}
	return result, nil
}
