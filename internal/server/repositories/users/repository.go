package users

import (
	"context"

	"github.com/silvercar/backend/internal/server/models"
)

// Repository is the credential store contract the auth services rely on.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByEmailAndID fetches a user only when both identifiers match the
	// same record, guarding token redemption against claims that reference a
	// deleted or since-changed account.
	GetByEmailAndID(ctx context.Context, email, id string) (*models.User, error)

	// UpdatePassword replaces the stored digest, filtering by both id and
	// email. It returns the number of modified rows; 0 means the account
	// no longer matches.
	UpdatePassword(ctx context.Context, id, email, passwordHash string) (int64, error)
}
