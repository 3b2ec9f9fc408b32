// Package repomanager wires repository implementations to a database handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/silvercar/backend/internal/dbx"
	"github.com/silvercar/backend/internal/server/repositories/orders"
	"github.com/silvercar/backend/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Orders(db dbx.DBTX) orders.Repository
}
