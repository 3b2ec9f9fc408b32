// Package admincli implements the dealerctl command. It provisions an
// administrator account directly in the database, bypassing the public
// registration route which only ever creates regular users.
package admincli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/models"
	"github.com/silvercar/backend/internal/server/repositories/repomanager"
	"github.com/silvercar/backend/internal/server/repositories/users"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Options carries the command-line arguments of dealerctl.
type Options struct {
	DSN      string
	Email    string
	Username string
}

// GetPassword prompts on w and reads a password from the terminal without
// echo. The returned slice should be wiped by the caller.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter admin password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// CreateAdmin hashes the password and stores an admin user. The password
// bytes are wiped before returning.
func CreateAdmin(ctx context.Context, repo users.Repository, hasher *auth.Hasher,
	username, email string, password []byte) (*models.User, error) {

	defer wipe(password)

	if strings.TrimSpace(username) == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: username and a valid email are required", common.ErrValidation)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}

	hash, err := hasher.Hash(string(password))
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, fmt.Errorf("account %s already exists", email)
		}
		return nil, err
	}
	return user, nil
}

// Run connects to the database, applies migrations and creates the admin
// account described by opts.
func Run(ctx context.Context, opts Options, password []byte) (*models.User, error) {
	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		wipe(password)
		return nil, fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		wipe(password)
		return nil, fmt.Errorf("migrations: %w", err)
	}

	hasher := auth.NewHasher(auth.DefaultHashCost)
	return CreateAdmin(ctx, rm.Users(db), hasher, opts.Username, opts.Email, password)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
