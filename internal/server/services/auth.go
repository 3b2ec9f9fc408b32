// Package services contains server-side business logic. This file implements
// AuthService, which handles registration and login: credential lookup,
// bcrypt verification, and minting RS256 access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/logging"
	"github.com/silvercar/backend/internal/server/audit"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/config"
	"github.com/silvercar/backend/internal/server/metrics"
	"github.com/silvercar/backend/internal/server/models"
	"github.com/silvercar/backend/internal/server/repositories/repomanager"
)

// AuthService provides credential-lifecycle operations:
// - Register: create users with a freshly hashed password
// - Login: verify credentials and mint an access token
type AuthService struct {
	db             *sql.DB
	repos          repomanager.RepositoryManager
	hasher         *auth.Hasher
	codec          *auth.Codec
	accessTokenTTL time.Duration
	logger         logging.Logger
	audit          *audit.Recorder
	metrics        *metrics.Collector

	// sentinelDigest is compared against when the account does not exist, so
	// the absent-account branch costs the same bcrypt work as a mismatch and
	// both surface the identical ErrInvalidCredentials.
	sentinelDigest string
}

// NewAuthService constructs an AuthService from repositories and server config.
func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, hasher *auth.Hasher, codec *auth.Codec,
	cfg *config.Config, logger logging.Logger, rec *audit.Recorder, mc *metrics.Collector) *AuthService {

	// The sentinel is a digest of a value nobody can submit. bcrypt can only
	// fail here on an out-of-range cost, which NewHasher already prevents.
	sentinel, _ := hasher.Hash(uuid.NewString())

	return &AuthService{
		db:             db,
		repos:          repos,
		hasher:         hasher,
		codec:          codec,
		accessTokenTTL: cfg.AccessTokenTTL,
		logger:         logger.With("module", "auth_service"),
		audit:          rec,
		metrics:        mc,
		sentinelDigest: sentinel,
	}
}

// Register creates a new user credential with role "user". The password is
// hashed exactly once and only the digest is handed to the store.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {

	if username == "" || password == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "hashing password failed", "error", err.Error())
		return nil, common.ErrInternal
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		Role:         models.RoleUser,
	}

	repo := s.repos.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		s.logger.Error(ctx, "creating user failed", "error", err.Error())
		return nil, common.ErrInternal
	}

	s.audit.Event(ctx, audit.CategoryRegistration, "user registered", "email", email, "user_id", created.ID)
	return created, nil
}

// Login validates the credential and returns a signed access token whose
// claims carry the subject's identity and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {

	user, err := s.validate(ctx, email, password)
	if err != nil {
		s.metrics.RecordLogin(false)
		return "", err
	}

	claims := auth.Claims{
		"sub":              user.Username,
		auth.ClaimUsername: user.Username,
		auth.ClaimEmail:    user.Email,
		auth.ClaimRole:     user.Role,
		auth.ClaimUserID:   user.ID,
	}

	token, err := s.codec.Encode(claims, s.accessTokenTTL)
	if err != nil {
		s.logger.Error(ctx, "signing access token failed", "error", err.Error())
		s.metrics.RecordLogin(false)
		return "", common.ErrInternal
	}

	s.metrics.RecordLogin(true)
	return token, nil
}

// validate looks up the credential and verifies the password. An absent
// account and a wrong password return the same ErrInvalidCredentials with the
// same amount of hashing work; only the audit trail records which it was.
func (s *AuthService) validate(ctx context.Context, email, password string) (*models.User, error) {

	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.sentinelDigest)
			s.audit.Failure(ctx, audit.CategoryAuth, "login attempt with non-existent email", "email", email)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return nil, common.ErrInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.audit.Failure(ctx, audit.CategoryAuth, "invalid password attempt", "email", email)
		return nil, common.ErrInvalidCredentials
	}

	s.audit.Event(ctx, audit.CategoryAuth, "login successful", "email", email, "role", user.Role)
	return user, nil
}
