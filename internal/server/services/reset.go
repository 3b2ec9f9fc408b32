package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/logging"
	"github.com/silvercar/backend/internal/server/audit"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/config"
	"github.com/silvercar/backend/internal/server/email"
	"github.com/silvercar/backend/internal/server/metrics"
	"github.com/silvercar/backend/internal/server/repositories/repomanager"
)

// ResetService implements the password-reset flow: issuing a short-lived
// reset token delivered by email, redeeming that token to rotate the stored
// digest, and the authenticated change-password operation.
//
// A reset request is encoded entirely inside the signed token; no reset
// record is persisted, and already-issued tokens stay valid until expiry.
type ResetService struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	hasher  *auth.Hasher
	codec   *auth.Codec
	mailer  email.Sender
	ttl     time.Duration
	logger  logging.Logger
	audit   *audit.Recorder
	metrics *metrics.Collector
}

func NewResetService(db *sql.DB, repos repomanager.RepositoryManager, hasher *auth.Hasher, codec *auth.Codec,
	mailer email.Sender, cfg *config.Config, logger logging.Logger, rec *audit.Recorder, mc *metrics.Collector) *ResetService {

	return &ResetService{
		db:      db,
		repos:   repos,
		hasher:  hasher,
		codec:   codec,
		mailer:  mailer,
		ttl:     cfg.ResetTokenTTL,
		logger:  logger.With("module", "reset_service"),
		audit:   rec,
		metrics: mc,
	}
}

// RequestReset issues a reset token for the account and emails it.
//
// The caller always gets the same generic success for an unknown address and
// for a delivery failure: neither account existence nor mail-infrastructure
// state may leak to the client. Only store errors surface, as ErrInternal.
func (s *ResetService) RequestReset(ctx context.Context, emailAddr string) error {

	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.audit.Failure(ctx, audit.CategoryPasswordReset, "reset requested for unknown email", "email", emailAddr)
			s.metrics.RecordResetRequest(false)
			return nil
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return common.ErrInternal
	}

	claims := auth.Claims{
		auth.ClaimEmail:  user.Email,
		auth.ClaimUserID: user.ID,
		auth.ClaimType:   auth.TokenTypePasswordReset,
	}

	token, err := s.codec.Encode(claims, s.ttl)
	if err != nil {
		s.logger.Error(ctx, "signing reset token failed", "error", err.Error())
		return common.ErrInternal
	}

	body, err := email.RenderPasswordReset(user.Username, token)
	if err != nil {
		s.logger.Error(ctx, "rendering reset email failed", "error", err.Error())
		return common.ErrInternal
	}

	if err := s.mailer.Send(ctx, user.Email, email.SubjectPasswordReset, body); err != nil {
		s.logger.Error(ctx, "sending reset email failed", "email", user.Email, "error", err.Error())
		s.audit.Failure(ctx, audit.CategoryEmail, "password reset email delivery failed", "email", user.Email)
		s.metrics.RecordEmail(false)
		return nil
	}

	s.audit.Event(ctx, audit.CategoryPasswordReset, "password reset email sent", "email", user.Email, "user_id", user.ID)
	s.metrics.RecordEmail(true)
	s.metrics.RecordResetRequest(true)
	return nil
}

// RedeemReset consumes a reset token and replaces the stored digest with a
// hash of newPassword.
func (s *ResetService) RedeemReset(ctx context.Context, token, newPassword string) error {

	if newPassword == "" {
		return common.ErrValidation
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		s.audit.Failure(ctx, audit.CategoryPasswordReset, "reset redemption with bad token")
		s.metrics.RecordResetRedeem(false)
		return common.ErrInvalidOrExpiredToken
	}

	typ, ok := claims.StringClaim(auth.ClaimType)
	if !ok || typ != auth.TokenTypePasswordReset {
		s.audit.Failure(ctx, audit.CategoryPasswordReset, "reset redemption with wrong token type", "type", typ)
		s.metrics.RecordResetRedeem(false)
		return common.ErrInvalidTokenType
	}

	emailClaim, okEmail := claims.StringClaim(auth.ClaimEmail)
	userID, okID := claims.StringClaim(auth.ClaimUserID)
	if !okEmail || !okID || emailClaim == "" || userID == "" {
		s.metrics.RecordResetRedeem(false)
		return common.ErrMalformedToken
	}

	// Re-fetch by both identifiers: a token referencing a deleted account or
	// one whose email has changed since issuance must not rotate anything.
	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmailAndID(ctx, emailClaim, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.audit.Failure(ctx, audit.CategoryPasswordReset, "reset token references unknown account", "email", emailClaim)
			s.metrics.RecordResetRedeem(false)
			return common.ErrUserNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return common.ErrInternal
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error(ctx, "hashing password failed", "error", err.Error())
		return common.ErrInternal
	}

	modified, err := repo.UpdatePassword(ctx, user.ID, user.Email, digest)
	if err != nil {
		s.logger.Error(ctx, "updating password failed", "error", err.Error())
		return common.ErrInternal
	}
	if modified == 0 {
		// the account changed between the read and the write; last write wins
		s.metrics.RecordResetRedeem(false)
		return common.ErrUserNotFound
	}

	s.audit.Event(ctx, audit.CategoryPasswordReset, "password reset redeemed", "email", user.Email, "user_id", user.ID)
	s.metrics.RecordResetRedeem(true)
	return nil
}

// ChangePassword rotates the digest for an authenticated user after checking
// the old password. The new password must not verify against the old digest.
func (s *ResetService) ChangePassword(ctx context.Context, emailAddr, oldPassword, newPassword string) error {

	if newPassword == "" {
		return common.ErrValidation
	}

	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// merged with the mismatch branch; do not reveal absence
			s.metrics.RecordPasswordChange(false)
			return common.ErrInvalidOldPassword
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return common.ErrInternal
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		s.audit.Failure(ctx, audit.CategoryPasswordReset, "password change with wrong old password", "email", emailAddr)
		s.metrics.RecordPasswordChange(false)
		return common.ErrInvalidOldPassword
	}

	if s.hasher.Verify(newPassword, user.PasswordHash) {
		s.metrics.RecordPasswordChange(false)
		return common.ErrSamePassword
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error(ctx, "hashing password failed", "error", err.Error())
		return common.ErrInternal
	}

	modified, err := repo.UpdatePassword(ctx, user.ID, user.Email, digest)
	if err != nil {
		s.logger.Error(ctx, "updating password failed", "error", err.Error())
		return common.ErrInternal
	}
	if modified == 0 {
		return common.ErrUserNotFound
	}

	s.audit.Event(ctx, audit.CategoryPasswordReset, "password changed", "email", user.Email, "user_id", user.ID)
	s.metrics.RecordPasswordChange(true)
	return nil
}
