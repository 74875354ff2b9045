package service

import (
	"context"
	"errors"

	authdomain "github.com/driftchat/backend/internal/auth/domain"
	commoncrypto "github.com/driftchat/backend/internal/common/crypto"
	"github.com/driftchat/backend/internal/common/logger"
	userdomain "github.com/driftchat/backend/internal/user/domain"
	userrepo "github.com/driftchat/backend/internal/user/repository"
)

var ErrPasswordMismatch = errors.New("password does not match")

// CredentialVerifier re-checks the password of a session's principal against
// the stored hash. Profile mutations call this before touching anything.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, session authdomain.Session, password string) error
}

type Verifier struct {
	repo   userrepo.Repository
	hasher commoncrypto.PasswordHasher
	log    *logger.Logger
}

func NewVerifier(repo userrepo.Repository, hasher commoncrypto.PasswordHasher, log *logger.Logger) *Verifier {
	return &Verifier{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
}

func (v *Verifier) VerifyPassword(ctx context.Context, session authdomain.Session, password string) error {
	user, err := v.repo.FindByID(ctx, userdomain.ID(session.UserID))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			v.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "verify_password_user_missing",
			}).Warn("password verification failed: principal not found")
			return ErrPasswordMismatch
		}
		v.log.WithFields(ctx, logger.Fields{
			"user_id": session.UserID,
			"action":  "verify_password_fetch_failed",
		}).Errorf("password verification failed: %v", err)
		return err
	}

	if err := v.hasher.Compare(user.PasswordHash, password); err != nil {
		return ErrPasswordMismatch
	}

	return nil
}
