package service

import (
	"context"
	"errors"

	authdomain "github.com/driftchat/backend/internal/auth/domain"
	authservice "github.com/driftchat/backend/internal/auth/service"
	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/events"
	userdomain "github.com/driftchat/backend/internal/user/domain"
	userrepo "github.com/driftchat/backend/internal/user/repository"
)

// Service orchestrates a profile mutation: validate, re-verify credentials,
// check username availability, apply the partial update, broadcast the change.
// The store write is the single commit point; every failure before it aborts
// with no visible mutation, and nothing after it can roll the write back.
type Service struct {
	repo      userrepo.Repository
	verifier  authservice.CredentialVerifier
	validator *RequestValidator
	notifier  events.Notifier
	log       *logger.Logger
}

func NewService(
	repo userrepo.Repository,
	verifier authservice.CredentialVerifier,
	validator *RequestValidator,
	notifier events.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		verifier:  verifier,
		validator: validator,
		notifier:  notifier,
		log:       log,
	}
}

// ChangeUsername applies a validated ChangeRequest on behalf of session's
// principal. With no username present it degenerates to a credential
// re-verification plus a no-op store confirmation, which still succeeds.
func (s *Service) ChangeUsername(ctx context.Context, session authdomain.Session, req ChangeRequest) error {
	s.log.WithFields(ctx, logger.Fields{
		"user_id": session.UserID,
		"action":  "profile_update_attempt",
	}).Info("profile update attempt")

	if err := s.validator.Validate(req); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": session.UserID,
			"action":  "profile_update_validation_failed",
		}).Warnf("profile update validation failed: %v", err)
		return err
	}

	// The password check runs even when no field changes, so a hijacked
	// session cannot silently confirm edits without the credential.
	if err := s.verifier.VerifyPassword(ctx, session, req.Password); err != nil {
		if errors.Is(err, authservice.ErrPasswordMismatch) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "profile_update_invalid_password",
			}).Warn("profile update failed: invalid password")
			incrementCredentialChecksFailed()
			return ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": session.UserID,
			"action":  "profile_update_verify_failed",
		}).Errorf("profile update failed: credential check error: %v", err)
		return ErrStoreUnavailable.WithCause(err)
	}

	userID := userdomain.ID(session.UserID)

	fields := make(map[string]string, 1)
	if req.Username != nil {
		taken, err := s.repo.IsUsernameTaken(ctx, *req.Username, userID)
		if err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "profile_update_uniqueness_check_failed",
			}).Errorf("profile update failed: uniqueness check error: %v", err)
			return ErrStoreUnavailable.WithCause(err)
		}
		if taken {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "profile_update_username_taken",
			}).Warn("profile update failed: username taken")
			incrementUsernameConflicts()
			return ErrUsernameTaken
		}

		fields["username"] = *req.Username
	}

	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		// The unique index catches the writer that loses the
		// check-then-write race.
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "profile_update_username_taken",
			}).Warn("profile update failed: username taken on write")
			incrementUsernameConflicts()
			return ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": session.UserID,
			"action":  "profile_update_write_failed",
		}).Errorf("profile update failed: %v", err)
		return ErrStoreUnavailable.WithCause(err)
	}

	incrementProfileUpdates()
	if req.Username != nil {
		incrementUsernameChanges()
	}

	s.notifier.NotifyUserUpdate(ctx, events.NewUserUpdateEvent(session.UserID, req.Username))

	s.log.WithFields(ctx, logger.Fields{
		"user_id": session.UserID,
		"action":  "profile_update_success",
	}).Info("profile update success")

	return nil
}
