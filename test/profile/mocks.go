package profile

import (
	"context"
	"regexp"
	"testing"

	authdomain "github.com/driftchat/backend/internal/auth/domain"
	"github.com/driftchat/backend/internal/common/constants"
	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/events"
	profileservice "github.com/driftchat/backend/internal/profile/service"
	userdomain "github.com/driftchat/backend/internal/user/domain"
	userrepo "github.com/driftchat/backend/internal/user/repository"
)

func setupProfileService(t *testing.T) (*profileservice.Service, *mockUserRepo, *mockVerifier, *mockNotifier) {
	t.Helper()

	repo := &mockUserRepo{}
	verifier := &mockVerifier{}
	notifier := &mockNotifier{}

	validator, err := profileservice.NewRequestValidator(regexp.MustCompile(constants.DefaultUsernamePattern))
	if err != nil {
		t.Fatalf("failed to build request validator: %v", err)
	}

	svc := profileservice.NewService(repo, verifier, validator, notifier, logger.NewNop())
	return svc, repo, verifier, notifier
}

type mockUserRepo struct {
	findByIDFunc        func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findByUsernameFunc  func(ctx context.Context, username string) (userdomain.User, error)
	isUsernameTakenFunc func(ctx context.Context, username string, exclude userdomain.ID) (bool, error)
	updateFieldsFunc    func(ctx context.Context, id userdomain.ID, fields map[string]string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) IsUsernameTaken(ctx context.Context, username string, exclude userdomain.ID) (bool, error) {
	if m.isUsernameTakenFunc != nil {
		return m.isUsernameTakenFunc(ctx, username, exclude)
	}
	return false, nil
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id userdomain.ID, fields map[string]string) error {
	if m.updateFieldsFunc != nil {
		return m.updateFieldsFunc(ctx, id, fields)
	}
	return nil
}

type mockVerifier struct {
	verifyPasswordFunc func(ctx context.Context, session authdomain.Session, password string) error
}

func (m *mockVerifier) VerifyPassword(ctx context.Context, session authdomain.Session, password string) error {
	if m.verifyPasswordFunc != nil {
		return m.verifyPasswordFunc(ctx, session, password)
	}
	return nil
}

type mockNotifier struct {
	notifyFunc func(ctx context.Context, event events.UserUpdateEvent)
	published  []events.UserUpdateEvent
}

func (m *mockNotifier) NotifyUserUpdate(ctx context.Context, event events.UserUpdateEvent) {
	m.published = append(m.published, event)
	if m.notifyFunc != nil {
		m.notifyFunc(ctx, event)
	}
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}
