package profile

import (
	"regexp"
	"strings"
	"testing"

	"github.com/driftchat/backend/internal/common/constants"
	commonerrors "github.com/driftchat/backend/internal/common/errors"
	profileservice "github.com/driftchat/backend/internal/profile/service"
)

func newValidator(t *testing.T) *profileservice.RequestValidator {
	t.Helper()

	v, err := profileservice.NewRequestValidator(regexp.MustCompile(constants.DefaultUsernamePattern))
	if err != nil {
		t.Fatalf("failed to build request validator: %v", err)
	}
	return v
}

func TestRequestValidator_Valid(t *testing.T) {
	cases := []struct {
		name     string
		username *string
		password string
	}{
		{"no username", nil, "password123"},
		{"simple username", strPtr("newuser"), "password123"},
		{"dots and underscores", strPtr("new.user_42"), "password123"},
		{"min length username", strPtr("ab"), "password123"},
		{"max length username", strPtr(strings.Repeat("a", 32)), "password123"},
		{"min length password", strPtr("newuser"), strings.Repeat("p", 8)},
		{"max length password", strPtr("newuser"), strings.Repeat("p", 72)},
	}

	v := newValidator(t)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(profileservice.ChangeRequest{
				Username: tc.username,
				Password: tc.password,
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestRequestValidator_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		username *string
		password string
		field    string
	}{
		{"username too short", strPtr("a"), "password123", "username"},
		{"username too long", strPtr(strings.Repeat("a", 33)), "password123", "username"},
		{"username with space", strPtr("new user"), "password123", "username"},
		{"username with dash", strPtr("new-user"), "password123", "username"},
		{"username with slash", strPtr("new/user"), "password123", "username"},
		{"empty username", strPtr(""), "password123", "username"},
		{"missing password", strPtr("newuser"), "", "password"},
		{"password too short", strPtr("newuser"), strings.Repeat("p", 7), "password"},
		{"password too long", strPtr("newuser"), strings.Repeat("p", 73), "password"},
	}

	v := newValidator(t)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(profileservice.ChangeRequest{
				Username: tc.username,
				Password: tc.password,
			})
			if err == nil {
				t.Fatal("expected validation error")
			}

			domainErr, ok := commonerrors.AsDomainError(err)
			if !ok || domainErr.Code() != "VALIDATION_FAILED" {
				t.Fatalf("expected VALIDATION_FAILED error, got %v", err)
			}

			if _, found := domainErr.Details()[tc.field]; !found {
				t.Errorf("expected detail for field %s, got %v", tc.field, domainErr.Details())
			}
		})
	}
}

func TestRequestValidator_CustomPattern(t *testing.T) {
	v, err := profileservice.NewRequestValidator(regexp.MustCompile(`^[a-z]+$`))
	if err != nil {
		t.Fatalf("failed to build request validator: %v", err)
	}

	if err := v.Validate(profileservice.ChangeRequest{
		Username: strPtr("lowercase"),
		Password: "password123",
	}); err != nil {
		t.Errorf("expected lowercase username to pass custom pattern, got %v", err)
	}

	if err := v.Validate(profileservice.ChangeRequest{
		Username: strPtr("MixedCase"),
		Password: "password123",
	}); err == nil {
		t.Error("expected mixed case username to fail custom pattern")
	}
}
