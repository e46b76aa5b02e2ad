package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"idcore/api/internal/apperr"
)

func TestGetProfile(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	profile, err := f.user.GetProfile(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, view, profile)

	_, err = f.user.GetProfile(context.Background(), "missing-id")
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
	require.EqualError(t, err, "User not found")
}

func TestUpdateProfile(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	bio := "Short bio"
	avatar := "https://example.com/avatar.jpg"
	updated, err := f.user.UpdateProfile(context.Background(), view.ID, UpdateProfileInput{
		Name:      "Renamed User",
		Bio:       &bio,
		AvatarURL: &avatar,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed User", updated.Name)
	require.Equal(t, &bio, updated.Bio)
	require.Equal(t, &avatar, updated.AvatarURL)

	profile, err := f.user.GetProfile(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed User", profile.Name)
	require.Equal(t, &bio, profile.Bio)

	// Omitting bio and avatar clears them.
	updated, err = f.user.UpdateProfile(context.Background(), view.ID, UpdateProfileInput{
		Name: "Renamed User",
	})
	require.NoError(t, err)
	require.Nil(t, updated.Bio)
	require.Nil(t, updated.AvatarURL)
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	_, err := f.user.UpdateProfile(context.Background(), view.ID, UpdateProfileInput{Name: "  "})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	longBio := strings.Repeat("a", 501)
	_, err = f.user.UpdateProfile(context.Background(), view.ID, UpdateProfileInput{
		Name: "Test User",
		Bio:  &longBio,
	})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	badURL := "not-a-url"
	_, err = f.user.UpdateProfile(context.Background(), view.ID, UpdateProfileInput{
		Name:      "Test User",
		AvatarURL: &badURL,
	})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	require.EqualError(t, err, "Avatar URL must be a valid HTTP/HTTPS URL")
}

func TestChangePassword(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	err := f.user.ChangePassword(context.Background(), view.ID, ChangePasswordInput{
		CurrentPassword: "password123",
		NewPassword:     "newpassword456",
	})
	require.NoError(t, err)

	// Old plaintext no longer authenticates; new one does.
	_, err = f.auth.LoginAPI(context.Background(), LoginInput{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.EqualError(t, err, "Invalid email or password")

	_, err = f.auth.LoginAPI(context.Background(), LoginInput{
		Email:    "test@example.com",
		Password: "newpassword456",
	})
	require.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	err := f.user.ChangePassword(context.Background(), view.ID, ChangePasswordInput{
		CurrentPassword: "wrongpassword",
		NewPassword:     "newpassword456",
	})
	require.EqualError(t, err, "Invalid current password")
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))

	// The rejected change leaves the old password in force.
	_, err = f.auth.LoginAPI(context.Background(), LoginInput{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
}

func TestChangePasswordTooShort(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	err := f.user.ChangePassword(context.Background(), view.ID, ChangePasswordInput{
		CurrentPassword: "password123",
		NewPassword:     "short",
	})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestVerifyEmail(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)
	require.False(t, view.EmailVerified)

	require.NoError(t, f.user.VerifyEmail(context.Background(), view.ID))

	profile, err := f.user.GetProfile(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, profile.EmailVerified)
}

func TestDeactivateAndReactivate(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	require.NoError(t, f.user.Deactivate(context.Background(), view.ID))
	_, err := f.auth.LoginAPI(context.Background(), LoginInput{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.EqualError(t, err, "Account is not active")

	require.NoError(t, f.user.Reactivate(context.Background(), view.ID))
	_, err = f.auth.LoginAPI(context.Background(), LoginInput{
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	f := newServiceFixture()
	view := registerTestUser(t, f)

	require.NoError(t, f.user.DeleteAccount(context.Background(), view.ID))

	err := f.user.DeleteAccount(context.Background(), view.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
