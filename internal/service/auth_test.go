package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/queue"
)

func TestSignupThenLogin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a, err := env.auth.Signup(ctx, validSignup("jane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, model.KindUser, a.Kind)
	assert.Equal(t, "user", a.Role)
	assert.Equal(t, []string{queue.AccountRegistered}, env.events.types())

	got, err := env.auth.Login(ctx, LoginInput{Email: "JANE@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestSignupAdminRole(t *testing.T) {
	env := setupTestEnv(t)
	in := validSignup("boss@example.com")
	in.Role = "admin"
	a, err := env.auth.Signup(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.KindAdmin, a.Kind)
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SignupInput)
		want   string
	}{
		{"blank first name", func(in *SignupInput) { in.FirstName = "  " }, MsgFillAllFields},
		{"blank confirm", func(in *SignupInput) { in.ConfirmPassword = "" }, MsgFillAllFields},
		{"blank beats bad email", func(in *SignupInput) { in.LastName = ""; in.Email = "nope" }, MsgFillAllFields},
		{"malformed email", func(in *SignupInput) { in.Email = "jane@example" }, MsgInvalidEmail},
		{"mismatch", func(in *SignupInput) { in.ConfirmPassword = "secret2" }, MsgPasswordsDiffer},
		{"mismatch beats short", func(in *SignupInput) { in.Password = "abc"; in.ConfirmPassword = "abd" }, MsgPasswordsDiffer},
		{"short", func(in *SignupInput) { in.Password = "abc"; in.ConfirmPassword = "abc" }, MsgPasswordShort},
		{"unknown role", func(in *SignupInput) { in.Role = "owner" }, MsgInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			in := validSignup("jane@example.com")
			tt.modify(&in)
			_, err := env.auth.Signup(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.want, err.Error())

			n, err := env.accounts.CountByKind(context.Background(), model.KindUser)
			require.NoError(t, err)
			assert.Zero(t, n, "no account is created")
		})
	}
}

func TestSignupDuplicateEmailAcrossKinds(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	admin := validSignup("taken@example.com")
	admin.Role = "admin"
	_, err := env.auth.Signup(ctx, admin)
	require.NoError(t, err)

	_, err = env.auth.Signup(ctx, validSignup("Taken@Example.com"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, MsgEmailTaken, err.Error())

	users, err := env.accounts.CountByKind(ctx, model.KindUser)
	require.NoError(t, err)
	assert.Zero(t, users)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Signup(ctx, validSignup("jane@example.com"))
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong!"})
	_, unknownEmail := env.auth.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "secret1"})
	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, ErrAuth)
	assert.ErrorIs(t, unknownEmail, ErrAuth)
	assert.Equal(t, MsgBadCredentials, wrongPassword.Error())
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = env.auth.Login(ctx, LoginInput{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	a, err := env.auth.Signup(ctx, validSignup("jane@example.com"))
	require.NoError(t, err)
	_, err = env.auth.Signup(ctx, validSignup("other@example.com"))
	require.NoError(t, err)

	first := "Janet"
	got, err := env.auth.UpdateProfile(ctx, a.ID, ProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Janet Doe", got.FullName())
	assert.Equal(t, "jane@example.com", got.Email)

	taken := "OTHER@example.com"
	_, err = env.auth.UpdateProfile(ctx, a.ID, ProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	bad := "not-an-email"
	_, err = env.auth.UpdateProfile(ctx, a.ID, ProfileInput{Email: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	blank := " "
	_, err = env.auth.UpdateProfile(ctx, a.ID, ProfileInput{LastName: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.auth.UpdateProfile(ctx, 999, ProfileInput{FirstName: &first})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	a, err := env.auth.Signup(ctx, validSignup("jane@example.com"))
	require.NoError(t, err)

	err = env.auth.ChangePassword(ctx, a.ID, PasswordInput{CurrentPassword: "nope!!", NewPassword: "secret2", ConfirmPassword: "secret2"})
	assert.ErrorIs(t, err, ErrAuth)

	err = env.auth.ChangePassword(ctx, a.ID, PasswordInput{CurrentPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret3"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgPasswordsDiffer, err.Error())

	require.NoError(t, env.auth.ChangePassword(ctx, a.ID,
		PasswordInput{CurrentPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret2"}))

	_, err = env.auth.Login(ctx, LoginInput{Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAuth)
	_, err = env.auth.Login(ctx, LoginInput{Email: "jane@example.com", Password: "secret2"})
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.auth.EnsureAdmin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.auth.EnsureAdmin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.False(t, created)

	a, err := env.auth.Login(ctx, LoginInput{Email: "root@example.com", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, model.KindAdmin, a.Kind)
}
