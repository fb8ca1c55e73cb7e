package service

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
)

func newAuthService(ttl time.Duration) (*AuthService, *repository.MemoryUserRepository) {
	users := repository.NewMemoryUserRepository()
	return NewAuthService(users, "test-secret", ttl, testLogger()), users
}

func fakeRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Age:       gofakeit.Number(18, 80),
		Password:  gofakeit.Password(true, true, true, false, false, 12),
	}
}

func TestRegisterLogin_RoundTrip(t *testing.T) {
	svc, _ := newAuthService(time.Hour)
	ctx := context.Background()

	in := fakeRegisterInput()
	user, err := svc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role, "role defaults to user")
	assert.NotEqual(t, in.Password, user.Password, "password is stored hashed")

	token, loggedIn, err := svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	profile, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, in.Email, profile.Email)
	assert.Equal(t, in.FirstName, profile.FirstName)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newAuthService(time.Hour)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing age", func(in *RegisterInput) { in.Age = 0 }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fakeRegisterInput()
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(time.Hour)
	ctx := context.Background()

	in := fakeRegisterInput()
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	again := fakeRegisterInput()
	again.Email = in.Email
	_, err = svc.Register(ctx, again)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegister_ExplicitRole(t *testing.T) {
	svc, _ := newAuthService(time.Hour)

	in := fakeRegisterInput()
	in.Role = domain.RoleAdmin
	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newAuthService(time.Hour)
	ctx := context.Background()

	in := fakeRegisterInput()
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", in.Password)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, in.Email, "definitely-wrong")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestCurrentUser_TokenFailures(t *testing.T) {
	svc, _ := newAuthService(time.Hour)
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := svc.CurrentUser(ctx, "")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.CurrentUser(ctx, "not.a.token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _ := newAuthService(-time.Hour)
		in := fakeRegisterInput()
		_, err := expired.Register(ctx, in)
		require.NoError(t, err)

		token, _, err := expired.Login(ctx, in.Email, in.Password)
		require.NoError(t, err)

		_, err = expired.CurrentUser(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestCurrentUser_DeletedUser(t *testing.T) {
	svc, users := newAuthService(time.Hour)
	ctx := context.Background()

	in := fakeRegisterInput()
	user, err := svc.Register(ctx, in)
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)

	users.DeleteByID(user.ID.Hex())

	_, err = svc.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
