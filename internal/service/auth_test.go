package service

import (
	"context"
	"testing"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Auth.Register(ctx, &models.RegisterRequest{Name: " Nur ", Email: "Nur@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.Equal(t, "nur@example.com", reg.User.Email)
	assert.Equal(t, "Nur", reg.User.Name)

	_, err = f.svc.Auth.Register(ctx, &models.RegisterRequest{Name: "Nur", Email: "nur@example.com", Password: "another pass"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	login, err := f.svc.Auth.Login(ctx, &models.LoginRequest{Email: "NUR@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = f.svc.Auth.Login(ctx, &models.LoginRequest{Email: "nur@example.com", Password: "wrong"})
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))
	_, err = f.svc.Auth.Login(ctx, &models.LoginRequest{Email: "ghost@example.com", Password: "correct horse"})
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))

	user, err := f.svc.Auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = f.svc.Auth.Authenticate(ctx, "garbage")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))
}

func TestAuthenticatePicksUpRoleChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Auth.Register(ctx, &models.RegisterRequest{Name: "Nur", Email: "nur@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = f.svc.Auth.UpdateRole(ctx, f.staff, reg.User.ID, &models.UpdateRoleRequest{Role: models.RoleStaff})
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	updated, err := f.svc.Auth.UpdateRole(ctx, f.admin, reg.User.ID, &models.UpdateRoleRequest{Role: models.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, updated.Role)

	user, err := f.svc.Auth.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role)

	_, err = f.svc.Auth.UpdateRole(ctx, f.admin, reg.User.ID, &models.UpdateRoleRequest{Role: "root"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
