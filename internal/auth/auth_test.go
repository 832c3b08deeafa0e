package auth

import (
	"testing"
	"time"

	"gotrip/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func testManager() *Manager {
	return NewManager(Config{Secret: testSecret, TTL: time.Hour, BcryptCost: bcrypt.MinCost})
}

func TestIssueAndVerify(t *testing.T) {
	m := testManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleStaff}

	token, err := m.Issue(user)
	require.NoError(t, err)

	actor, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, models.RoleStaff, actor.Role)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager()
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue(&models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewManager(Config{Secret: "other"}).Issue(&models.User{ID: uuid.New(), Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = testManager().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = testManager().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTokenWithoutExpiry(t *testing.T) {
	claims := Claims{
		Role: models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: uuid.NewString(),
			Issuer:  issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = testManager().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := testManager().Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	m := testManager()
	hash, err := m.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, m.CheckPassword(hash, "correct horse"))
	assert.False(t, m.CheckPassword(hash, "wrong horse"))
}
