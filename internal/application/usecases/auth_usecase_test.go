package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/dbtest"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/migrations"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, ttl time.Duration) *usecases.AuthUseCase {
	t.Helper()
	db := dbtest.Open(t)
	require.NoError(t, migrations.SeedAdmin(context.Background(), db, "Admin@Example.com", "s3cret-pass"))
	return usecases.NewAuthUseCase(repositories.NewUserRepository(db), "test-secret", ttl)
}

func TestLoginAndParseToken(t *testing.T) {
	auth := newAuth(t, time.Hour)

	res, err := auth.Login(context.Background(), "admin@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, entities.RoleAdmin, res.User.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := auth.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuth(t, time.Hour)
	ctx := context.Background()

	_, err := auth.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, usecases.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, usecases.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, usecases.ErrInvalidCredentials)
}

func TestParseTokenRejects(t *testing.T) {
	auth := newAuth(t, -time.Minute)
	res, err := auth.Login(context.Background(), "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = auth.ParseToken(res.Token)
	assert.ErrorIs(t, err, usecases.ErrInvalidToken, "expired")

	other := usecases.NewAuthUseCase(nil, "other-secret", time.Hour)
	token, _, err := other.IssueToken(&entities.User{ID: 1, Role: entities.RoleAdmin})
	require.NoError(t, err)
	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, usecases.ErrInvalidToken, "wrong signature")

	_, err = auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, usecases.ErrInvalidToken)
}

func TestEmptySecretDisablesTokens(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, migrations.SeedAdmin(context.Background(), db, "admin@example.com", "s3cret-pass"))
	auth := usecases.NewAuthUseCase(repositories.NewUserRepository(db), "", time.Hour)

	_, err := auth.Login(context.Background(), "admin@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, usecases.ErrTokensDisabled)

	_, _, err = auth.IssueToken(&entities.User{ID: 1, Role: entities.RoleAdmin})
	assert.ErrorIs(t, err, usecases.ErrTokensDisabled)

	// a token signed with the empty key must not be accepted
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &usecases.Claims{
		Role: entities.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "workflow-insights-api",
			Subject:   "999",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(""))
	require.NoError(t, err)
	claims, err := auth.ParseToken(forged)
	assert.ErrorIs(t, err, usecases.ErrTokensDisabled)
	assert.Nil(t, claims)
}
