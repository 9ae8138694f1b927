package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	require.NoError(t, db.Create(&model.Role{Name: "user"}).Error)

	cfg := testConfig()
	cfg.JWTSecret = "test-secret"
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegister_AwardsSignupPoints(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)

	name := "Alice"
	resp, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:    "alice@example.com",
		Password: "supersecret",
		Name:     &name,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotNil(t, resp.User)
	assert.Empty(t, resp.User.PasswordHash)
	assert.Equal(t, 50, resp.User.LifetimePoints)
	assert.Equal(t, 50, resp.User.CurrentMonthPoints)

	var events []model.PointEvent
	require.NoError(t, db.Where("user_id = ?", resp.User.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventSignup, events[0].Type)
	assert.Equal(t, 50, events[0].Points)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	input := dto.RegisterInput{Email: "alice@example.com", Password: "supersecret"}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterInput{Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, dto.LoginInput{Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)

	// The token must carry the user id as its subject.
	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(resp.AccessToken, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.Subject)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterInput{Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "alice@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
