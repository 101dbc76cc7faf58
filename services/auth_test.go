package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/shared"
)

const testJWTSecret = "test-secret"

func newTestAuth(t *testing.T, admins ...string) (*testEnv, *AuthService, *JWTService) {
	t.Helper()
	env := newTestEnv(t, nil)
	jwtSvc := NewJWTService(testJWTSecret, admins...)
	return env, NewAuthService(env.storage, jwtSvc), jwtSvc
}

func TestRegisterAndLogin(t *testing.T) {
	_, auth, jwtSvc := newTestAuth(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, dto.RegisterRequest{Nickname: " alice ", Password: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.User.Nickname)
	assert.Empty(t, registered.User.Password)
	assert.Equal(t, shared.RoleUser, registered.User.Role)

	userID, role, err := jwtSvc.VerifyToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, userID)
	assert.Equal(t, shared.RoleUser, role)

	loggedIn, err := auth.Login(ctx, dto.LoginRequest{Nickname: "alice", Password: "1234"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.Equal(t, int64(86400), loggedIn.ExpiresIn)
}

func TestRegisterDuplicateNickname(t *testing.T) {
	_, auth, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, dto.RegisterRequest{Nickname: "alice", Password: "1234"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, dto.RegisterRequest{Nickname: "alice", Password: "5678"})
	requireAppError(t, err, http.StatusConflict)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, auth, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, dto.RegisterRequest{Nickname: "alice", Password: "1234"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, dto.LoginRequest{Nickname: "alice", Password: "0000"})
	requireAppError(t, err, http.StatusUnauthorized)

	_, err = auth.Login(ctx, dto.LoginRequest{Nickname: "bob", Password: "1234"})
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestLoginUpgradesPlaintextPassword(t *testing.T) {
	env, auth, _ := newTestAuth(t)
	ctx := context.Background()

	user, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: "legacy", Password: "4321"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, dto.LoginRequest{Nickname: "legacy", Password: "1111"})
	requireAppError(t, err, http.StatusUnauthorized)

	_, err = auth.Login(ctx, dto.LoginRequest{Nickname: "legacy", Password: "4321"})
	require.NoError(t, err)

	stored, err := env.storage.Users().GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, isBcryptHash(stored.Password))

	_, err = auth.Login(ctx, dto.LoginRequest{Nickname: "legacy", Password: "4321"})
	require.NoError(t, err)
}

func TestConfiguredAdminNicknameGetsAdminRole(t *testing.T) {
	_, auth, jwtSvc := newTestAuth(t, "root")

	resp, err := auth.Register(context.Background(), dto.RegisterRequest{Nickname: "root", Password: "1234"})
	require.NoError(t, err)

	_, role, err := jwtSvc.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, role)
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	other := NewJWTService("other-secret")
	token, err := other.ToJWT("user:1:abc", shared.RoleAdmin)
	require.NoError(t, err)

	_, _, err = NewJWTService(testJWTSecret).VerifyToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := NewJWTService(testJWTSecret)

	token, err := svc.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = svc.ExtractTokenFromHeader("")
	assert.Error(t, err)
	_, err = svc.ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)
}
