package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/middleware"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

var errInvalidCredentials = errors.New("invalid nickname or password")

type AuthService struct {
	appContext.DefaultService

	storage *StorageService
	jwtSvc  *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func NewAuthService(storage *StorageService, jwtSvc *JWTService) *AuthService {
	return &AuthService{storage: storage, jwtSvc: jwtSvc}
}

func (svc *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	nickname := strings.TrimSpace(req.Nickname)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user, err := svc.storage.Users().CreateUser(ctx, &model.User{
		Nickname: nickname,
		Password: string(hash),
		Role:     shared.RoleUser,
	})
	if errors.Is(err, repositories.ErrNicknameTaken) {
		return nil, shared.NewConflictError(err, "Nickname already exists")
	}
	if err != nil {
		return nil, writeError(err, "User")
	}

	log.Info().Str("userId", user.ID).Msg("User registered")
	return svc.authResponse(user)
}

// Login accepts bcrypt hashes and, for records written before hashing was
// introduced, plaintext passwords. A plaintext match is rehashed in place.
func (svc *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := svc.storage.Users().GetUserByNickname(ctx, strings.TrimSpace(req.Nickname))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, shared.NewUnauthorizedError(errInvalidCredentials, "Invalid nickname or password")
	}
	if err != nil {
		return nil, lookupError(err, "User")
	}

	if !isBcryptHash(user.Password) {
		if subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
			return nil, shared.NewUnauthorizedError(errInvalidCredentials, "Invalid nickname or password")
		}
		svc.upgradePassword(ctx, user, req.Password)
	} else if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(errInvalidCredentials, "Invalid nickname or password")
	}

	return svc.authResponse(user)
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (svc *AuthService) upgradePassword(ctx context.Context, user *model.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("Failed to hash legacy password")
		return
	}
	if _, err := svc.storage.Users().UpdateUser(ctx, user.ID, map[string]interface{}{"password": string(hash)}); err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("Failed to upgrade legacy password")
	}
}

func (svc *AuthService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID, svc.jwtSvc.RoleFor(user.Nickname, user.Role))
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}
	return &dto.AuthResponse{
		User:        user.Public(),
		AccessToken: tokens.AccessToken,
		ExpiresIn:   tokens.ExpiresIn,
	}, nil
}

func (svc *AuthService) RequiredAuth() fiber.Handler {
	return middleware.RequiredAuth(svc.jwtSvc)
}

func (svc *AuthService) RequireRole(role string) fiber.Handler {
	return middleware.RequireRole(role)
}
