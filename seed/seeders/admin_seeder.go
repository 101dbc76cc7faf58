package seeders

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

// AdminSeeder creates admin accounts. An existing nickname is left alone.
type AdminSeeder struct {
	storage *services.StorageService
}

func NewAdminSeeder(storage *services.StorageService) *AdminSeeder {
	return &AdminSeeder{storage: storage}
}

func (s *AdminSeeder) SeedAdmin(ctx context.Context, nickname, password string) (*model.User, error) {
	return seedUser(ctx, s.storage, nickname, password, shared.RoleAdmin)
}

func seedUser(ctx context.Context, storage *services.StorageService, nickname, password, role string) (*model.User, error) {
	existing, err := storage.Users().GetUserByNickname(ctx, nickname)
	if err == nil {
		log.WithField("nickname", nickname).Info("User already exists, skipping")
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := storage.Users().CreateUser(ctx, &model.User{
		Nickname: nickname,
		Password: string(hash),
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"nickname": nickname, "id": user.ID, "role": role}).Info("Created user")
	return user, nil
}
