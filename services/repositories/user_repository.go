package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/heartletter/letter_api/model"
	log "github.com/sirupsen/logrus"
)

var ErrNicknameTaken = errors.New("nickname already exists")

// UserRepository handles user documents and the nickname pointer
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) *UserRepository {
	return &UserRepository{BaseRepository: base}
}

// CreateUser claims the nickname pointer first so two concurrent
// registrations can never share a nickname.
func (ds *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := ds.Now()
	user.ID = ds.newID(PrefixUser)
	user.CreatedAt = now
	user.UpdatedAt = now

	claimed, err := ds.store.SetNX(ctx, NicknameKey(user.Nickname), user.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrNicknameTaken
	}

	if err := ds.putDocument(ctx, user.ID, user); err != nil {
		if delErr := ds.store.Delete(ctx, NicknameKey(user.Nickname)); delErr != nil {
			log.WithError(delErr).WithField("nickname", user.Nickname).Error("Failed to release nickname pointer")
		}
		return nil, err
	}

	if err := ds.store.LPush(ctx, AllUsersKey, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (ds *UserRepository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return getAs[model.User](ctx, &ds.BaseRepository, userID)
}

func (ds *UserRepository) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	userID, err := ds.resolvePointer(ctx, NicknameKey(nickname))
	if err != nil {
		return nil, err
	}
	return ds.GetUser(ctx, userID)
}

func (ds *UserRepository) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	id, err := ds.store.Get(ctx, NicknameKey(nickname))
	if err != nil {
		return false, err
	}
	return id != "", nil
}

func (ds *UserRepository) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (*model.User, error) {
	if err := ds.patchDocument(ctx, userID, fields); err != nil {
		return nil, err
	}
	return ds.GetUser(ctx, userID)
}

func (ds *UserRepository) ListUsers(ctx context.Context) ([]*model.User, error) {
	return listIndexed[model.User](ctx, &ds.BaseRepository, AllUsersKey)
}

// SaveUser overwrites a user document and repairs its indexes. Used when
// rewriting legacy records.
func (ds *UserRepository) SaveUser(ctx context.Context, user *model.User) error {
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = ds.Now()
	}
	if err := ds.putDocument(ctx, user.ID, user); err != nil {
		return err
	}

	if user.Nickname != "" {
		if _, err := ds.store.SetNX(ctx, NicknameKey(user.Nickname), user.ID); err != nil {
			return err
		}
	}
	return ds.pushIndex(ctx, AllUsersKey, user.ID)
}

// IsUserKey reports whether key names a user document rather than one of the
// user_* index keys.
func IsUserKey(key string) bool {
	return strings.HasPrefix(key, PrefixUser+":")
}
