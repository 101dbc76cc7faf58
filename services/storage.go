package services

import (
	"errors"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

// StorageService owns the repositories built on top of the shared store.
type StorageService struct {
	context.DefaultService

	base          repositories.BaseRepository
	users         *repositories.UserRepository
	answers       *repositories.AnswersRepository
	sessions      *repositories.SessionRepository
	letters       *repositories.LetterRepository
	cleanSessions *repositories.CleanSessionRepository
	steps         *repositories.StepRepository
}

const STORAGE_SVC = "storage_svc"

func (svc StorageService) Id() string {
	return STORAGE_SVC
}

func (svc *StorageService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StorageService) Start() error {
	redisSvc := svc.Service(REDIS_SVC).(*RedisService)
	svc.init(repositories.NewBaseRepository(redisSvc.Store()))
	return nil
}

func (svc *StorageService) init(base repositories.BaseRepository) {
	svc.base = base
	svc.users = repositories.NewUserRepository(base)
	svc.answers = repositories.NewAnswersRepository(base)
	svc.sessions = repositories.NewSessionRepository(base)
	svc.letters = repositories.NewLetterRepository(base)
	svc.cleanSessions = repositories.NewCleanSessionRepository(base)
	svc.steps = repositories.NewStepRepository(base)
}

// NewStorageService builds the repositories over an existing store.
func NewStorageService(base repositories.BaseRepository) *StorageService {
	svc := &StorageService{}
	svc.init(base)
	return svc
}

func (svc *StorageService) Store() repositories.Store {
	return svc.base.Store()
}

func (svc *StorageService) Users() *repositories.UserRepository {
	return svc.users
}

func (svc *StorageService) Answers() *repositories.AnswersRepository {
	return svc.answers
}

func (svc *StorageService) Sessions() *repositories.SessionRepository {
	return svc.sessions
}

func (svc *StorageService) Letters() *repositories.LetterRepository {
	return svc.letters
}

func (svc *StorageService) CleanSessions() *repositories.CleanSessionRepository {
	return svc.cleanSessions
}

func (svc *StorageService) Steps() *repositories.StepRepository {
	return svc.steps
}

func (svc *StorageService) Graph() *repositories.Graph {
	return svc.base.Graph()
}

// lookupError maps a repository read failure to an AppError.
func lookupError(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return shared.NewNotFoundError(err, what+" not found")
	}
	log.Error().Err(err).Str("entity", what).Msg("Storage read failed")
	return shared.NewInternalError(err, "Failed to load "+strings.ToLower(what))
}

func writeError(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return shared.NewNotFoundError(err, what+" not found")
	}
	log.Error().Err(err).Str("entity", what).Msg("Storage write failed")
	return shared.NewInternalError(err, "Failed to save "+strings.ToLower(what))
}
