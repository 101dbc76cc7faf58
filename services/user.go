package services

import (
	"context"

	appContext "github.com/alphabatem/common/context"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

// UserService covers profiles, onboarding answers and the coarse letter
// sessions.
type UserService struct {
	appContext.DefaultService

	storage *StorageService
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	return nil
}

func NewUserService(storage *StorageService) *UserService {
	return &UserService{storage: storage}
}

// ==================== PROFILE ====================

func (svc *UserService) GetUserProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := svc.storage.Users().GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User")
	}
	public := user.Public()
	return &public, nil
}

func (svc *UserService) UpdateUserProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*model.User, error) {
	fields := req.Fields()
	if len(fields) == 0 {
		return svc.GetUserProfile(ctx, userID)
	}

	user, err := svc.storage.Users().UpdateUser(ctx, userID, fields)
	if err != nil {
		return nil, writeError(err, "User")
	}
	public := user.Public()
	return &public, nil
}

// ==================== ANSWERS ====================

func (svc *UserService) SaveAnswers(ctx context.Context, req dto.SaveAnswersRequest) (*model.QuestionAnswers, error) {
	if req.AnswersID != "" {
		current, err := svc.storage.Answers().GetAnswers(ctx, req.AnswersID)
		if err != nil {
			return nil, lookupError(err, "Answers")
		}
		if err := checkOwner(current.UserID, req.UserID, "Answers"); err != nil {
			return nil, err
		}
		answers, err := svc.storage.Answers().UpdateAnswers(ctx, req.AnswersID, req.Answers)
		if err != nil {
			return nil, writeError(err, "Answers")
		}
		return answers, nil
	}

	if _, err := svc.storage.Users().GetUser(ctx, req.UserID); err != nil {
		return nil, lookupError(err, "User")
	}
	answers, err := svc.storage.Answers().CreateAnswers(ctx, req.UserID, req.Answers)
	if err != nil {
		return nil, writeError(err, "Answers")
	}
	return answers, nil
}

func (svc *UserService) GetAnswers(ctx context.Context, answersID string) (*model.QuestionAnswers, error) {
	answers, err := svc.storage.Answers().GetAnswers(ctx, answersID)
	if err != nil {
		return nil, lookupError(err, "Answers")
	}
	return answers, nil
}

func (svc *UserService) ListAnswers(ctx context.Context, userID string) ([]*model.QuestionAnswers, error) {
	answers, err := svc.storage.Answers().ListAnswers(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Answers")
	}
	return answers, nil
}

// ==================== LETTER SESSIONS ====================

func (svc *UserService) SaveSession(ctx context.Context, req dto.SaveSessionRequest) (*model.LetterSession, error) {
	if req.SessionID != "" {
		current, err := svc.storage.Sessions().GetSession(ctx, req.SessionID)
		if err != nil {
			return nil, lookupError(err, "Session")
		}
		if err := checkOwner(current.UserID, req.UserID, "Session"); err != nil {
			return nil, err
		}
		session, err := svc.storage.Sessions().UpdateSession(ctx, req.SessionID, req.Fields())
		if err != nil {
			return nil, writeError(err, "Session")
		}
		return session, nil
	}

	session := &model.LetterSession{
		UserID:            req.UserID,
		QuestionAnswersID: req.QuestionAnswersID,
		HighlightedItems:  req.HighlightedItems,
		StrengthItems:     req.StrengthItems,
		ReflectionItems:   req.ReflectionItems,
		CurrentStep:       1,
	}
	if session.HighlightedItems == nil {
		session.HighlightedItems = []model.HighlightedItem{}
	}
	if req.CurrentStep != nil {
		session.CurrentStep = *req.CurrentStep
	}

	created, err := svc.storage.Sessions().CreateSession(ctx, session)
	if err != nil {
		return nil, writeError(err, "Session")
	}
	return created, nil
}

func (svc *UserService) GetSession(ctx context.Context, sessionID string) (*model.LetterSession, error) {
	session, err := svc.storage.Sessions().GetSession(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, "Session")
	}
	return session, nil
}

func (svc *UserService) ListSessions(ctx context.Context, userID string) ([]*model.LetterSession, error) {
	sessions, err := svc.storage.Sessions().ListSessions(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Sessions")
	}
	return sessions, nil
}

// DeleteSession removes a session owned by userID along with everything it
// owns.
func (svc *UserService) DeleteSession(ctx context.Context, sessionID, userID string) (*repositories.CascadeReport, error) {
	session, err := svc.storage.Sessions().GetSession(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, "Session")
	}
	if err := checkOwner(session.UserID, userID, "Session"); err != nil {
		return nil, err
	}

	report, err := svc.storage.Sessions().DeleteSession(ctx, sessionID)
	if err != nil {
		return nil, writeError(err, "Session")
	}
	recordCascade(len(report.DeletedKeys))
	log.Info().Str("sessionId", sessionID).Int("keys", len(report.DeletedKeys)).Msg("Session deleted")
	return report, nil
}

// checkOwner rejects callers acting on a document stored under another user.
// An empty caller id skips the check.
func checkOwner(owner, caller, entity string) error {
	if caller != "" && owner != caller {
		return shared.NewForbiddenError(nil, entity+" belongs to another user")
	}
	return nil
}
