package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	RequiredAuth() fiber.Handler
	RequireRole(role string) fiber.Handler
}

type UserServiceInterface interface {
	GetUserProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*model.User, error)
	SaveAnswers(ctx context.Context, req dto.SaveAnswersRequest) (*model.QuestionAnswers, error)
	GetAnswers(ctx context.Context, answersID string) (*model.QuestionAnswers, error)
	ListAnswers(ctx context.Context, userID string) ([]*model.QuestionAnswers, error)
	SaveSession(ctx context.Context, req dto.SaveSessionRequest) (*model.LetterSession, error)
	GetSession(ctx context.Context, sessionID string) (*model.LetterSession, error)
	ListSessions(ctx context.Context, userID string) ([]*model.LetterSession, error)
	DeleteSession(ctx context.Context, sessionID, userID string) (*repositories.CascadeReport, error)
}

type LetterServiceInterface interface {
	GenerateLetter(ctx context.Context, req dto.GenerateLetterRequest) (*dto.GenerateLetterResponse, error)
	SaveLetter(ctx context.Context, req dto.SaveLetterRequest) (*model.Letter, error)
	GetLetter(ctx context.Context, letterID string) (*model.Letter, error)
	GetLetterByAnswers(ctx context.Context, answersID string) (*model.Letter, error)
	ListLetters(ctx context.Context, userID string) ([]*model.Letter, error)
}

type WorkflowServiceInterface interface {
	SaveUnderstanding(ctx context.Context, req dto.SaveCleanSessionRequest) (*model.UnderstandingSession, error)
	GetUnderstanding(ctx context.Context, sessionID string) (*model.UnderstandingSession, error)
	GetUnderstandingByLetter(ctx context.Context, letterID string) (*model.UnderstandingSession, error)
	SaveStrengthFinding(ctx context.Context, req dto.SaveCleanSessionRequest) (*model.StrengthFindingSession, error)
	GetStrengthFinding(ctx context.Context, sessionID string) (*model.StrengthFindingSession, error)
	GetStrengthFindingByLetter(ctx context.Context, letterID string) (*model.StrengthFindingSession, error)

	SaveReflection(ctx context.Context, req dto.SaveReflectionRequest) (*dto.SaveReflectionResponse, error)
	GetReflection(ctx context.Context, sessionID string) (*model.ReflectionStepData, error)
	SaveInspection(ctx context.Context, req dto.SaveInspectionRequest) error
	SaveSuggestion(ctx context.Context, req dto.SaveSuggestionRequest) error
	SaveSolutionExploration(ctx context.Context, req dto.SaveSolutionExplorationRequest) error
	SaveAIStrengthTags(ctx context.Context, req dto.SaveAIStrengthTagsRequest) error
	SaveMagicMix(ctx context.Context, req dto.SaveMagicMixRequest) error
	SaveLetterContent(ctx context.Context, req dto.SaveLetterContentRequest) error
	SaveResponseLetter(ctx context.Context, req dto.SaveResponseLetterRequest) error
	GetResponseLetter(ctx context.Context, letterID, sessionID string) (*model.ResponseLetterData, error)
	SaveCompletion(ctx context.Context, req dto.SaveCompletionRequest) (*dto.SaveCompletionResponse, error)

	CompleteReflection(ctx context.Context, req dto.CompleteReflectionRequest) (*dto.ReflectionItemResponse, error)
	RegenerateFactors(ctx context.Context, req dto.RegenerateFactorsRequest) (*dto.ReflectionItemResponse, error)
}

type AIServiceInterface interface {
	CheckEmotion(ctx context.Context, req dto.CheckRequest) model.EmotionCheckResult
	CheckBlame(ctx context.Context, req dto.CheckRequest) model.BlameCheckResult
	Summarize(ctx context.Context, req dto.SummarizeRequest) *dto.SummarizeResponse
	GenerateReflectionHints(ctx context.Context, req dto.ReflectionHintsRequest) *dto.ReflectionHintsResponse
	GenerateSolutions(ctx context.Context, req dto.GenerateSolutionsRequest) *dto.GenerateSolutionsResponse
	GenerateResponseLetter(ctx context.Context, req dto.GenerateResponseLetterRequest) (*dto.GenerateResponseLetterResponse, error)
}

type AdminServiceInterface interface {
	GetStats(ctx context.Context) (*dto.AdminStatsResponse, error)
	ListUsers(ctx context.Context, req dto.AdminUsersRequest) (*dto.AdminUserListResponse, error)
	GetUserActivity(ctx context.Context, userID string) (*dto.UserActivityResponse, error)
	DeleteUser(ctx context.Context, userID string) (*dto.DeleteUserResponse, error)
}

type MigrationServiceInterface interface {
	Run(ctx context.Context, name string, dryRun bool) (*dto.MigrationResponse, error)
}

type ExportServiceInterface interface {
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error)
}
