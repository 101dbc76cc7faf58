package dto

import (
	"time"

	"github.com/heartletter/letter_api/model"
)

// ==================== ADMIN DTOs ====================

type AdminUserSummary struct {
	ID                       string    `json:"id"`
	Nickname                 string    `json:"nickname"`
	CreatedAt                time.Time `json:"createdAt"`
	SessionCount             int       `json:"sessionCount"`
	QuestionAnswersCount     int       `json:"questionAnswersCount"`
	LetterCount              int       `json:"letterCount"`
	ReflectionCount          int       `json:"reflectionCount"`
	CompletedReflectionCount int       `json:"completedReflectionCount"`
	LastActivity             time.Time `json:"lastActivity"`
}

type AdminStatsResponse struct {
	TotalUsers            int                `json:"totalUsers"`
	TotalQuestionAnswers  int                `json:"totalQuestionAnswers"`
	TotalGeneratedLetters int                `json:"totalGeneratedLetters"`
	TotalSessions         int                `json:"totalSessions"`
	TotalReflections      int                `json:"totalReflections"`
	CompletedReflections  int                `json:"completedReflections"`
	CompletionRate        float64            `json:"completionRate"`
	SessionCreationRate   float64            `json:"sessionCreationRate"`
	Users                 []AdminUserSummary `json:"users"`
}

type AdminUsersRequest struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"omitempty,max=30"`
}

func (a AdminUsersRequest) Validate() error {
	return GetValidator().Struct(a)
}

type AdminUserListResponse struct {
	Users       []AdminUserSummary `json:"users"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	TotalUsers  int                `json:"totalUsers"`
}

type DeleteUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (d DeleteUserRequest) Validate() error {
	return GetValidator().Struct(d)
}

type DeleteUserResponse struct {
	UserID      string         `json:"userId"`
	DeletedKeys int            `json:"deletedKeys"`
	Entities    map[string]int `json:"entities"`
}

type MigrationResponse struct {
	Name      string   `json:"name"`
	DryRun    bool     `json:"dryRun"`
	Scanned   int      `json:"scanned"`
	Migrated  int      `json:"migrated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
	Duration  string   `json:"duration"`
	StartedAt string   `json:"startedAt"`
}

type ExportRequest struct {
	UserID string `json:"userId,omitempty"`
}

type ExportResponse struct {
	ObjectName string    `json:"objectName"`
	URL        string    `json:"url"`
	Users      int       `json:"users"`
	Size       int64     `json:"size"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type UserActivityResponse struct {
	User             model.User                   `json:"user"`
	QuestionAnswers  []*model.QuestionAnswers     `json:"questionAnswers"`
	Sessions         []*model.LetterSession       `json:"sessions"`
	Letters          []*model.Letter              `json:"letters"`
	StrengthAnalyses []*model.StrengthAnalysisLog `json:"strengthAnalyses"`
}
