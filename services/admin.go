package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
)

const (
	defaultAdminPageSize = 20
)

// AdminService computes dashboards from the list indexes and deletes users
// through the ownership graph.
type AdminService struct {
	appContext.DefaultService

	storage *StorageService
}

const ADMIN_SVC = "admin_svc"

func (svc AdminService) Id() string {
	return ADMIN_SVC
}

func (svc *AdminService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AdminService) Start() error {
	svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	return nil
}

func NewAdminService(storage *StorageService) *AdminService {
	return &AdminService{storage: storage}
}

// summarize gathers one user's counts. Reflection items are read from the
// reflection stage of every letter.
func (svc *AdminService) summarize(ctx context.Context, user *model.User) (dto.AdminUserSummary, error) {
	summary := dto.AdminUserSummary{
		ID:           user.ID,
		Nickname:     user.Nickname,
		CreatedAt:    user.CreatedAt,
		LastActivity: user.LastModified(),
	}

	sessions, err := svc.storage.Sessions().ListSessions(ctx, user.ID)
	if err != nil {
		return summary, err
	}
	answers, err := svc.storage.Answers().ListAnswers(ctx, user.ID)
	if err != nil {
		return summary, err
	}
	letters, err := svc.storage.Letters().ListLetters(ctx, user.ID)
	if err != nil {
		return summary, err
	}

	summary.SessionCount = len(sessions)
	summary.QuestionAnswersCount = len(answers)
	summary.LetterCount = len(letters)

	bump := func(t interface{ LastModified() time.Time }) {
		if t.LastModified().After(summary.LastActivity) {
			summary.LastActivity = t.LastModified()
		}
	}
	for _, s := range sessions {
		bump(s)
	}
	for _, l := range letters {
		bump(l)

		reflection, err := svc.storage.Steps().GetReflection(ctx, l.SessionIDs.Reflection)
		if err != nil {
			if repositories.IsNotFound(err) {
				continue
			}
			return summary, err
		}
		bump(reflection)
		for _, item := range reflection.ReflectionItems {
			summary.ReflectionCount++
			if item.IsCompleted() {
				summary.CompletedReflectionCount++
			}
		}
	}
	return summary, nil
}

func (svc *AdminService) summaries(ctx context.Context) ([]dto.AdminUserSummary, error) {
	users, err := svc.storage.Users().ListUsers(ctx)
	if err != nil {
		return nil, lookupError(err, "Users")
	}

	out := make([]dto.AdminUserSummary, 0, len(users))
	for _, u := range users {
		summary, err := svc.summarize(ctx, u)
		if err != nil {
			return nil, lookupError(err, "User activity")
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (svc *AdminService) GetStats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	users, err := svc.summaries(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.AdminStatsResponse{TotalUsers: len(users), Users: users}
	usersWithSessions := 0
	for _, u := range users {
		stats.TotalQuestionAnswers += u.QuestionAnswersCount
		stats.TotalGeneratedLetters += u.LetterCount
		stats.TotalSessions += u.SessionCount
		stats.TotalReflections += u.ReflectionCount
		stats.CompletedReflections += u.CompletedReflectionCount
		if u.SessionCount > 0 || u.LetterCount > 0 {
			usersWithSessions++
		}
	}
	stats.CompletionRate = percent(stats.CompletedReflections, stats.TotalReflections)
	stats.SessionCreationRate = percent(usersWithSessions, stats.TotalUsers)
	return stats, nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// ListUsers pages through users newest first, optionally filtered by a
// case-insensitive nickname substring.
func (svc *AdminService) ListUsers(ctx context.Context, req dto.AdminUsersRequest) (*dto.AdminUserListResponse, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultAdminPageSize
	}

	users, err := svc.summaries(ctx)
	if err != nil {
		return nil, err
	}

	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		filtered := users[:0]
		for _, u := range users {
			if strings.Contains(strings.ToLower(u.Nickname), search) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	total := len(users)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &dto.AdminUserListResponse{
		Users:       users[start:end],
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		TotalUsers:  total,
	}, nil
}

func (svc *AdminService) GetUserActivity(ctx context.Context, userID string) (*dto.UserActivityResponse, error) {
	user, err := svc.storage.Users().GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User")
	}

	answers, err := svc.storage.Answers().ListAnswers(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Answers")
	}
	sessions, err := svc.storage.Sessions().ListSessions(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Sessions")
	}
	letters, err := svc.storage.Letters().ListLetters(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Letters")
	}
	analyses, err := svc.storage.Letters().ListStrengthAnalyses(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Strength analyses")
	}

	return &dto.UserActivityResponse{
		User:             user.Public(),
		QuestionAnswers:  answers,
		Sessions:         sessions,
		Letters:          letters,
		StrengthAnalyses: analyses,
	}, nil
}

// DeleteUser removes the user and everything the ownership graph says they
// own.
func (svc *AdminService) DeleteUser(ctx context.Context, userID string) (*dto.DeleteUserResponse, error) {
	report, err := svc.storage.Graph().CascadeDelete(ctx, svc.storage.Store(), repositories.NodeUser, userID)
	if err != nil {
		return nil, writeError(err, "User")
	}

	entities := make(map[string]int, len(report.Entities))
	for node, n := range report.Entities {
		entities[string(node)] = n
	}
	recordCascade(len(report.DeletedKeys))
	log.Info().Str("userId", userID).Int("keys", len(report.DeletedKeys)).Interface("entities", entities).Msg("User deleted")

	return &dto.DeleteUserResponse{
		UserID:      userID,
		DeletedKeys: len(report.DeletedKeys),
		Entities:    entities,
	}, nil
}
