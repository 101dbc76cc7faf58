package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

type seededUser struct {
	user   *model.User
	letter *model.Letter
}

// seedActivity gives a user answers, a session, a letter and a reflection
// stage with one completed and one open item.
func seedActivity(t *testing.T, env *testEnv, nickname string) seededUser {
	t.Helper()
	ctx := context.Background()
	storage := env.storage

	user, err := storage.Users().CreateUser(ctx, &model.User{Nickname: nickname})
	require.NoError(t, err)
	answers, err := storage.Answers().CreateAnswers(ctx, user.ID, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	_, err = storage.Sessions().CreateSession(ctx, &model.LetterSession{UserID: user.ID, QuestionAnswersID: answers.ID})
	require.NoError(t, err)
	letter, err := storage.Letters().CreateLetter(ctx, &model.Letter{
		UserID:            user.ID,
		QuestionAnswersID: answers.ID,
		SessionIDs:        storage.Letters().NewStageSessionIDs(),
	})
	require.NoError(t, err)

	_, err = storage.Steps().SaveReflection(ctx, &model.ReflectionStepData{
		SessionID: letter.SessionIDs.Reflection,
		ReflectionItems: []model.ReflectionItem{
			{ID: "r1", Content: "done", InspectionStep: model.InspectionComplete},
			{ID: "r2", Content: "open"},
		},
	})
	require.NoError(t, err)
	_, err = storage.Steps().AddCompletion(ctx, letter.SessionIDs.Reflection, "r1", shared.CompletionActionCompleted)
	require.NoError(t, err)

	_, err = NewWorkflowService(storage, env.ai).SaveUnderstanding(ctx, dto.SaveCleanSessionRequest{
		LetterID:         letter.ID,
		HighlightedItems: []dto.HighlightInput{{ID: "h1", Text: "x"}},
	})
	require.NoError(t, err)

	return seededUser{user: user, letter: letter}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewAdminService(env.storage)
	ctx := context.Background()

	seedActivity(t, env, "mina")
	_, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: "idle"})
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalQuestionAnswers)
	assert.Equal(t, 1, stats.TotalGeneratedLetters)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 2, stats.TotalReflections)
	assert.Equal(t, 1, stats.CompletedReflections)
	assert.Equal(t, 50.0, stats.CompletionRate)
	assert.Equal(t, 50.0, stats.SessionCreationRate)
}

func TestAdminListUsersPagesAndFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewAdminService(env.storage)
	ctx := context.Background()

	for _, name := range []string{"Mina", "minho", "bora"} {
		_, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: name})
		require.NoError(t, err)
	}

	page, err := svc.ListUsers(ctx, dto.AdminUsersRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalUsers)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Users, 2)

	filtered, err := svc.ListUsers(ctx, dto.AdminUsersRequest{Search: "MIN"})
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.TotalUsers)

	beyond, err := svc.ListUsers(ctx, dto.AdminUsersRequest{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Users)
}

func TestAdminDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewAdminService(env.storage)
	ctx := context.Background()

	seeded := seedActivity(t, env, "mina")
	other, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: "bora"})
	require.NoError(t, err)

	resp, err := svc.DeleteUser(ctx, seeded.user.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.user.ID, resp.UserID)
	assert.Equal(t, 1, resp.Entities[string(repositories.NodeLetter)])
	assert.Equal(t, 1, resp.Entities[string(repositories.NodeCompletion)])

	want := []string{repositories.AllUsersKey, other.ID, repositories.NicknameKey("bora")}
	sort.Strings(want)
	assert.Equal(t, want, env.mr.Keys())

	_, err = svc.DeleteUser(ctx, seeded.user.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestAdminUserActivity(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewAdminService(env.storage)

	seeded := seedActivity(t, env, "mina")

	activity, err := svc.GetUserActivity(context.Background(), seeded.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "mina", activity.User.Nickname)
	assert.Len(t, activity.QuestionAnswers, 1)
	assert.Len(t, activity.Sessions, 1)
	require.Len(t, activity.Letters, 1)
	assert.Equal(t, seeded.letter.ID, activity.Letters[0].ID)
}

type fakeObjects struct {
	enabled   bool
	uploadErr error
	name      string
	body      []byte
}

func (f *fakeObjects) Enabled() bool { return f.enabled }

func (f *fakeObjects) Upload(_ context.Context, objectName string, reader io.Reader, size int64, _ string) (*minio.UploadInfo, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	f.name = objectName
	f.body = buf.Bytes()
	return &minio.UploadInfo{Key: objectName, Size: size}, nil
}

func (f *fakeObjects) PresignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://objects.test/" + objectName + "?sig=1", nil
}

func TestExportDisabledWithoutStorage(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewExportService(NewAdminService(env.storage), &fakeObjects{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{})
	requireAppError(t, err, http.StatusServiceUnavailable)
}

func TestExportUploadsSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	objects := &fakeObjects{enabled: true}
	svc := NewExportService(NewAdminService(env.storage), objects)
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc.now = fixedClock(at)

	seeded := seedActivity(t, env, "mina")
	seedActivity(t, env, "bora")

	all, err := svc.Export(context.Background(), dto.ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "exports/20240501T093000Z.json", all.ObjectName)
	assert.Equal(t, 2, all.Users)
	assert.Equal(t, int64(len(objects.body)), all.Size)
	assert.True(t, all.ExpiresAt.Equal(at.Add(24*time.Hour)))
	assert.True(t, strings.HasPrefix(all.URL, "https://objects.test/exports/"))

	var snapshot exportSnapshot
	require.NoError(t, shared.Unmarshal(objects.body, &snapshot))
	assert.Len(t, snapshot.Users, 2)

	one, err := svc.Export(context.Background(), dto.ExportRequest{UserID: seeded.user.ID})
	require.NoError(t, err)
	assert.Equal(t, "exports/users/"+seeded.user.ID+"/20240501T093000Z.json", one.ObjectName)
	assert.Equal(t, 1, one.Users)
}

func TestExportUploadFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	objects := &fakeObjects{enabled: true, uploadErr: errors.New("bucket gone")}
	svc := NewExportService(NewAdminService(env.storage), objects)

	_, err := svc.Export(context.Background(), dto.ExportRequest{})
	requireAppError(t, err, http.StatusBadGateway)
}
