package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
)

func TestUpdateProfileMergesSuppliedFields(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewUserService(env.storage)
	ctx := context.Background()

	user, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: "mina", Password: "hash", Introduction: "hello"})
	require.NoError(t, err)

	challenge := &model.ChallengeProfile{Context: "work", Challenge: "deadlines"}
	updated, err := svc.UpdateUserProfile(ctx, user.ID, dto.UpdateProfileRequest{ChallengeProfile: challenge})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Introduction)
	assert.Equal(t, challenge, updated.ChallengeProfile)
	assert.Empty(t, updated.Password)

	stored, err := env.storage.Users().GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.Password)

	_, err = svc.UpdateUserProfile(ctx, "user:1:missing", dto.UpdateProfileRequest{ChallengeProfile: challenge})
	requireAppError(t, err, http.StatusNotFound)
}

func TestSaveAnswersCreatesThenUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewUserService(env.storage)
	ctx := context.Background()

	_, err := svc.SaveAnswers(ctx, dto.SaveAnswersRequest{UserID: "user:1:missing", Answers: []string{"a"}})
	requireAppError(t, err, http.StatusNotFound)

	user, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: "mina"})
	require.NoError(t, err)

	created, err := svc.SaveAnswers(ctx, dto.SaveAnswersRequest{UserID: user.ID, Answers: []string{"a", "b"}})
	require.NoError(t, err)

	updated, err := svc.SaveAnswers(ctx, dto.SaveAnswersRequest{UserID: user.ID, AnswersID: created.ID, Answers: []string{"c"}})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	list, err := svc.ListAnswers(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Answer(0))
}

func TestSaveUpdatesCheckOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewUserService(env.storage)
	ctx := context.Background()

	owner, err := env.storage.Users().CreateUser(ctx, &model.User{Nickname: "mina"})
	require.NoError(t, err)
	answers, err := svc.SaveAnswers(ctx, dto.SaveAnswersRequest{UserID: owner.ID, Answers: []string{"a"}})
	require.NoError(t, err)
	session, err := svc.SaveSession(ctx, dto.SaveSessionRequest{UserID: owner.ID})
	require.NoError(t, err)

	_, err = svc.SaveAnswers(ctx, dto.SaveAnswersRequest{UserID: "user:2:other", AnswersID: answers.ID, Answers: []string{"b"}})
	requireAppError(t, err, http.StatusForbidden)

	step := 3
	_, err = svc.SaveSession(ctx, dto.SaveSessionRequest{UserID: "user:2:other", SessionID: session.ID, CurrentStep: &step})
	requireAppError(t, err, http.StatusForbidden)

	_, err = svc.SaveSession(ctx, dto.SaveSessionRequest{UserID: owner.ID, SessionID: "session:1:missing", CurrentStep: &step})
	requireAppError(t, err, http.StatusNotFound)

	storedAnswers, err := svc.GetAnswers(ctx, answers.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", storedAnswers.Answer(0))
	storedSession, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedSession.CurrentStep)

	updated, err := svc.SaveSession(ctx, dto.SaveSessionRequest{UserID: owner.ID, SessionID: session.ID, CurrentStep: &step})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentStep)
}

func TestDeleteSessionChecksOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewUserService(env.storage)
	ctx := context.Background()

	session, err := svc.SaveSession(ctx, dto.SaveSessionRequest{UserID: "user:1:owner"})
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentStep)
	require.NoError(t, env.storage.Steps().SaveStep(ctx, repositories.StepLetterContent, &model.LetterContentData{
		StepSnapshot:  model.StepSnapshot{SessionID: session.ID},
		LetterContent: "draft",
	}))

	_, err = svc.DeleteSession(ctx, session.ID, "user:2:other")
	requireAppError(t, err, http.StatusForbidden)

	report, err := svc.DeleteSession(ctx, session.ID, "user:1:owner")
	require.NoError(t, err)
	assert.Contains(t, report.DeletedKeys, repositories.StepKey(repositories.StepLetterContent, session.ID))

	_, err = svc.GetSession(ctx, session.ID)
	requireAppError(t, err, http.StatusNotFound)

	sessions, err := svc.ListSessions(ctx, "user:1:owner")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
