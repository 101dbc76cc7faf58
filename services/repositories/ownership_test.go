package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/model"
)

func TestCascadeDeleteUserRemovesEverythingOwned(t *testing.T) {
	base, mr := newTestBase(t)
	ctx := context.Background()

	users := NewUserRepository(base)
	answers := NewAnswersRepository(base)
	sessions := NewSessionRepository(base)
	letters := NewLetterRepository(base)
	clean := NewCleanSessionRepository(base)
	steps := NewStepRepository(base)

	bob, err := users.CreateUser(ctx, &model.User{Nickname: "bob", Password: "1"})
	require.NoError(t, err)
	bobAnswers, err := answers.CreateAnswers(ctx, bob.ID, []string{"bob"})
	require.NoError(t, err)
	bobKeys := mr.Keys()

	alice, err := users.CreateUser(ctx, &model.User{Nickname: "alice", Password: "123"})
	require.NoError(t, err)
	qa, err := answers.CreateAnswers(ctx, alice.ID, []string{"intro", "strength"})
	require.NoError(t, err)

	session, err := sessions.CreateSession(ctx, &model.LetterSession{UserID: alice.ID, QuestionAnswersID: qa.ID})
	require.NoError(t, err)
	require.NoError(t, steps.SaveStep(ctx, StepMagicMix, &model.MagicMixData{
		StepSnapshot: model.StepSnapshot{SessionID: session.ID},
	}))

	letter, err := letters.CreateLetter(ctx, &model.Letter{
		UserID:            alice.ID,
		QuestionAnswersID: qa.ID,
		CharacterName:     "푸딩이",
		SessionIDs:        letters.NewStageSessionIDs(),
	})
	require.NoError(t, err)
	_, err = letters.CreateStrengthAnalysis(ctx, &model.StrengthAnalysisLog{UserID: alice.ID, QuestionAnswersID: qa.ID})
	require.NoError(t, err)

	us, err := clean.SaveUnderstanding(ctx, &model.UnderstandingSession{
		CleanSessionHeader: model.CleanSessionHeader{LetterID: letter.ID, UserID: alice.ID},
	})
	require.NoError(t, err)
	require.NoError(t, letters.SetStageSession(ctx, letter.ID, StageUnderstanding, us.ID))
	_, err = clean.SaveStrengthFinding(ctx, &model.StrengthFindingSession{
		CleanSessionHeader: model.CleanSessionHeader{LetterID: letter.ID, UserID: alice.ID},
	})
	require.NoError(t, err)

	_, err = steps.SaveReflection(ctx, &model.ReflectionStepData{
		SessionID:       letter.SessionIDs.Reflection,
		ReflectionItems: []model.ReflectionItem{{ID: "r1", Content: "c"}},
	})
	require.NoError(t, err)
	_, err = steps.AddCompletion(ctx, letter.SessionIDs.Reflection, "r1", "completed")
	require.NoError(t, err)
	require.NoError(t, steps.SaveResponseLetter(ctx, &model.ResponseLetterData{
		StepSnapshot: model.StepSnapshot{SessionID: letter.SessionIDs.Solution},
		LetterID:     letter.ID,
	}))

	report, err := base.graph.CascadeDelete(ctx, base.Store(), NodeUser, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entities[NodeLetter])
	assert.Equal(t, 1, report.Entities[NodeUnderstanding])
	assert.Equal(t, 1, report.Entities[NodeCompletion])

	assert.ElementsMatch(t, bobKeys, mr.Keys())

	ids, err := mr.List(AllUsersKey)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, ids)

	kept, err := answers.GetAnswers(ctx, bobAnswers.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, kept.UserID)
}

func TestCascadeDeleteLeavesReassignedNickname(t *testing.T) {
	base, mr := newTestBase(t)
	ctx := context.Background()
	users := NewUserRepository(base)

	alice, err := users.CreateUser(ctx, &model.User{Nickname: "alice", Password: "1"})
	require.NoError(t, err)
	require.NoError(t, mr.Set(NicknameKey("alice"), "user:9:someoneelse"))

	_, err = base.graph.CascadeDelete(ctx, base.Store(), NodeUser, alice.ID)
	require.NoError(t, err)

	pointer, err := mr.Get(NicknameKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, "user:9:someoneelse", pointer)
}

func TestCascadeDeleteMissingRoot(t *testing.T) {
	base, _ := newTestBase(t)

	_, err := base.graph.CascadeDelete(context.Background(), base.Store(), NodeUser, "user:0:none")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = base.graph.CascadeDelete(context.Background(), base.Store(), Node("unknown"), "x")
	assert.Error(t, err)
}
