package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/model"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestBase(t *testing.T) (BaseRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &testClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	return NewBaseRepository(NewRedisStore(client)).WithClock(clock.Now), mr
}

func TestRedisStoreGetMissingKey(t *testing.T) {
	base, _ := newTestBase(t)

	value, err := base.Store().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestRedisStoreKeysScansPattern(t *testing.T) {
	base, mr := newTestBase(t)
	ctx := context.Background()

	for _, k := range []string{"writing_step:1", "writing_step:2", "letter:1"} {
		require.NoError(t, mr.Set(k, "{}"))
	}

	keys, err := base.Store().Keys(ctx, "writing_step:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"writing_step:1", "writing_step:2"}, keys)
}

func TestDecodeAcceptsBothRepresentations(t *testing.T) {
	var plain, wrapped model.QuestionAnswers

	require.NoError(t, Decode(`{"id":"answers:1:a","answers":["x"]}`, &plain))
	require.NoError(t, Decode(`"{\"id\":\"answers:1:a\",\"answers\":[\"x\"]}"`, &wrapped))

	assert.Equal(t, plain, wrapped)
	assert.Equal(t, []string{"x"}, wrapped.Answers)

	assert.Error(t, Decode(`{"id":`, &plain))
}

func TestGetReadsDoubleEncodedDocument(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewAnswersRepository(base)

	require.NoError(t, mr.Set("answers:1:abc", `"{\"id\":\"answers:1:abc\",\"userId\":\"user:1:u\",\"answers\":[\"a\",\"b\"]}"`))

	doc, err := repo.GetAnswers(context.Background(), "answers:1:abc")
	require.NoError(t, err)
	assert.Equal(t, "user:1:u", doc.UserID)
	assert.Equal(t, []string{"a", "b"}, doc.Answers)
}

func TestMalformedDocumentIsNotNotFound(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewAnswersRepository(base)

	require.NoError(t, mr.Set("answers:1:bad", `{"id":`))

	_, err := repo.GetAnswers(context.Background(), "answers:1:bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCreateUserEnforcesUniqueNickname(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewUserRepository(base)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, &model.User{Nickname: "alice", Password: "hash"})
	require.NoError(t, err)
	assert.Regexp(t, `^user:\d+:[0-9a-f]{9}$`, alice.ID)

	_, err = repo.CreateUser(ctx, &model.User{Nickname: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrNicknameTaken)

	pointer, err := mr.Get(NicknameKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, pointer)

	found, err := repo.GetUserByNickname(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAnswersRoundTripAndUpdate(t *testing.T) {
	base, _ := newTestBase(t)
	repo := NewAnswersRepository(base)
	ctx := context.Background()

	created, err := repo.CreateAnswers(ctx, "user:1:u", []string{"intro", "strength text", "context", "challenge"})
	require.NoError(t, err)

	got, err := repo.GetAnswers(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "user:1:u", got.UserID)
	assert.Equal(t, []string{"intro", "strength text", "context", "challenge"}, got.Answers)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	updated, err := repo.UpdateAnswers(ctx, created.ID, []string{"new intro"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, []string{"new intro"}, updated.Answers)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
}

func TestUpdateMissingDocumentWritesNothing(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewAnswersRepository(base)
	ctx := context.Background()

	_, err := repo.CreateAnswers(ctx, "user:1:u", []string{"a"})
	require.NoError(t, err)
	before := mr.Keys()

	_, err = repo.UpdateAnswers(ctx, "answers:0:missing", []string{"b"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, mr.Keys())
}

func TestUpdateNullDocumentIsNotFound(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewSessionRepository(base)

	require.NoError(t, mr.Set("session:1:null", "null"))

	_, err := repo.UpdateSession(context.Background(), "session:1:null", map[string]interface{}{"currentStep": 2})
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := mr.Get("session:1:null")
	require.NoError(t, err)
	assert.Equal(t, "null", raw)
}

func TestUpdateSessionMergesFields(t *testing.T) {
	base, _ := newTestBase(t)
	repo := NewSessionRepository(base)
	ctx := context.Background()

	created, err := repo.CreateSession(ctx, &model.LetterSession{
		UserID: "user:1:u",
		HighlightedItems: []model.HighlightedItem{
			{ID: "h1", Text: "마감을 자꾸 놓쳐요", Color: "yellow", ParagraphIndex: 1},
		},
		CurrentStep: 1,
	})
	require.NoError(t, err)

	updated, err := repo.UpdateSession(ctx, created.ID, map[string]interface{}{"currentStep": 3})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentStep)
	require.Len(t, updated.HighlightedItems, 1)
	assert.Equal(t, "h1", updated.HighlightedItems[0].ID)
	assert.Equal(t, "마감을 자꾸 놓쳐요", updated.HighlightedItems[0].Text)
}

func TestListSessionsNewestFirstAndSkipsDangling(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewSessionRepository(base)
	ctx := context.Background()

	first, err := repo.CreateSession(ctx, &model.LetterSession{UserID: "user:1:u"})
	require.NoError(t, err)
	second, err := repo.CreateSession(ctx, &model.LetterSession{UserID: "user:1:u"})
	require.NoError(t, err)

	_, err = repo.UpdateSession(ctx, first.ID, map[string]interface{}{"currentStep": 2})
	require.NoError(t, err)

	_, err = mr.Lpush(UserSessionsKey("user:1:u"), "session:0:gone")
	require.NoError(t, err)

	sessions, err := repo.ListSessions(ctx, "user:1:u")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}

func TestDeleteSessionRemovesIndexEntry(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewSessionRepository(base)
	steps := NewStepRepository(base)
	ctx := context.Background()

	keep, err := repo.CreateSession(ctx, &model.LetterSession{UserID: "user:1:u"})
	require.NoError(t, err)
	drop, err := repo.CreateSession(ctx, &model.LetterSession{UserID: "user:1:u"})
	require.NoError(t, err)
	require.NoError(t, steps.SaveStep(ctx, StepInspection, &model.InspectionData{
		StepSnapshot: model.StepSnapshot{SessionID: drop.ID},
	}))

	_, err = repo.DeleteSession(ctx, drop.ID)
	require.NoError(t, err)

	assert.False(t, mr.Exists(drop.ID))
	assert.False(t, mr.Exists(StepKey(StepInspection, drop.ID)))

	ids, err := mr.List(UserSessionsKey("user:1:u"))
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, ids)

	sessions, err := repo.ListSessions(ctx, "user:1:u")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, keep.ID, sessions[0].ID)

	_, err = repo.DeleteSession(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanSessionUpsertKeepsOneSessionPerLetter(t *testing.T) {
	base, mr := newTestBase(t)
	repo := NewCleanSessionRepository(base)
	ctx := context.Background()

	first, err := repo.SaveUnderstanding(ctx, &model.UnderstandingSession{
		CleanSessionHeader: model.CleanSessionHeader{LetterID: "letter:1:l", UserID: "user:1:u"},
		Items:              []model.UnderstandingItem{{ID: "i1", HighlightedText: "a"}},
	})
	require.NoError(t, err)

	second, err := repo.SaveUnderstanding(ctx, &model.UnderstandingSession{
		CleanSessionHeader: model.CleanSessionHeader{LetterID: "letter:1:l"},
		Items:              []model.UnderstandingItem{{ID: "i1", HighlightedText: "a", ProblemReason: "b"}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "user:1:u", second.UserID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	byLetter, err := repo.GetUnderstandingByLetter(ctx, "letter:1:l")
	require.NoError(t, err)
	assert.Equal(t, "b", byLetter.Items[0].ProblemReason)

	keys, err := base.Store().Keys(ctx, PrefixUnderstanding+":*")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	assert.True(t, mr.Exists(UnderstandingByLetterKey("letter:1:l")))
}

func TestReflectionSnapshotVersioningAndItemUpdate(t *testing.T) {
	base, _ := newTestBase(t)
	repo := NewStepRepository(base)
	ctx := context.Background()

	saved, err := repo.SaveReflection(ctx, &model.ReflectionStepData{
		SessionID: "reflection_session:1:s",
		ReflectionItems: []model.ReflectionItem{
			{ID: "r1", Content: "집중이 어려워요", SelectedHints: []string{"업무 효율성 문제"}},
			{ID: "r2", Content: "동료에게 미안해요"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	history, err := repo.AddCompletion(ctx, "reflection_session:1:s", "r1", "completed")
	require.NoError(t, err)

	again, err := repo.SaveReflection(ctx, &model.ReflectionStepData{
		SessionID:       "reflection_session:1:s",
		ReflectionItems: saved.ReflectionItems,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)
	assert.Equal(t, []string{history.ID}, again.HistoryIDs)

	item, err := repo.UpdateReflectionItem(ctx, "reflection_session:1:s", "r2", func(item *model.ReflectionItem) {
		item.BlameCheckResult = &model.BlameCheckResult{HasBlamePattern: true}
		item.RecordCheck()
	})
	require.NoError(t, err)
	assert.Equal(t, model.InspectionOneCheck, item.InspectionStep)

	stored, err := repo.GetReflection(ctx, "reflection_session:1:s")
	require.NoError(t, err)
	_, r1 := stored.Item("r1")
	require.NotNil(t, r1)
	assert.Equal(t, []string{"업무 효율성 문제"}, r1.SelectedHints)
	_, r2 := stored.Item("r2")
	require.NotNil(t, r2)
	assert.True(t, r2.BlameCheckResult.HasBlamePattern)

	_, err = repo.UpdateReflectionItem(ctx, "reflection_session:1:s", "missing", func(*model.ReflectionItem) {})
	assert.ErrorIs(t, err, ErrReflectionItemNotFound)

	completions, err := repo.ListCompletions(ctx, "reflection_session:1:s")
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, "r1", completions[0].ReflectionID)
}

func TestResponseLetterLookupByLetter(t *testing.T) {
	base, _ := newTestBase(t)
	repo := NewStepRepository(base)
	ctx := context.Background()

	require.NoError(t, repo.SaveResponseLetter(ctx, &model.ResponseLetterData{
		StepSnapshot:      model.StepSnapshot{SessionID: "solution_session:1:s"},
		LetterID:          "letter:1:l",
		FinalEditedLetter: "고마워요",
		CharacterName:     "푸딩이",
	}))

	doc, err := repo.GetResponseLetterByLetter(ctx, "letter:1:l")
	require.NoError(t, err)
	assert.Equal(t, "고마워요", doc.FinalEditedLetter)
	assert.Equal(t, "solution_session:1:s", doc.SessionID)
}
