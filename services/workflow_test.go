package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
)

const testSessionID = "reflection_session:1:abc"

func seedReflection(t *testing.T, env *testEnv, items ...model.ReflectionItem) {
	t.Helper()
	_, err := env.storage.Steps().SaveReflection(context.Background(), &model.ReflectionStepData{
		SessionID:         testSessionID,
		ReflectionItems:   items,
		SelectedHintTags:  []string{"deadline"},
		AllGeneratedHints: []string{"deadline", "noise"},
	})
	require.NoError(t, err)
}

func storedItem(t *testing.T, env *testEnv, id string) model.ReflectionItem {
	t.Helper()
	data, err := env.storage.Steps().GetReflection(context.Background(), testSessionID)
	require.NoError(t, err)
	_, item := data.Item(id)
	require.NotNil(t, item)
	return *item
}

func TestCompleteReflectionFallsBackWhenModelFails(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(at)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "I missed the deadline again"})

	resp, err := svc.CompleteReflection(context.Background(), dto.CompleteReflectionRequest{
		SessionID:    testSessionID,
		ReflectionID: "r1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Persisted)

	item := resp.ReflectionItem
	assert.Equal(t, model.InspectionComplete, item.InspectionStep)
	require.NotNil(t, item.EmotionCheckResult)
	assert.False(t, item.EmotionCheckResult.HasEmotion)
	assert.Equal(t, emotionFallbackSuggestion, item.EmotionCheckResult.Suggestion)
	assert.Equal(t, summaryFallback, item.EmotionCheckResult.SituationSummary)
	require.NotNil(t, item.BlameCheckResult)
	assert.NotNil(t, item.BlameCheckResult.EnvironmentalFactors)
	assert.Empty(t, item.BlameCheckResult.EnvironmentalFactors)
	require.NotNil(t, item.CompletedAt)
	assert.True(t, item.CompletedAt.Equal(at))

	stored := storedItem(t, env, "r1")
	assert.Equal(t, model.InspectionComplete, stored.InspectionStep)
	assert.True(t, stored.IsCompleted())
}

func TestCompleteReflectionRunsBothChecks(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		emotionSystemPrompt: `{"hasEmotion": true}`,
		summarySystemPrompt: `{"summary": "마감 지연"}`,
		blameSystemPrompt:   "```json\n{\"hasBlamePattern\": true, \"warning\": \"너무 자책하지 마세요\", \"environmentalFactors\": [\"업무량\"]}\n```",
	})
	svc := NewWorkflowService(env.storage, env.ai)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "속상했어요. 또 마감을 놓쳤어요"})

	resp, err := svc.CompleteReflection(context.Background(), dto.CompleteReflectionRequest{
		SessionID:    testSessionID,
		ReflectionID: "r1",
	})
	require.NoError(t, err)

	item := resp.ReflectionItem
	assert.True(t, item.EmotionCheckResult.HasEmotion)
	assert.Equal(t, "마감 지연", item.EmotionCheckResult.SituationSummary)
	assert.True(t, item.BlameCheckResult.HasBlamePattern)
	assert.Equal(t, []string{"업무량"}, item.BlameCheckResult.EnvironmentalFactors)
	assert.Equal(t, 1, env.llm.callsFor(emotionSystemPrompt))
	assert.Equal(t, 1, env.llm.callsFor(blameSystemPrompt))
	assert.Equal(t, 1, env.llm.callsFor(summarySystemPrompt))
}

func TestCompleteReflectionRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "   "})

	_, err := svc.CompleteReflection(context.Background(), dto.CompleteReflectionRequest{
		SessionID:    testSessionID,
		ReflectionID: "r1",
	})
	requireAppError(t, err, http.StatusBadRequest)
	assert.Empty(t, env.llm.calls)
}

func TestCompleteReflectionUnknownItem(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "text"})

	_, err := svc.CompleteReflection(context.Background(), dto.CompleteReflectionRequest{
		SessionID:    testSessionID,
		ReflectionID: "missing",
	})
	requireAppError(t, err, http.StatusNotFound)

	_, err = svc.CompleteReflection(context.Background(), dto.CompleteReflectionRequest{
		SessionID:    "reflection_session:9:zzz",
		ReflectionID: "r1",
	})
	requireAppError(t, err, http.StatusNotFound)
}

func TestCompleteReflectionReportsUnpersistedWrite(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "I froze in the meeting"})
	env.store.failWrites.Store(true)

	resp, err := svc.CompleteReflection(context.Background(), dto.CompleteReflectionRequest{
		SessionID:    testSessionID,
		ReflectionID: "r1",
	})
	require.NoError(t, err)
	assert.False(t, resp.Persisted)
	assert.Equal(t, model.InspectionComplete, resp.ReflectionItem.InspectionStep)
	assert.NotNil(t, resp.ReflectionItem.EmotionCheckResult)
	assert.NotNil(t, resp.ReflectionItem.BlameCheckResult)

	env.store.failWrites.Store(false)
	stored := storedItem(t, env, "r1")
	assert.Equal(t, model.InspectionUnstarted, stored.InspectionStep)
}

func TestRegenerateFactorsOnlyTouchesBlameResult(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		blameSystemPrompt: `{"hasBlamePattern": true, "warning": "w", "environmentalFactors": ["noise", "workload"]}`,
	})
	svc := NewWorkflowService(env.storage, env.ai)

	emotion := model.EmotionCheckResult{HasEmotion: true, SituationSummary: "meeting"}
	seedReflection(t, env,
		model.ReflectionItem{
			ID:                 "r1",
			Content:            "I always ruin meetings",
			SelectedHints:      []string{"deadline"},
			SelectedFactors:    []string{"old factor"},
			EmotionCheckResult: &emotion,
			InspectionStep:     model.InspectionOneCheck,
		},
		model.ReflectionItem{ID: "r2", Content: "other", SelectedHints: []string{"noise"}},
	)

	resp, err := svc.RegenerateFactors(context.Background(), dto.RegenerateFactorsRequest{
		SessionID:    testSessionID,
		ReflectionID: "r1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Persisted)

	r1 := storedItem(t, env, "r1")
	assert.Equal(t, []string{"deadline"}, r1.SelectedHints)
	assert.Equal(t, []string{"old factor"}, r1.SelectedFactors)
	require.NotNil(t, r1.EmotionCheckResult)
	assert.Equal(t, "meeting", r1.EmotionCheckResult.SituationSummary)
	require.NotNil(t, r1.BlameCheckResult)
	assert.Equal(t, []string{"noise", "workload"}, r1.BlameCheckResult.EnvironmentalFactors)
	assert.Equal(t, model.InspectionBoth, r1.InspectionStep)

	r2 := storedItem(t, env, "r2")
	assert.Equal(t, []string{"noise"}, r2.SelectedHints)
	assert.Nil(t, r2.BlameCheckResult)
	assert.Equal(t, 0, env.llm.callsFor(emotionSystemPrompt))
}

func TestRegenerateFactorsKeepsCompletedStep(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "text", InspectionStep: model.InspectionComplete})

	resp, err := svc.RegenerateFactors(context.Background(), dto.RegenerateFactorsRequest{
		SessionID:    testSessionID,
		ReflectionID: "r1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.InspectionComplete, resp.ReflectionItem.InspectionStep)
}

func TestCheckEmotionRecordsResultOnItem(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		emotionSystemPrompt: `{"hasEmotion": true,}`,
		summarySystemPrompt: `{"summary": "late for work"}`,
	})
	svc := NewWorkflowService(env.storage, env.ai)

	seedReflection(t, env, model.ReflectionItem{ID: "r1", Content: "I felt ashamed"})

	result := svc.CheckEmotion(context.Background(), dto.CheckRequest{
		ReflectionContent: "I felt ashamed",
		SessionID:         testSessionID,
		ReflectionID:      "r1",
	})
	assert.True(t, result.HasEmotion)
	assert.Equal(t, "late for work", result.SituationSummary)

	stored := storedItem(t, env, "r1")
	require.NotNil(t, stored.EmotionCheckResult)
	assert.True(t, stored.EmotionCheckResult.HasEmotion)
	assert.Equal(t, model.InspectionOneCheck, stored.InspectionStep)

	blame := svc.CheckBlame(context.Background(), dto.CheckRequest{
		ReflectionContent: "I felt ashamed",
		SessionID:         testSessionID,
		ReflectionID:      "r1",
	})
	assert.NotNil(t, blame.EnvironmentalFactors)
	assert.Equal(t, model.InspectionBoth, storedItem(t, env, "r1").InspectionStep)
}

func TestCheckWithoutIdsDoesNotWrite(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)

	result := svc.CheckBlame(context.Background(), dto.CheckRequest{ReflectionContent: "text"})
	assert.False(t, result.HasBlamePattern)
	assert.Empty(t, env.mr.Keys())
}

func TestSaveReflectionBumpsVersionAndKeepsHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)
	ctx := context.Background()

	req := dto.SaveReflectionRequest{
		SessionID:         testSessionID,
		ReflectionItems:   []model.ReflectionItem{{ID: "r1", Content: "a"}},
		SelectedHintTags:  []string{},
		AllGeneratedHints: []string{},
	}
	first, err := svc.SaveReflection(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	completion, err := svc.SaveCompletion(ctx, dto.SaveCompletionRequest{SessionID: testSessionID, ReflectionID: "r1"})
	require.NoError(t, err)
	assert.NotEmpty(t, completion.HistoryID)

	second, err := svc.SaveReflection(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	data, err := svc.GetReflection(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{completion.HistoryID}, data.HistoryIDs)
}

func TestCleanSessionUpsertsByLetter(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)
	ctx := context.Background()

	letter, err := env.storage.Letters().CreateLetter(ctx, &model.Letter{
		UserID:     "user:1:abc",
		SessionIDs: env.storage.Letters().NewStageSessionIDs(),
	})
	require.NoError(t, err)

	req := dto.SaveCleanSessionRequest{
		LetterID: letter.ID,
		HighlightedItems: []dto.HighlightInput{
			{ID: "h1", Color: "yellow", Text: "legacy field", ProblemReason: "noise"},
		},
	}
	first, err := svc.SaveUnderstanding(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "user:1:abc", first.UserID)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "legacy field", first.Items[0].HighlightedText)
	assert.NotNil(t, first.Items[0].CompletedAt)

	second, err := svc.SaveUnderstanding(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	byLetter, err := svc.GetUnderstandingByLetter(ctx, letter.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, byLetter.ID)

	updated, err := env.storage.Letters().GetLetter(ctx, letter.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.SessionIDs.Understanding)
}

func TestCleanSessionRequiresLetter(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)

	_, err := svc.SaveStrengthFinding(context.Background(), dto.SaveCleanSessionRequest{LetterID: "letter:1:nope"})
	requireAppError(t, err, http.StatusNotFound)
}

func TestGetResponseLetterNeedsAnId(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewWorkflowService(env.storage, env.ai)
	ctx := context.Background()

	_, err := svc.GetResponseLetter(ctx, "", "")
	requireAppError(t, err, http.StatusBadRequest)

	require.NoError(t, svc.SaveResponseLetter(ctx, dto.SaveResponseLetterRequest{
		SessionID:         testSessionID,
		LetterID:          "letter:1:abc",
		FinalEditedLetter: "dear friend",
	}))

	byLetter, err := svc.GetResponseLetter(ctx, "letter:1:abc", "")
	require.NoError(t, err)
	assert.Equal(t, "dear friend", byLetter.FinalEditedLetter)

	bySession, err := svc.GetResponseLetter(ctx, "", testSessionID)
	require.NoError(t, err)
	assert.Equal(t, "dear friend", bySession.FinalEditedLetter)
}

func TestGenerateReflectionHintsStoresPerSession(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		hintsSystemPrompt: `1. "마감 압박" 2. "소음"`,
	})
	svc := NewWorkflowService(env.storage, env.ai)
	ctx := context.Background()

	resp := svc.GenerateReflectionHints(ctx, dto.ReflectionHintsRequest{
		CharacterName:   "푸딩이",
		HighlightedData: []dto.HighlightedData{{Text: "deadline"}},
		SessionID:       testSessionID,
	})
	assert.Equal(t, []string{"마감 압박", "소음"}, resp.Hints)

	var stored model.ReflectionHints
	require.NoError(t, env.storage.Steps().GetStep(ctx, repositories.StepReflectionHints, testSessionID, &stored))
	assert.Equal(t, resp.Hints, stored.Hints)
}
