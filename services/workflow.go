package services

import (
	"context"
	"errors"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

// WorkflowService drives the four letter stages: clean sessions, the
// session-keyed writing steps, and the reflection inspection state machine.
type WorkflowService struct {
	appContext.DefaultService

	storage *StorageService
	ai      *AIService
	now     func() time.Time
}

const WORKFLOW_SVC = "workflow_svc"

func (svc WorkflowService) Id() string {
	return WORKFLOW_SVC
}

func (svc *WorkflowService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *WorkflowService) Start() error {
	svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	svc.ai = svc.Service(AI_SVC).(*AIService)
	return nil
}

func NewWorkflowService(storage *StorageService, ai *AIService) *WorkflowService {
	return &WorkflowService{storage: storage, ai: ai, now: time.Now}
}

// ==================== CLEAN SESSIONS ====================

func (svc *WorkflowService) completedAt(at *time.Time) *time.Time {
	if at != nil {
		return at
	}
	now := svc.now()
	return &now
}

func (svc *WorkflowService) SaveUnderstanding(ctx context.Context, req dto.SaveCleanSessionRequest) (*model.UnderstandingSession, error) {
	letter, err := svc.storage.Letters().GetLetter(ctx, req.LetterID)
	if err != nil {
		return nil, lookupError(err, "Letter")
	}

	items := make([]model.UnderstandingItem, 0, len(req.HighlightedItems))
	for _, h := range req.HighlightedItems {
		items = append(items, model.UnderstandingItem{
			ID:               h.ID,
			Color:            h.Color,
			HighlightedText:  h.Highlighted(),
			ProblemReason:    h.ProblemReason,
			UserExplanation:  h.UserExplanation,
			EmotionInference: h.EmotionInference,
			CompletedAt:      svc.completedAt(h.CompletedAt),
		})
	}

	session, err := svc.storage.CleanSessions().SaveUnderstanding(ctx, &model.UnderstandingSession{
		CleanSessionHeader: model.CleanSessionHeader{LetterID: letter.ID, UserID: orDefault(req.UserID, letter.UserID)},
		Items:              items,
	})
	if err != nil {
		return nil, writeError(err, "Understanding session")
	}

	if letter.SessionIDs.Understanding != session.ID {
		if err := svc.storage.Letters().SetStageSession(ctx, letter.ID, repositories.StageUnderstanding, session.ID); err != nil {
			return nil, writeError(err, "Letter")
		}
	}
	return session, nil
}

func (svc *WorkflowService) GetUnderstanding(ctx context.Context, sessionID string) (*model.UnderstandingSession, error) {
	session, err := svc.storage.CleanSessions().GetUnderstanding(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, "Understanding session")
	}
	return session, nil
}

func (svc *WorkflowService) GetUnderstandingByLetter(ctx context.Context, letterID string) (*model.UnderstandingSession, error) {
	session, err := svc.storage.CleanSessions().GetUnderstandingByLetter(ctx, letterID)
	if err != nil {
		return nil, lookupError(err, "Understanding session")
	}
	return session, nil
}

func (svc *WorkflowService) SaveStrengthFinding(ctx context.Context, req dto.SaveCleanSessionRequest) (*model.StrengthFindingSession, error) {
	letter, err := svc.storage.Letters().GetLetter(ctx, req.LetterID)
	if err != nil {
		return nil, lookupError(err, "Letter")
	}

	items := make([]model.StrengthFindingItem, 0, len(req.HighlightedItems))
	for _, h := range req.HighlightedItems {
		items = append(items, model.StrengthFindingItem{
			ID:                  h.ID,
			Color:               h.Color,
			HighlightedText:     h.Highlighted(),
			StrengthDescription: h.StrengthDescription,
			StrengthApplication: h.StrengthApplication,
			CompletedAt:         svc.completedAt(h.CompletedAt),
		})
	}

	session, err := svc.storage.CleanSessions().SaveStrengthFinding(ctx, &model.StrengthFindingSession{
		CleanSessionHeader: model.CleanSessionHeader{LetterID: letter.ID, UserID: orDefault(req.UserID, letter.UserID)},
		Items:              items,
	})
	if err != nil {
		return nil, writeError(err, "Strength finding session")
	}

	if letter.SessionIDs.StrengthFinding != session.ID {
		if err := svc.storage.Letters().SetStageSession(ctx, letter.ID, repositories.StageStrengthFinding, session.ID); err != nil {
			return nil, writeError(err, "Letter")
		}
	}
	return session, nil
}

func (svc *WorkflowService) GetStrengthFinding(ctx context.Context, sessionID string) (*model.StrengthFindingSession, error) {
	session, err := svc.storage.CleanSessions().GetStrengthFinding(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, "Strength finding session")
	}
	return session, nil
}

func (svc *WorkflowService) GetStrengthFindingByLetter(ctx context.Context, letterID string) (*model.StrengthFindingSession, error) {
	session, err := svc.storage.CleanSessions().GetStrengthFindingByLetter(ctx, letterID)
	if err != nil {
		return nil, lookupError(err, "Strength finding session")
	}
	return session, nil
}

// ==================== WRITING STEPS ====================

func (svc *WorkflowService) SaveReflection(ctx context.Context, req dto.SaveReflectionRequest) (*dto.SaveReflectionResponse, error) {
	data, err := svc.storage.Steps().SaveReflection(ctx, &model.ReflectionStepData{
		SessionID:         req.SessionID,
		ReflectionItems:   req.ReflectionItems,
		SelectedHintTags:  req.SelectedHintTags,
		AllGeneratedHints: req.AllGeneratedHints,
	})
	if err != nil {
		return nil, writeError(err, "Reflection")
	}
	return &dto.SaveReflectionResponse{SessionID: data.SessionID, Version: data.Version}, nil
}

func (svc *WorkflowService) GetReflection(ctx context.Context, sessionID string) (*model.ReflectionStepData, error) {
	data, err := svc.storage.Steps().GetReflection(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, "Reflection")
	}
	return data, nil
}

func (svc *WorkflowService) saveStep(ctx context.Context, kind repositories.StepKind, doc interface {
	Snapshot() *model.StepSnapshot
}) error {
	if err := svc.storage.Steps().SaveStep(ctx, kind, doc); err != nil {
		return writeError(err, "Writing step")
	}
	log.Debug().Str("step", string(kind)).Str("sessionId", doc.Snapshot().SessionID).Msg("Writing step saved")
	return nil
}

func (svc *WorkflowService) SaveInspection(ctx context.Context, req dto.SaveInspectionRequest) error {
	return svc.saveStep(ctx, repositories.StepInspection, &model.InspectionData{
		StepSnapshot:    model.StepSnapshot{SessionID: req.SessionID},
		ReflectionItems: req.InspectionResults,
	})
}

func (svc *WorkflowService) SaveSuggestion(ctx context.Context, req dto.SaveSuggestionRequest) error {
	factors := req.AllGeneratedFactors
	if factors == nil {
		factors = []string{}
	}
	return svc.saveStep(ctx, repositories.StepSuggestion, &model.SuggestionData{
		StepSnapshot:        model.StepSnapshot{SessionID: req.SessionID},
		SuggestionResults:   req.SuggestionResults,
		AllGeneratedFactors: factors,
	})
}

func (svc *WorkflowService) SaveSolutionExploration(ctx context.Context, req dto.SaveSolutionExplorationRequest) error {
	return svc.saveStep(ctx, repositories.StepSolutionExploration, &model.SolutionExplorationData{
		StepSnapshot:          model.StepSnapshot{SessionID: req.SessionID},
		SolutionsByReflection: req.SolutionsByReflection,
	})
}

func (svc *WorkflowService) SaveAIStrengthTags(ctx context.Context, req dto.SaveAIStrengthTagsRequest) error {
	return svc.saveStep(ctx, repositories.StepAIStrengthTags, &model.AIStrengthTagsData{
		StepSnapshot:             model.StepSnapshot{SessionID: req.SessionID},
		StrengthTagsByReflection: req.StrengthTagsByReflection,
	})
}

func (svc *WorkflowService) SaveMagicMix(ctx context.Context, req dto.SaveMagicMixRequest) error {
	return svc.saveStep(ctx, repositories.StepMagicMix, &model.MagicMixData{
		StepSnapshot:        model.StepSnapshot{SessionID: req.SessionID},
		Interactions:        req.Interactions,
		TotalMixCount:       req.TotalMixCount,
		TotalSolutionsAdded: req.TotalSolutionsAdded,
	})
}

func (svc *WorkflowService) SaveLetterContent(ctx context.Context, req dto.SaveLetterContentRequest) error {
	return svc.saveStep(ctx, repositories.StepLetterContent, &model.LetterContentData{
		StepSnapshot:     model.StepSnapshot{SessionID: req.SessionID},
		LetterContent:    req.LetterContent,
		StrengthKeywords: orEmpty(req.StrengthKeywords),
	})
}

func (svc *WorkflowService) SaveResponseLetter(ctx context.Context, req dto.SaveResponseLetterRequest) error {
	err := svc.storage.Steps().SaveResponseLetter(ctx, &model.ResponseLetterData{
		StepSnapshot:            model.StepSnapshot{SessionID: req.SessionID},
		LetterID:                req.LetterID,
		OriginalGeneratedLetter: req.OriginalGeneratedLetter,
		FinalEditedLetter:       req.FinalEditedLetter,
		CharacterName:           req.CharacterName,
	})
	if err != nil {
		return writeError(err, "Response letter")
	}
	return nil
}

// GetResponseLetter looks the letter up by letterID when given, otherwise by
// session.
func (svc *WorkflowService) GetResponseLetter(ctx context.Context, letterID, sessionID string) (*model.ResponseLetterData, error) {
	if letterID != "" {
		doc, err := svc.storage.Steps().GetResponseLetterByLetter(ctx, letterID)
		if err != nil {
			return nil, lookupError(err, "Response letter")
		}
		return doc, nil
	}
	if sessionID == "" {
		return nil, shared.NewBadRequestError(nil, "letterId or sessionId is required")
	}

	var doc model.ResponseLetterData
	if err := svc.storage.Steps().GetStep(ctx, repositories.StepResponseLetter, sessionID, &doc); err != nil {
		return nil, lookupError(err, "Response letter")
	}
	return &doc, nil
}

func (svc *WorkflowService) SaveCompletion(ctx context.Context, req dto.SaveCompletionRequest) (*dto.SaveCompletionResponse, error) {
	action := req.Action
	if action == "" {
		action = shared.CompletionActionCompleted
	}
	history, err := svc.storage.Steps().AddCompletion(ctx, req.SessionID, req.ReflectionID, action)
	if err != nil {
		return nil, writeError(err, "Completion")
	}
	return &dto.SaveCompletionResponse{HistoryID: history.ID}, nil
}

// ==================== REFLECTION STATE MACHINE ====================

func (svc *WorkflowService) reflectionItem(ctx context.Context, sessionID, reflectionID string) (*model.ReflectionItem, error) {
	data, err := svc.storage.Steps().GetReflection(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, "Reflection")
	}
	_, item := data.Item(reflectionID)
	if item == nil {
		return nil, shared.NewNotFoundError(repositories.ErrReflectionItemNotFound, "Reflection item not found")
	}
	return item, nil
}

// emotionWithSummary runs the emotion check and the situation summary side by
// side. Both fall back on failure so the group never returns an error.
func (svc *WorkflowService) emotionWithSummary(ctx context.Context, content string) model.EmotionCheckResult {
	var emotion model.EmotionCheckResult
	var summary string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emotion = svc.ai.CheckEmotion(gctx, content)
		return nil
	})
	g.Go(func() error {
		summary = svc.ai.SummarizeSituation(gctx, content)
		return nil
	})
	_ = g.Wait()

	emotion.SituationSummary = summary
	return emotion
}

// CompleteReflection runs both checks and marks the item fully inspected. A
// failed write still returns the completed item with Persisted false.
func (svc *WorkflowService) CompleteReflection(ctx context.Context, req dto.CompleteReflectionRequest) (*dto.ReflectionItemResponse, error) {
	item, err := svc.reflectionItem(ctx, req.SessionID, req.ReflectionID)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(item.Content)
	if content == "" {
		return nil, shared.NewBadRequestError(nil, "Reflection content is empty")
	}

	var emotion model.EmotionCheckResult
	var blame model.BlameCheckResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emotion = svc.emotionWithSummary(gctx, content)
		return nil
	})
	g.Go(func() error {
		blame = svc.ai.CheckBlame(gctx, content, req.OriginalLetter)
		return nil
	})
	_ = g.Wait()

	completedAt := svc.now()
	updated, err := svc.storage.Steps().UpdateReflectionItem(ctx, req.SessionID, req.ReflectionID, func(it *model.ReflectionItem) {
		it.Complete(emotion, blame, completedAt)
	})
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Str("reflectionId", req.ReflectionID).Msg("Failed to persist completed reflection")
		item.Complete(emotion, blame, completedAt)
		return &dto.ReflectionItemResponse{ReflectionItem: item, Persisted: false}, nil
	}
	return &dto.ReflectionItemResponse{ReflectionItem: updated, Persisted: true}, nil
}

// RegenerateFactors re-runs only the blame check. Everything else on the
// item, and every other item, is left as stored.
func (svc *WorkflowService) RegenerateFactors(ctx context.Context, req dto.RegenerateFactorsRequest) (*dto.ReflectionItemResponse, error) {
	item, err := svc.reflectionItem(ctx, req.SessionID, req.ReflectionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Content) == "" {
		return nil, shared.NewBadRequestError(nil, "Reflection content is empty")
	}

	blame := svc.ai.CheckBlame(ctx, item.Content, req.OriginalLetter)
	updated, err := svc.storage.Steps().UpdateReflectionItem(ctx, req.SessionID, req.ReflectionID, func(it *model.ReflectionItem) {
		it.BlameCheckResult = &blame
		it.RecordCheck()
	})
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Str("reflectionId", req.ReflectionID).Msg("Failed to persist regenerated factors")
		item.BlameCheckResult = &blame
		item.RecordCheck()
		return &dto.ReflectionItemResponse{ReflectionItem: item, Persisted: false}, nil
	}
	return &dto.ReflectionItemResponse{ReflectionItem: updated, Persisted: true}, nil
}

// ==================== AI HELPERS ====================

// recordCheck stores one check result on the item when the request names it.
// Failures are logged; the check result is still returned.
func (svc *WorkflowService) recordCheck(ctx context.Context, req dto.CheckRequest, mutate func(it *model.ReflectionItem)) {
	if !req.Persist() {
		return
	}
	_, err := svc.storage.Steps().UpdateReflectionItem(ctx, req.SessionID, req.ReflectionID, func(it *model.ReflectionItem) {
		mutate(it)
		it.RecordCheck()
	})
	if err != nil && !errors.Is(err, repositories.ErrNotFound) && !errors.Is(err, repositories.ErrReflectionItemNotFound) {
		log.Warn().Err(err).Str("sessionId", req.SessionID).Str("reflectionId", req.ReflectionID).Msg("Failed to record check result")
	}
}

func (svc *WorkflowService) CheckEmotion(ctx context.Context, req dto.CheckRequest) model.EmotionCheckResult {
	result := svc.emotionWithSummary(ctx, req.ReflectionContent)
	svc.recordCheck(ctx, req, func(it *model.ReflectionItem) {
		r := result
		it.EmotionCheckResult = &r
	})
	return result
}

func (svc *WorkflowService) CheckBlame(ctx context.Context, req dto.CheckRequest) model.BlameCheckResult {
	result := svc.ai.CheckBlame(ctx, req.ReflectionContent, req.OriginalLetter)
	svc.recordCheck(ctx, req, func(it *model.ReflectionItem) {
		r := result
		it.BlameCheckResult = &r
	})
	return result
}

func (svc *WorkflowService) Summarize(ctx context.Context, req dto.SummarizeRequest) *dto.SummarizeResponse {
	return &dto.SummarizeResponse{Summary: svc.ai.SummarizeSituation(ctx, req.ReflectionContent)}
}

// GenerateReflectionHints replaces the hints stored for the session when one
// is given.
func (svc *WorkflowService) GenerateReflectionHints(ctx context.Context, req dto.ReflectionHintsRequest) *dto.ReflectionHintsResponse {
	hints := svc.ai.GenerateReflectionHints(ctx, req.CharacterName, req.HighlightedData)

	if req.SessionID != "" {
		doc := &model.ReflectionHints{StepSnapshot: model.StepSnapshot{SessionID: req.SessionID}, Hints: hints}
		if err := svc.storage.Steps().SaveStep(ctx, repositories.StepReflectionHints, doc); err != nil {
			log.Warn().Err(err).Str("sessionId", req.SessionID).Msg("Failed to store reflection hints")
		}
	}
	return &dto.ReflectionHintsResponse{Hints: hints}
}

func (svc *WorkflowService) GenerateSolutions(ctx context.Context, req dto.GenerateSolutionsRequest) *dto.GenerateSolutionsResponse {
	return &dto.GenerateSolutionsResponse{Suggestions: svc.ai.GenerateSolutions(ctx, req)}
}

func (svc *WorkflowService) GenerateResponseLetter(ctx context.Context, req dto.GenerateResponseLetterRequest) (*dto.GenerateResponseLetterResponse, error) {
	letter, err := svc.ai.GenerateResponseLetter(ctx, req)
	if err != nil {
		return nil, err
	}
	return &dto.GenerateResponseLetterResponse{
		Letter: letter,
		Metadata: dto.ResponseLetterMetadata{
			UserNickname:  req.UserNickname,
			CharacterName: req.CharacterName,
			GeneratedAt:   svc.now(),
		},
	}, nil
}
