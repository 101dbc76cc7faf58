package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

// Onboarding answer positions used to build a letter.
const (
	answerBackground = 0
	answerStrengths  = 1
	answerConcern    = 2
	answerDifficulty = 3
)

type LetterService struct {
	appContext.DefaultService

	storage *StorageService
	ai      *AIService
	now     func() time.Time
}

const LETTER_SVC = "letter_svc"

func (svc LetterService) Id() string {
	return LETTER_SVC
}

func (svc *LetterService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *LetterService) Start() error {
	svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	svc.ai = svc.Service(AI_SVC).(*AIService)
	return nil
}

func NewLetterService(storage *StorageService, ai *AIService) *LetterService {
	return &LetterService{storage: storage, ai: ai, now: time.Now}
}

// GenerateLetter analyses the strengths in the user's answers and asks the
// model for a letter from a random animal character.
func (svc *LetterService) GenerateLetter(ctx context.Context, req dto.GenerateLetterRequest) (*dto.GenerateLetterResponse, error) {
	answers, err := svc.storage.Answers().GetAnswers(ctx, req.AnswersID)
	if err != nil {
		return nil, lookupError(err, "Answers")
	}

	nickname := req.UserNickname
	if nickname == "" {
		if user, err := svc.storage.Users().GetUser(ctx, answers.UserID); err == nil {
			nickname = user.Nickname
		}
	}

	analysis, err := svc.analyzeStrengths(ctx, answers)
	if err != nil {
		return nil, err
	}

	name, age, occupation := svc.ai.randomLetterPersona()
	body, err := svc.ai.GenerateLetterBody(ctx, letterPromptInput{
		CharacterName: name,
		Age:           age,
		Occupation:    occupation,
		Background:    answers.Answer(answerBackground),
		Concern:       answers.Answer(answerConcern),
		Difficulty:    answers.Answer(answerDifficulty),
		Strengths:     describeStrengths(analysis.SelectedStrengths),
	})
	if err != nil {
		return nil, err
	}

	usedStrengths := make([]string, 0, len(analysis.SelectedStrengths))
	for _, s := range analysis.SelectedStrengths {
		usedStrengths = append(usedStrengths, s.Name)
	}

	letter, err := svc.storage.Letters().CreateLetter(ctx, &model.Letter{
		UserID:                answers.UserID,
		QuestionAnswersID:     answers.ID,
		StrengthAnalysisLogID: analysis.ID,
		CharacterName:         name,
		Age:                   age,
		Occupation:            occupation,
		Paragraphs:            assembleLetter(nickname, name, body, svc.now()),
		UsedStrengths:         usedStrengths,
		SessionIDs:            svc.storage.Letters().NewStageSessionIDs(),
	})
	if err != nil {
		return nil, writeError(err, "Letter")
	}

	log.Info().Str("letterId", letter.ID).Str("character", name).Int("strengths", len(usedStrengths)).Msg("Letter generated")
	return &dto.GenerateLetterResponse{Letter: letter, StrengthAnalysis: analysis}, nil
}

func (svc *LetterService) analyzeStrengths(ctx context.Context, answers *model.QuestionAnswers) (*model.StrengthAnalysisLog, error) {
	raw := answers.Answer(answerStrengths)
	general, tagged := splitStrengthAnswer(raw)
	if tagged == nil {
		tagged = []model.TaggedStrength{}
	}

	var categorized *model.GeneralStrengths
	if general != "" {
		categorized = svc.ai.CategorizeStrengths(ctx, general)
	}

	analysis, err := svc.storage.Letters().CreateStrengthAnalysis(ctx, &model.StrengthAnalysisLog{
		UserID:            answers.UserID,
		QuestionAnswersID: answers.ID,
		RawStrengthText:   raw,
		TagBased:          tagged,
		General:           categorized,
		SelectedStrengths: svc.ai.selectStrengths(tagged, categorized),
	})
	if err != nil {
		return nil, writeError(err, "Strength analysis")
	}
	return analysis, nil
}

// SaveLetter stores a letter the client already holds, bound to all four
// stage sessions.
func (svc *LetterService) SaveLetter(ctx context.Context, req dto.SaveLetterRequest) (*model.Letter, error) {
	ids := req.SessionIDs.Model()
	if !ids.Complete() {
		return nil, shared.NewBadRequestError(nil, "All four stage session ids are required")
	}

	letter, err := svc.storage.Letters().CreateLetter(ctx, &model.Letter{
		UserID:            req.UserID,
		QuestionAnswersID: req.LetterData.QuestionAnswersID,
		CharacterName:     req.LetterData.CharacterName,
		Age:               req.LetterData.Age,
		Occupation:        req.LetterData.Occupation,
		Paragraphs:        req.LetterData.LetterContent,
		UsedStrengths:     orEmpty(req.LetterData.UsedStrengths),
		SessionIDs:        ids,
	})
	if err != nil {
		return nil, writeError(err, "Letter")
	}
	return letter, nil
}

func (svc *LetterService) GetLetter(ctx context.Context, letterID string) (*model.Letter, error) {
	letter, err := svc.storage.Letters().GetLetter(ctx, letterID)
	if err != nil {
		return nil, lookupError(err, "Letter")
	}
	return letter, nil
}

func (svc *LetterService) GetLetterByAnswers(ctx context.Context, answersID string) (*model.Letter, error) {
	letter, err := svc.storage.Letters().GetLetterByAnswers(ctx, answersID)
	if err != nil {
		return nil, lookupError(err, "Letter")
	}
	return letter, nil
}

func (svc *LetterService) ListLetters(ctx context.Context, userID string) ([]*model.Letter, error) {
	letters, err := svc.storage.Letters().ListLetters(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Letters")
	}
	return letters, nil
}

// letterStage maps a clean session kind to the letter's stage field.
func letterStage(stepType string) string {
	if stepType == shared.StepTypeStrengthFinding {
		return repositories.StageStrengthFinding
	}
	return repositories.StageUnderstanding
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
