package repositories

import (
	"context"
	"errors"

	"github.com/heartletter/letter_api/model"
)

// Letter workflow stages.
const (
	StageUnderstanding   = "understanding"
	StageStrengthFinding = "strengthFinding"
	StageReflection      = "reflection"
	StageSolution        = "solution"
)

// LetterRepository handles generated letters and their strength analyses
type LetterRepository struct {
	BaseRepository
}

func NewLetterRepository(base BaseRepository) *LetterRepository {
	return &LetterRepository{BaseRepository: base}
}

// NewStageSessionIDs allocates the reflection and solution stage ids. The
// understanding and strength-finding ids are filled once those sessions are
// created.
func (ds *LetterRepository) NewStageSessionIDs() model.LetterSessionIDs {
	return model.LetterSessionIDs{
		Reflection: ds.newID(PrefixReflectionStage),
		Solution:   ds.newID(PrefixSolutionStage),
	}
}

func (ds *LetterRepository) CreateLetter(ctx context.Context, letter *model.Letter) (*model.Letter, error) {
	now := ds.Now()
	letter.ID = ds.newID(PrefixLetter)
	letter.CreatedAt = now
	letter.UpdatedAt = now

	if err := ds.putDocument(ctx, letter.ID, letter); err != nil {
		return nil, err
	}
	if err := ds.store.LPush(ctx, UserLettersKey(letter.UserID), letter.ID); err != nil {
		return nil, err
	}
	if letter.QuestionAnswersID != "" {
		if err := ds.store.Set(ctx, AnswersLetterKey(letter.QuestionAnswersID), letter.ID); err != nil {
			return nil, err
		}
	}
	return letter, nil
}

func (ds *LetterRepository) GetLetter(ctx context.Context, letterID string) (*model.Letter, error) {
	return getAs[model.Letter](ctx, &ds.BaseRepository, letterID)
}

func (ds *LetterRepository) GetLetterByAnswers(ctx context.Context, answersID string) (*model.Letter, error) {
	letterID, err := ds.resolvePointer(ctx, AnswersLetterKey(answersID))
	if err != nil {
		return nil, err
	}
	return ds.GetLetter(ctx, letterID)
}

func (ds *LetterRepository) ListLetters(ctx context.Context, userID string) ([]*model.Letter, error) {
	return listIndexed[model.Letter](ctx, &ds.BaseRepository, UserLettersKey(userID))
}

// LatestLetter returns the user's newest letter. Letters written before the
// user_letters index existed are found by scanning.
func (ds *LetterRepository) LatestLetter(ctx context.Context, userID string) (*model.Letter, error) {
	letters, err := ds.ListLetters(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(letters) > 0 {
		return letters[0], nil
	}

	keys, err := ds.store.Keys(ctx, PrefixLetter+":*")
	if err != nil {
		return nil, err
	}
	var latest *model.Letter
	for _, key := range keys {
		letter, err := ds.GetLetter(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if letter.UserID != userID {
			continue
		}
		if latest == nil || letter.LastModified().After(latest.LastModified()) {
			latest = letter
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (ds *LetterRepository) UpdateLetter(ctx context.Context, letterID string, fields map[string]interface{}) (*model.Letter, error) {
	if err := ds.patchDocument(ctx, letterID, fields); err != nil {
		return nil, err
	}
	return ds.GetLetter(ctx, letterID)
}

// SetStageSession records one stage session id on the letter.
func (ds *LetterRepository) SetStageSession(ctx context.Context, letterID, stage, sessionID string) error {
	letter, err := ds.GetLetter(ctx, letterID)
	if err != nil {
		return err
	}
	ids := letter.SessionIDs
	switch stage {
	case StageUnderstanding:
		ids.Understanding = sessionID
	case StageStrengthFinding:
		ids.StrengthFinding = sessionID
	case StageReflection:
		ids.Reflection = sessionID
	case StageSolution:
		ids.Solution = sessionID
	default:
		return errors.New("unknown letter stage: " + stage)
	}
	return ds.patchDocument(ctx, letterID, map[string]interface{}{"sessionIds": ids})
}

func (ds *LetterRepository) CreateStrengthAnalysis(ctx context.Context, analysis *model.StrengthAnalysisLog) (*model.StrengthAnalysisLog, error) {
	now := ds.Now()
	analysis.ID = ds.newID(PrefixStrengthAnalysis)
	analysis.CreatedAt = now
	analysis.UpdatedAt = now

	if err := ds.putDocument(ctx, analysis.ID, analysis); err != nil {
		return nil, err
	}
	if err := ds.store.LPush(ctx, UserStrengthAnalysesKey(analysis.UserID), analysis.ID); err != nil {
		return nil, err
	}
	return analysis, nil
}

func (ds *LetterRepository) GetStrengthAnalysis(ctx context.Context, id string) (*model.StrengthAnalysisLog, error) {
	return getAs[model.StrengthAnalysisLog](ctx, &ds.BaseRepository, id)
}

func (ds *LetterRepository) ListStrengthAnalyses(ctx context.Context, userID string) ([]*model.StrengthAnalysisLog, error) {
	return listIndexed[model.StrengthAnalysisLog](ctx, &ds.BaseRepository, UserStrengthAnalysesKey(userID))
}

func (ds *LetterRepository) DeleteLetter(ctx context.Context, letterID string) (*CascadeReport, error) {
	return ds.graph.CascadeDelete(ctx, ds.store, NodeLetter, letterID)
}
