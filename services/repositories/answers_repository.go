package repositories

import (
	"context"

	"github.com/heartletter/letter_api/model"
)

// AnswersRepository handles onboarding question answers
type AnswersRepository struct {
	BaseRepository
}

func NewAnswersRepository(base BaseRepository) *AnswersRepository {
	return &AnswersRepository{BaseRepository: base}
}

func (ds *AnswersRepository) CreateAnswers(ctx context.Context, userID string, answers []string) (*model.QuestionAnswers, error) {
	now := ds.Now()
	doc := &model.QuestionAnswers{
		ID:         ds.newID(PrefixAnswers),
		UserID:     userID,
		Answers:    answers,
		Timestamps: model.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	if err := ds.putDocument(ctx, doc.ID, doc); err != nil {
		return nil, err
	}
	if err := ds.store.LPush(ctx, UserAnswersKey(userID), doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (ds *AnswersRepository) GetAnswers(ctx context.Context, answersID string) (*model.QuestionAnswers, error) {
	return getAs[model.QuestionAnswers](ctx, &ds.BaseRepository, answersID)
}

// UpdateAnswers replaces the answer list wholesale.
func (ds *AnswersRepository) UpdateAnswers(ctx context.Context, answersID string, answers []string) (*model.QuestionAnswers, error) {
	if err := ds.patchDocument(ctx, answersID, map[string]interface{}{"answers": answers}); err != nil {
		return nil, err
	}
	return ds.GetAnswers(ctx, answersID)
}

func (ds *AnswersRepository) ListAnswers(ctx context.Context, userID string) ([]*model.QuestionAnswers, error) {
	return listIndexed[model.QuestionAnswers](ctx, &ds.BaseRepository, UserAnswersKey(userID))
}

func (ds *AnswersRepository) DeleteAnswers(ctx context.Context, answersID string) (*CascadeReport, error) {
	return ds.graph.CascadeDelete(ctx, ds.store, NodeAnswers, answersID)
}
