package repositories

import (
	"context"
	"errors"

	"github.com/heartletter/letter_api/model"
)

var ErrReflectionItemNotFound = errors.New("reflection item not found")

type stepDocument interface {
	Snapshot() *model.StepSnapshot
}

// StepRepository handles session-keyed writing step documents. Every save
// overwrites the whole snapshot.
type StepRepository struct {
	BaseRepository
}

func NewStepRepository(base BaseRepository) *StepRepository {
	return &StepRepository{BaseRepository: base}
}

func (ds *StepRepository) SaveStep(ctx context.Context, kind StepKind, doc stepDocument) error {
	snap := doc.Snapshot()
	if snap.SessionID == "" {
		return errors.New("sessionId is required")
	}
	key := StepKey(kind, snap.SessionID)

	now := ds.Now()
	var prev model.StepSnapshot
	switch err := ds.getDocument(ctx, key, &prev); {
	case err == nil && !prev.CreatedAt.IsZero():
		snap.CreatedAt = prev.CreatedAt
	case err == nil, errors.Is(err, ErrNotFound):
		snap.CreatedAt = now
	default:
		return err
	}
	snap.UpdatedAt = now

	return ds.putDocument(ctx, key, doc)
}

func (ds *StepRepository) GetStep(ctx context.Context, kind StepKind, sessionID string, doc stepDocument) error {
	return ds.getDocument(ctx, StepKey(kind, sessionID), doc)
}

func (ds *StepRepository) SaveResponseLetter(ctx context.Context, doc *model.ResponseLetterData) error {
	if err := ds.SaveStep(ctx, StepResponseLetter, doc); err != nil {
		return err
	}
	if doc.LetterID == "" {
		return nil
	}
	return ds.store.Set(ctx, ResponseLetterByLetterKey(doc.LetterID), doc.SessionID)
}

func (ds *StepRepository) GetResponseLetterByLetter(ctx context.Context, letterID string) (*model.ResponseLetterData, error) {
	sessionID, err := ds.resolvePointer(ctx, ResponseLetterByLetterKey(letterID))
	if err != nil {
		return nil, err
	}
	var doc model.ResponseLetterData
	if err := ds.GetStep(ctx, StepResponseLetter, sessionID, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (ds *StepRepository) GetReflection(ctx context.Context, sessionID string) (*model.ReflectionStepData, error) {
	return getAs[model.ReflectionStepData](ctx, &ds.BaseRepository, StepKey(StepReflection, sessionID))
}

// SaveReflection overwrites the reflection snapshot and bumps its version.
// History ids recorded by completions survive the overwrite.
func (ds *StepRepository) SaveReflection(ctx context.Context, data *model.ReflectionStepData) (*model.ReflectionStepData, error) {
	if data.SessionID == "" {
		return nil, errors.New("sessionId is required")
	}

	now := ds.Now()
	prev, err := ds.GetReflection(ctx, data.SessionID)
	switch {
	case err == nil:
		data.Version = prev.Version + 1
		data.CreatedAt = prev.CreatedAt
		if len(data.HistoryIDs) == 0 {
			data.HistoryIDs = prev.HistoryIDs
		}
	case errors.Is(err, ErrNotFound):
		data.Version = 1
		data.CreatedAt = now
	default:
		return nil, err
	}
	data.UpdatedAt = now
	for i := range data.ReflectionItems {
		item := &data.ReflectionItems[i]
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = now
		}
	}

	if err := ds.putDocument(ctx, StepKey(StepReflection, data.SessionID), data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateReflectionItem applies mutate to a single item and writes the
// document back, leaving every other item and field as stored.
func (ds *StepRepository) UpdateReflectionItem(ctx context.Context, sessionID, reflectionID string, mutate func(item *model.ReflectionItem)) (*model.ReflectionItem, error) {
	data, err := ds.GetReflection(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	_, item := data.Item(reflectionID)
	if item == nil {
		return nil, ErrReflectionItemNotFound
	}

	mutate(item)
	now := ds.Now()
	item.UpdatedAt = now
	data.UpdatedAt = now

	if err := ds.putDocument(ctx, StepKey(StepReflection, sessionID), data); err != nil {
		return nil, err
	}
	out := *item
	return &out, nil
}

// AddCompletion records a completion event and links it from the reflection
// snapshot when one exists.
func (ds *StepRepository) AddCompletion(ctx context.Context, sessionID, reflectionID, action string) (*model.CompletionHistory, error) {
	now := ds.Now()
	history := &model.CompletionHistory{
		ID:           ds.newID(PrefixCompletion),
		SessionID:    sessionID,
		ReflectionID: reflectionID,
		Action:       action,
		Timestamps:   model.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	if err := ds.putDocument(ctx, history.ID, history); err != nil {
		return nil, err
	}
	if err := ds.store.LPush(ctx, ReflectionHistoryKey(sessionID), history.ID); err != nil {
		return nil, err
	}

	data, err := ds.GetReflection(ctx, sessionID)
	switch {
	case err == nil:
		data.HistoryIDs = append(data.HistoryIDs, history.ID)
		data.UpdatedAt = now
		if err := ds.putDocument(ctx, StepKey(StepReflection, sessionID), data); err != nil {
			return nil, err
		}
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return history, nil
}

func (ds *StepRepository) ListCompletions(ctx context.Context, sessionID string) ([]*model.CompletionHistory, error) {
	return listIndexed[model.CompletionHistory](ctx, &ds.BaseRepository, ReflectionHistoryKey(sessionID))
}
