package repositories

import (
	"context"
	"errors"

	"github.com/heartletter/letter_api/model"
)

type cleanSession interface {
	Header() *model.CleanSessionHeader
}

// CleanSessionRepository handles the per-letter understanding and
// strength-finding sessions.
type CleanSessionRepository struct {
	BaseRepository
}

func NewCleanSessionRepository(base BaseRepository) *CleanSessionRepository {
	return &CleanSessionRepository{BaseRepository: base}
}

// upsertByLetter saves doc as the letter's session, reusing the id already
// bound to the letter so a letter never gains a second session.
func upsertByLetter[T any, P interface {
	*T
	cleanSession
}](ctx context.Context, r *BaseRepository, prefix string, pointer func(string) string, doc P) (P, error) {
	h := doc.Header()
	if h.LetterID == "" {
		return nil, errors.New("letterId is required")
	}

	existingID, err := r.store.Get(ctx, pointer(h.LetterID))
	if err != nil {
		return nil, err
	}
	if h.ID == "" {
		h.ID = existingID
	}

	now := r.Now()
	h.UpdatedAt = now
	if h.ID == "" {
		h.ID = r.newID(prefix)
		h.CreatedAt = now
	} else {
		prev := P(new(T))
		err := r.getDocument(ctx, h.ID, prev)
		switch {
		case err == nil:
			if !prev.Header().CreatedAt.IsZero() {
				h.CreatedAt = prev.Header().CreatedAt
			}
			if h.UserID == "" {
				h.UserID = prev.Header().UserID
			}
		case errors.Is(err, ErrNotFound):
			h.CreatedAt = now
		default:
			return nil, err
		}
	}

	if err := r.putDocument(ctx, h.ID, doc); err != nil {
		return nil, err
	}
	if existingID != h.ID {
		if err := r.store.Set(ctx, pointer(h.LetterID), h.ID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (ds *CleanSessionRepository) SaveUnderstanding(ctx context.Context, session *model.UnderstandingSession) (*model.UnderstandingSession, error) {
	if session.Items == nil {
		session.Items = []model.UnderstandingItem{}
	}
	return upsertByLetter[model.UnderstandingSession](ctx, &ds.BaseRepository, PrefixUnderstanding, UnderstandingByLetterKey, session)
}

func (ds *CleanSessionRepository) GetUnderstanding(ctx context.Context, id string) (*model.UnderstandingSession, error) {
	return getAs[model.UnderstandingSession](ctx, &ds.BaseRepository, id)
}

func (ds *CleanSessionRepository) GetUnderstandingByLetter(ctx context.Context, letterID string) (*model.UnderstandingSession, error) {
	id, err := ds.resolvePointer(ctx, UnderstandingByLetterKey(letterID))
	if err != nil {
		return nil, err
	}
	return ds.GetUnderstanding(ctx, id)
}

func (ds *CleanSessionRepository) SaveStrengthFinding(ctx context.Context, session *model.StrengthFindingSession) (*model.StrengthFindingSession, error) {
	if session.Items == nil {
		session.Items = []model.StrengthFindingItem{}
	}
	return upsertByLetter[model.StrengthFindingSession](ctx, &ds.BaseRepository, PrefixStrengthFinding, StrengthFindingByLetterKey, session)
}

func (ds *CleanSessionRepository) GetStrengthFinding(ctx context.Context, id string) (*model.StrengthFindingSession, error) {
	return getAs[model.StrengthFindingSession](ctx, &ds.BaseRepository, id)
}

func (ds *CleanSessionRepository) GetStrengthFindingByLetter(ctx context.Context, letterID string) (*model.StrengthFindingSession, error) {
	id, err := ds.resolvePointer(ctx, StrengthFindingByLetterKey(letterID))
	if err != nil {
		return nil, err
	}
	return ds.GetStrengthFinding(ctx, id)
}
