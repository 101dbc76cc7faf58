package repositories

import (
	"context"

	"github.com/heartletter/letter_api/model"
)

// SessionRepository handles LetterSession aggregates
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(base BaseRepository) *SessionRepository {
	return &SessionRepository{BaseRepository: base}
}

func (ds *SessionRepository) CreateSession(ctx context.Context, session *model.LetterSession) (*model.LetterSession, error) {
	now := ds.Now()
	session.ID = ds.newID(PrefixSession)
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.HighlightedItems == nil {
		session.HighlightedItems = []model.HighlightedItem{}
	}

	if err := ds.putDocument(ctx, session.ID, session); err != nil {
		return nil, err
	}
	if err := ds.store.LPush(ctx, UserSessionsKey(session.UserID), session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

func (ds *SessionRepository) GetSession(ctx context.Context, sessionID string) (*model.LetterSession, error) {
	return getAs[model.LetterSession](ctx, &ds.BaseRepository, sessionID)
}

// UpdateSession merges only the supplied fields into the stored session.
func (ds *SessionRepository) UpdateSession(ctx context.Context, sessionID string, fields map[string]interface{}) (*model.LetterSession, error) {
	if err := ds.patchDocument(ctx, sessionID, fields); err != nil {
		return nil, err
	}
	return ds.GetSession(ctx, sessionID)
}

func (ds *SessionRepository) ListSessions(ctx context.Context, userID string) ([]*model.LetterSession, error) {
	return listIndexed[model.LetterSession](ctx, &ds.BaseRepository, UserSessionsKey(userID))
}

// DeleteSession removes the session, its step documents and its entry in the
// owner's index.
func (ds *SessionRepository) DeleteSession(ctx context.Context, sessionID string) (*CascadeReport, error) {
	return ds.graph.CascadeDelete(ctx, ds.store, NodeSession, sessionID)
}
