package model

import "time"

// Timestamps is embedded by every stored document.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LastModified is the sort key used by list indexes.
func (t Timestamps) LastModified() time.Time {
	if t.UpdatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

type User struct {
	ID               string            `json:"id"`
	Nickname         string            `json:"nickname"`
	Password         string            `json:"password,omitempty"`
	Role             string            `json:"role,omitempty"`
	Introduction     string            `json:"introduction,omitempty"`
	StrengthProfile  *StrengthProfile  `json:"strengthProfile,omitempty"`
	ChallengeProfile *ChallengeProfile `json:"challengeProfile,omitempty"`
	Timestamps
}

type StrengthProfile struct {
	Text     string            `json:"text"`
	Keywords []StrengthKeyword `json:"keywords"`
}

type StrengthKeyword struct {
	Keyword string `json:"keyword"`
	Content string `json:"content"`
}

type ChallengeProfile struct {
	Context   string `json:"context"`
	Challenge string `json:"challenge"`
}

// Public returns a copy safe to send to clients.
func (u User) Public() User {
	u.Password = ""
	return u
}
