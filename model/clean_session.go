package model

import "time"

// CleanSessionHeader is shared by the per-letter understanding and
// strength-finding sessions. A letter has at most one of each.
type CleanSessionHeader struct {
	ID       string `json:"id"`
	LetterID string `json:"letterId"`
	UserID   string `json:"userId,omitempty"`
	Timestamps
}

func (h *CleanSessionHeader) Header() *CleanSessionHeader {
	return h
}

type UnderstandingSession struct {
	CleanSessionHeader
	Items []UnderstandingItem `json:"items"`
}

type UnderstandingItem struct {
	ID               string     `json:"id"`
	Color            string     `json:"color"`
	HighlightedText  string     `json:"highlightedText"`
	ProblemReason    string     `json:"problemReason,omitempty"`
	UserExplanation  string     `json:"userExplanation,omitempty"`
	EmotionInference string     `json:"emotionInference,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

type StrengthFindingSession struct {
	CleanSessionHeader
	Items []StrengthFindingItem `json:"items"`
}

type StrengthFindingItem struct {
	ID                  string     `json:"id"`
	Color               string     `json:"color"`
	HighlightedText     string     `json:"highlightedText"`
	StrengthDescription string     `json:"strengthDescription,omitempty"`
	StrengthApplication string     `json:"strengthApplication,omitempty"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
}
