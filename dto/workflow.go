package dto

import (
	"time"

	"github.com/heartletter/letter_api/model"
)

// ==================== CLEAN SESSION DTOs ====================

// HighlightInput accepts both "highlightedText" and the older "text" field.
type HighlightInput struct {
	ID                  string     `json:"id" validate:"required"`
	Color               string     `json:"color"`
	HighlightedText     string     `json:"highlightedText,omitempty"`
	Text                string     `json:"text,omitempty"`
	ProblemReason       string     `json:"problemReason,omitempty"`
	UserExplanation     string     `json:"userExplanation,omitempty"`
	EmotionInference    string     `json:"emotionInference,omitempty"`
	StrengthDescription string     `json:"strengthDescription,omitempty"`
	StrengthApplication string     `json:"strengthApplication,omitempty"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
}

func (h HighlightInput) Highlighted() string {
	if h.HighlightedText != "" {
		return h.HighlightedText
	}
	return h.Text
}

type SaveCleanSessionRequest struct {
	LetterID         string           `json:"letterId" validate:"required"`
	UserID           string           `json:"userId,omitempty"`
	HighlightedItems []HighlightInput `json:"highlightedItems" validate:"dive"`
}

func (s SaveCleanSessionRequest) Validate() error {
	return GetValidator().Struct(s)
}

// ==================== WRITING STEP DTOs ====================

type SaveReflectionRequest struct {
	SessionID         string                 `json:"sessionId" validate:"required"`
	ReflectionItems   []model.ReflectionItem `json:"reflectionItems" validate:"required"`
	SelectedHintTags  []string               `json:"selectedHintTags" validate:"required"`
	AllGeneratedHints []string               `json:"allGeneratedHints" validate:"required"`
}

func (s SaveReflectionRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveInspectionRequest struct {
	SessionID         string                 `json:"sessionId" validate:"required"`
	InspectionResults []model.ReflectionItem `json:"inspectionResults" validate:"required"`
}

func (s SaveInspectionRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveSuggestionRequest struct {
	SessionID           string                   `json:"sessionId" validate:"required"`
	SuggestionResults   []model.SuggestionResult `json:"suggestionResults" validate:"required"`
	AllGeneratedFactors []string                 `json:"allGeneratedFactors"`
}

func (s SaveSuggestionRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveSolutionExplorationRequest struct {
	SessionID             string                           `json:"sessionId" validate:"required"`
	SolutionsByReflection map[string][]model.SolutionInput `json:"solutionsByReflection" validate:"required"`
}

func (s SaveSolutionExplorationRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveAIStrengthTagsRequest struct {
	SessionID                string              `json:"sessionId" validate:"required"`
	StrengthTagsByReflection map[string][]string `json:"strengthTagsByReflection" validate:"required"`
}

func (s SaveAIStrengthTagsRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveMagicMixRequest struct {
	SessionID           string                      `json:"sessionId" validate:"required"`
	Interactions        []model.MagicMixInteraction `json:"interactions" validate:"required"`
	TotalMixCount       int                         `json:"totalMixCount" validate:"min=0"`
	TotalSolutionsAdded int                         `json:"totalSolutionsAdded" validate:"min=0"`
}

func (s SaveMagicMixRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveResponseLetterRequest struct {
	SessionID               string `json:"sessionId" validate:"required"`
	LetterID                string `json:"letterId,omitempty"`
	OriginalGeneratedLetter string `json:"originalGeneratedLetter"`
	FinalEditedLetter       string `json:"finalEditedLetter" validate:"required"`
	CharacterName           string `json:"characterName"`
}

func (s SaveResponseLetterRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveLetterContentRequest struct {
	SessionID        string   `json:"sessionId" validate:"required"`
	LetterContent    string   `json:"letterContent" validate:"required"`
	StrengthKeywords []string `json:"strengthKeywords"`
}

func (s SaveLetterContentRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveCompletionRequest struct {
	SessionID    string `json:"sessionId" validate:"required"`
	ReflectionID string `json:"reflectionId" validate:"required"`
	Action       string `json:"action,omitempty" validate:"omitempty,max=50"`
}

func (s SaveCompletionRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SaveCompletionResponse struct {
	HistoryID string `json:"historyId"`
}

type SaveReflectionResponse struct {
	SessionID string `json:"sessionId"`
	Version   int    `json:"version"`
}

// ==================== REFLECTION STATE DTOs ====================

type CompleteReflectionRequest struct {
	SessionID      string `json:"sessionId" validate:"required"`
	ReflectionID   string `json:"reflectionId" validate:"required"`
	OriginalLetter string `json:"originalLetter,omitempty"`
}

func (c CompleteReflectionRequest) Validate() error {
	return GetValidator().Struct(c)
}

type RegenerateFactorsRequest struct {
	SessionID      string `json:"sessionId" validate:"required"`
	ReflectionID   string `json:"reflectionId" validate:"required"`
	OriginalLetter string `json:"originalLetter,omitempty"`
}

func (r RegenerateFactorsRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ReflectionItemResponse carries the item after a state transition.
// Persisted is false when the checks ran but the write failed.
type ReflectionItemResponse struct {
	ReflectionItem *model.ReflectionItem `json:"reflectionItem"`
	Persisted      bool                  `json:"persisted"`
}
