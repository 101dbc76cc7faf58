package dto

import "time"

// ==================== CLASSIFICATION DTOs ====================

// CheckRequest is shared by the emotion and blame checks. When SessionID and
// ReflectionID are both set the result is stored on the reflection item.
type CheckRequest struct {
	ReflectionContent string `json:"reflectionContent" validate:"required,notblank"`
	OriginalLetter    string `json:"originalLetter,omitempty"`
	SessionID         string `json:"sessionId,omitempty"`
	ReflectionID      string `json:"reflectionId,omitempty"`
}

func (c CheckRequest) Validate() error {
	return GetValidator().Struct(c)
}

func (c CheckRequest) Persist() bool {
	return c.SessionID != "" && c.ReflectionID != ""
}

type SummarizeRequest struct {
	ReflectionContent string `json:"reflectionContent" validate:"required,notblank"`
}

func (s SummarizeRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// ==================== GENERATION DTOs ====================

type HighlightedData struct {
	Text             string `json:"text"`
	ProblemReason    string `json:"problemReason,omitempty"`
	UserExplanation  string `json:"userExplanation,omitempty"`
	EmotionInference string `json:"emotionInference,omitempty"`
}

type ReflectionHintsRequest struct {
	CharacterName   string            `json:"characterName" validate:"required"`
	HighlightedData []HighlightedData `json:"highlightedData" validate:"required"`
	LetterContent   string            `json:"letterContent,omitempty"`
	UserID          string            `json:"userId,omitempty"`
	SessionID       string            `json:"sessionId,omitempty"`
}

func (r ReflectionHintsRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ReflectionHintsResponse struct {
	Hints []string `json:"hints"`
}

type GenerateSolutionsRequest struct {
	ProblemContent     string `json:"problemContent" validate:"required,notblank"`
	PersonalReflection string `json:"personalReflection,omitempty"`
	CharacterName      string `json:"characterName,omitempty"`
	LetterContent      string `json:"letterContent,omitempty"`
}

func (g GenerateSolutionsRequest) Validate() error {
	return GetValidator().Struct(g)
}

type SolutionSuggestion struct {
	Category      string `json:"category"`
	CategoryLabel string `json:"categoryLabel"`
	Text          string `json:"text"`
}

type GenerateSolutionsResponse struct {
	Suggestions []SolutionSuggestion `json:"suggestions"`
}

type ResponseLetterSolution struct {
	Content string `json:"content"`
}

type ResponseLetterReflection struct {
	Content        string                   `json:"content"`
	SolutionInputs []ResponseLetterSolution `json:"solutionInputs"`
}

type ResponseLetterStrength struct {
	Text string `json:"text"`
}

type GenerateResponseLetterRequest struct {
	UserNickname     string                     `json:"userNickname,omitempty"`
	CharacterName    string                     `json:"characterName" validate:"required"`
	OriginalLetter   string                     `json:"originalLetter"`
	UserIntroduction string                     `json:"userIntroduction,omitempty"`
	ReflectionItems  []ResponseLetterReflection `json:"reflectionItems"`
	StrengthItems    []ResponseLetterStrength   `json:"strengthItems"`
}

func (g GenerateResponseLetterRequest) Validate() error {
	return GetValidator().Struct(g)
}

type ResponseLetterMetadata struct {
	UserNickname  string    `json:"userNickname"`
	CharacterName string    `json:"characterName"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

type GenerateResponseLetterResponse struct {
	Letter   string                 `json:"letter"`
	Metadata ResponseLetterMetadata `json:"metadata"`
}
