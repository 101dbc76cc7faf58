package model

// StepSnapshot is embedded by every session-keyed step log. Saves overwrite
// the whole document.
type StepSnapshot struct {
	SessionID string `json:"sessionId"`
	Timestamps
}

func (s *StepSnapshot) Snapshot() *StepSnapshot {
	return s
}

type InspectionData struct {
	StepSnapshot
	ReflectionItems []ReflectionItem `json:"reflectionItems"`
}

type SuggestionResult struct {
	ReflectionID string   `json:"reflectionId"`
	Suggestions  []string `json:"suggestions"`
}

type SuggestionData struct {
	StepSnapshot
	SuggestionResults   []SuggestionResult `json:"suggestionResults"`
	AllGeneratedFactors []string           `json:"allGeneratedFactors"`
}

type SolutionExplorationData struct {
	StepSnapshot
	SolutionsByReflection map[string][]SolutionInput `json:"solutionsByReflection"`
}

type AIStrengthTagsData struct {
	StepSnapshot
	StrengthTagsByReflection map[string][]string `json:"strengthTagsByReflection"`
}

type MagicMixInteraction struct {
	ID                 string   `json:"id"`
	ReflectionID       string   `json:"reflectionId"`
	StrengthTags       []string `json:"strengthTags"`
	SolutionCategories []string `json:"solutionCategories"`
	GeneratedSolutions []string `json:"generatedSolutions"`
	AddedSolutions     []string `json:"addedSolutions,omitempty"`
}

type MagicMixData struct {
	StepSnapshot
	Interactions        []MagicMixInteraction `json:"interactions"`
	TotalMixCount       int                   `json:"totalMixCount"`
	TotalSolutionsAdded int                   `json:"totalSolutionsAdded"`
}

type ResponseLetterData struct {
	StepSnapshot
	LetterID                string `json:"letterId,omitempty"`
	OriginalGeneratedLetter string `json:"originalGeneratedLetter"`
	FinalEditedLetter       string `json:"finalEditedLetter"`
	CharacterName           string `json:"characterName"`
}

type LetterContentData struct {
	StepSnapshot
	LetterContent    string   `json:"letterContent"`
	StrengthKeywords []string `json:"strengthKeywords"`
}

type ReflectionHints struct {
	StepSnapshot
	Hints []string `json:"hints"`
}

type CompletionHistory struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId"`
	ReflectionID string `json:"reflectionId"`
	Action       string `json:"action"`
	Timestamps
}
