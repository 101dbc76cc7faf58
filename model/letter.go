package model

type Letter struct {
	ID                    string           `json:"id"`
	UserID                string           `json:"userId"`
	QuestionAnswersID     string           `json:"questionAnswersId,omitempty"`
	StrengthAnalysisLogID string           `json:"strengthAnalysisLogId,omitempty"`
	CharacterName         string           `json:"characterName"`
	Age                   int              `json:"age"`
	Occupation            string           `json:"occupation"`
	Paragraphs            []string         `json:"paragraphs"`
	UsedStrengths         []string         `json:"usedStrengths"`
	SessionIDs            LetterSessionIDs `json:"sessionIds"`
	Timestamps
}

// LetterSessionIDs links a letter to its four workflow stages.
type LetterSessionIDs struct {
	Understanding   string `json:"understanding"`
	StrengthFinding string `json:"strengthFinding"`
	Reflection      string `json:"reflection"`
	Solution        string `json:"solution"`
}

func (ids LetterSessionIDs) Complete() bool {
	return ids.Understanding != "" && ids.StrengthFinding != "" && ids.Reflection != "" && ids.Solution != ""
}

const (
	StrengthSourceTagBased         = "tag_based"
	StrengthSourceExistingCategory = "existing_category"
	StrengthSourceNewCategory      = "new_category"
	StrengthSourceRandom           = "random"
)

type StrengthAnalysisLog struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId"`
	QuestionAnswersID string             `json:"questionAnswersId"`
	RawStrengthText   string             `json:"rawStrengthText"`
	TagBased          []TaggedStrength   `json:"tagBased"`
	General           *GeneralStrengths  `json:"general,omitempty"`
	SelectedStrengths []SelectedStrength `json:"selectedStrengths"`
	Timestamps
}

type TaggedStrength struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type GeneralStrengths struct {
	Content            string   `json:"content"`
	ExistingCategories []string `json:"existingCategories"`
	NewCategories      []string `json:"newCategories"`
	Fallback           bool     `json:"fallback,omitempty"`
}

type SelectedStrength struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UserContent string `json:"userContent,omitempty"`
	Source      string `json:"source"`
}
