package model

// LetterSession is the coarse per-user aggregate that predates the per-letter
// clean sessions. CurrentStep runs 1 to 4.
type LetterSession struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	QuestionAnswersID string            `json:"questionAnswersId,omitempty"`
	HighlightedItems  []HighlightedItem `json:"highlightedItems"`
	StrengthItems     []HighlightedItem `json:"strengthItems,omitempty"`
	ReflectionItems   []ReflectionItem  `json:"reflectionItems,omitempty"`
	CurrentStep       int               `json:"currentStep,omitempty"`
	Timestamps
}

type HighlightedItem struct {
	ID                  string   `json:"id"`
	Text                string   `json:"text"`
	Color               string   `json:"color"`
	OriginalText        string   `json:"originalText,omitempty"`
	ParagraphIndex      int      `json:"paragraphIndex"`
	UserExplanation     string   `json:"userExplanation,omitempty"`
	ProblemReason       string   `json:"problemReason,omitempty"`
	EmotionInference    string   `json:"emotionInference,omitempty"`
	StrengthDescription string   `json:"strengthDescription,omitempty"`
	StrengthApplication string   `json:"strengthApplication,omitempty"`
	ConversationHistory []QAPair `json:"conversationHistory,omitempty"`
}

type QAPair struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
