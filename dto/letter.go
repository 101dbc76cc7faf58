package dto

import "github.com/heartletter/letter_api/model"

type GenerateLetterRequest struct {
	AnswersID    string `json:"answersId" validate:"required"`
	UserNickname string `json:"userNickname,omitempty" validate:"omitempty,max=30"`
}

func (g GenerateLetterRequest) Validate() error {
	return GetValidator().Struct(g)
}

type GenerateLetterResponse struct {
	Letter           *model.Letter              `json:"letter"`
	StrengthAnalysis *model.StrengthAnalysisLog `json:"strengthAnalysis"`
}

type LetterData struct {
	CharacterName     string   `json:"characterName" validate:"required"`
	Age               int      `json:"age"`
	Occupation        string   `json:"occupation"`
	LetterContent     []string `json:"letterContent" validate:"required,min=1"`
	UsedStrengths     []string `json:"usedStrengths"`
	QuestionAnswersID string   `json:"questionAnswersId,omitempty"`
}

// StageSessionIDs uses the field names the client sends.
type StageSessionIDs struct {
	UnderstandingSessionID   string `json:"understandingSessionId" validate:"required"`
	StrengthFindingSessionID string `json:"strengthFindingSessionId" validate:"required"`
	ReflectionSessionID      string `json:"reflectionSessionId" validate:"required"`
	SolutionSessionID        string `json:"solutionSessionId" validate:"required"`
}

func (s StageSessionIDs) Model() model.LetterSessionIDs {
	return model.LetterSessionIDs{
		Understanding:   s.UnderstandingSessionID,
		StrengthFinding: s.StrengthFindingSessionID,
		Reflection:      s.ReflectionSessionID,
		Solution:        s.SolutionSessionID,
	}
}

type SaveLetterRequest struct {
	UserID     string          `json:"userId" validate:"required"`
	LetterData LetterData      `json:"letterData" validate:"required"`
	SessionIDs StageSessionIDs `json:"sessionIds" validate:"required"`
}

func (s SaveLetterRequest) Validate() error {
	return GetValidator().Struct(s)
}
