package dto

import "github.com/heartletter/letter_api/model"

// ==================== USER PROFILE DTOs ====================

type UpdateProfileRequest struct {
	Introduction     *string                 `json:"introduction,omitempty" validate:"omitempty,max=2000"`
	StrengthProfile  *model.StrengthProfile  `json:"strengthProfile,omitempty"`
	ChallengeProfile *model.ChallengeProfile `json:"challengeProfile,omitempty"`
}

func (u UpdateProfileRequest) Validate() error {
	return GetValidator().Struct(u)
}

// Fields returns only the supplied profile fields for a shallow merge.
func (u UpdateProfileRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Introduction != nil {
		fields["introduction"] = *u.Introduction
	}
	if u.StrengthProfile != nil {
		fields["strengthProfile"] = u.StrengthProfile
	}
	if u.ChallengeProfile != nil {
		fields["challengeProfile"] = u.ChallengeProfile
	}
	return fields
}

// ==================== ANSWERS DTOs ====================

type SaveAnswersRequest struct {
	UserID    string   `json:"userId" validate:"required"`
	AnswersID string   `json:"answersId,omitempty"`
	Answers   []string `json:"answers" validate:"required"`
}

func (s SaveAnswersRequest) Validate() error {
	return GetValidator().Struct(s)
}

// ==================== LETTER SESSION DTOs ====================

// SaveSessionRequest creates a session when SessionID is empty, otherwise
// merges the supplied fields into it.
type SaveSessionRequest struct {
	UserID            string                  `json:"userId" validate:"required"`
	SessionID         string                  `json:"sessionId,omitempty"`
	QuestionAnswersID string                  `json:"questionAnswersId,omitempty"`
	HighlightedItems  []model.HighlightedItem `json:"highlightedItems,omitempty"`
	StrengthItems     []model.HighlightedItem `json:"strengthItems,omitempty"`
	ReflectionItems   []model.ReflectionItem  `json:"reflectionItems,omitempty"`
	CurrentStep       *int                    `json:"currentStep,omitempty" validate:"omitempty,min=1,max=4"`
}

func (s SaveSessionRequest) Validate() error {
	return GetValidator().Struct(s)
}

func (s SaveSessionRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if s.QuestionAnswersID != "" {
		fields["questionAnswersId"] = s.QuestionAnswersID
	}
	if s.HighlightedItems != nil {
		fields["highlightedItems"] = s.HighlightedItems
	}
	if s.StrengthItems != nil {
		fields["strengthItems"] = s.StrengthItems
	}
	if s.ReflectionItems != nil {
		fields["reflectionItems"] = s.ReflectionItems
	}
	if s.CurrentStep != nil {
		fields["currentStep"] = *s.CurrentStep
	}
	return fields
}
