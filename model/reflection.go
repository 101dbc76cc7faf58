package model

import "time"

// Inspection steps of a reflection item.
const (
	InspectionUnstarted = 0
	InspectionOneCheck  = 1
	InspectionBoth      = 2
	InspectionComplete  = 3
)

type ReflectionItem struct {
	ID                 string              `json:"id"`
	Content            string              `json:"content"`
	Keywords           []string            `json:"keywords,omitempty"`
	SelectedHints      []string            `json:"selectedHints,omitempty"`
	SelectedFactors    []string            `json:"selectedFactors,omitempty"`
	SelectedTags       []SelectedTag       `json:"selectedTags,omitempty"`
	InspectionStep     int                 `json:"inspectionStep"`
	EmotionCheckResult *EmotionCheckResult `json:"emotionCheckResult,omitempty"`
	BlameCheckResult   *BlameCheckResult   `json:"blameCheckResult,omitempty"`
	Solutions          []SolutionInput     `json:"solutions,omitempty"`
	SolutionContent    string              `json:"solutionContent,omitempty"`
	SolutionCompleted  bool                `json:"solutionCompleted,omitempty"`
	CompletedAt        *time.Time          `json:"completedAt,omitempty"`
	Timestamps
}

type SelectedTag struct {
	Tag  string `json:"tag"`
	Type string `json:"type"`
}

// SolutionInput is a free-text suggestion with the tags that inspired it.
type SolutionInput struct {
	ID                 string   `json:"id"`
	Content            string   `json:"content"`
	StrengthTags       []string `json:"strengthTags,omitempty"`
	SolutionCategories []string `json:"solutionCategories,omitempty"`
}

type EmotionCheckResult struct {
	HasEmotion       bool   `json:"hasEmotion"`
	Suggestion       string `json:"suggestion,omitempty"`
	SituationSummary string `json:"situationSummary,omitempty"`
}

type BlameCheckResult struct {
	HasBlamePattern      bool     `json:"hasBlamePattern"`
	Warning              string   `json:"warning"`
	EnvironmentalFactors []string `json:"environmentalFactors"`
}

// RecordCheck advances the step after an individual check. A completed item
// keeps step 3.
func (r *ReflectionItem) RecordCheck() {
	if r.InspectionStep >= InspectionComplete {
		return
	}
	step := InspectionUnstarted
	if r.EmotionCheckResult != nil {
		step++
	}
	if r.BlameCheckResult != nil {
		step++
	}
	r.InspectionStep = step
}

// Complete stores both check results and marks the item fully inspected.
func (r *ReflectionItem) Complete(emotion EmotionCheckResult, blame BlameCheckResult, at time.Time) {
	r.EmotionCheckResult = &emotion
	r.BlameCheckResult = &blame
	r.InspectionStep = InspectionComplete
	r.CompletedAt = &at
	r.UpdatedAt = at
}

func (r ReflectionItem) IsCompleted() bool {
	return r.InspectionStep >= InspectionComplete || r.SolutionCompleted
}

// ReflectionStepData is the whole-document snapshot of the reflection stage
// of one writing session.
type ReflectionStepData struct {
	SessionID         string           `json:"sessionId"`
	ReflectionItems   []ReflectionItem `json:"reflectionItems"`
	SelectedHintTags  []string         `json:"selectedHintTags"`
	AllGeneratedHints []string         `json:"allGeneratedHints"`
	HistoryIDs        []string         `json:"historyIds"`
	Version           int              `json:"version"`
	Timestamps
}

func (d *ReflectionStepData) Item(id string) (int, *ReflectionItem) {
	for i := range d.ReflectionItems {
		if d.ReflectionItems[i].ID == id {
			return i, &d.ReflectionItems[i]
		}
	}
	return -1, nil
}
