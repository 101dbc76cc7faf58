package model

type QuestionAnswers struct {
	ID      string   `json:"id"`
	UserID  string   `json:"userId"`
	Answers []string `json:"answers"`
	Timestamps
}

// Answer returns the i-th answer or "" when it was never given.
func (q QuestionAnswers) Answer(i int) string {
	if i < 0 || i >= len(q.Answers) {
		return ""
	}
	return q.Answers[i]
}
