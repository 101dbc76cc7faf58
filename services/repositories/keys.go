package repositories

// Document prefixes. An id is "<prefix>:<millis>:<suffix>" and doubles as
// the document key.
const (
	PrefixUser             = "user"
	PrefixAnswers          = "answers"
	PrefixSession          = "session"
	PrefixLetter           = "letter"
	PrefixStrengthAnalysis = "strength_analysis"
	PrefixUnderstanding    = "understanding_session"
	PrefixStrengthFinding  = "strength_finding_session"
	PrefixReflectionStage  = "reflection_session"
	PrefixSolutionStage    = "solution_session"
	PrefixCompletion       = "completion_history"
	PrefixLegacyWriting    = "writing_step"
)

const AllUsersKey = "all_users"

func NicknameKey(nickname string) string { return "nickname:" + nickname }
func UserSessionsKey(userID string) string { return "user_sessions:" + userID }
func UserAnswersKey(userID string) string { return "user_answers:" + userID }
func UserLettersKey(userID string) string { return "user_letters:" + userID }
func UserStrengthAnalysesKey(userID string) string { return "user_strength_analyses:" + userID }
func ReflectionHistoryKey(sessionID string) string { return "reflection_history:" + sessionID }
func AnswersLetterKey(answersID string) string { return "answers_letter:" + answersID }

func UnderstandingByLetterKey(letterID string) string {
	return "understanding_session_by_letter:" + letterID
}

func StrengthFindingByLetterKey(letterID string) string {
	return "strength_finding_session_by_letter:" + letterID
}

func ResponseLetterByLetterKey(letterID string) string {
	return "response_letter_by_letter:" + letterID
}

// StepKind names a session-keyed writing step document.
type StepKind string

const (
	StepReflection          StepKind = "reflection"
	StepInspection          StepKind = "inspection"
	StepSuggestion          StepKind = "suggestion"
	StepSolutionExploration StepKind = "solution_exploration"
	StepAIStrengthTags      StepKind = "ai_strength_tags"
	StepMagicMix            StepKind = "magic_mix"
	StepResponseLetter      StepKind = "response_letter"
	StepLetterContent       StepKind = "letter_content"
	StepReflectionHints     StepKind = "reflection_hints"
)

var AllStepKinds = []StepKind{
	StepReflection,
	StepInspection,
	StepSuggestion,
	StepSolutionExploration,
	StepAIStrengthTags,
	StepMagicMix,
	StepResponseLetter,
	StepLetterContent,
	StepReflectionHints,
}

func StepKey(kind StepKind, sessionID string) string {
	return string(kind) + ":" + sessionID
}
