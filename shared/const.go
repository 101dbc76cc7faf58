package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleUser  = "user"
	RoleAdmin = "admin"

	StepTypeUnderstanding   = "understanding"
	StepTypeStrengthFinding = "strength_finding"

	CompletionActionCompleted = "completed"
)
