package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

type WorkflowHandler struct {
	workflowSvc WorkflowServiceInterface
}

func NewWorkflowHandler(workflowSvc WorkflowServiceInterface) *WorkflowHandler {
	return &WorkflowHandler{workflowSvc: workflowSvc}
}

// ==================== CLEAN SESSIONS ====================

// @Summary Save understanding session
// @Description Upsert the understanding session bound to a letter
// @Tags understanding
// @Accept json
// @Produce json
// @Param saveRequest body dto.SaveCleanSessionRequest true "Highlighted items"
// @Success 200 {object} shared.Response{data=model.UnderstandingSession}
// @Router /api/v1/understanding-session/save [post]
func (h *WorkflowHandler) SaveUnderstanding(c *fiber.Ctx) error {
	var req dto.SaveCleanSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.workflowSvc.SaveUnderstanding(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Understanding session saved", session)
}

func (h *WorkflowHandler) GetUnderstanding(c *fiber.Ctx) error {
	id, err := requiredParam(c, "id")
	if err != nil {
		return err
	}

	session, err := h.workflowSvc.GetUnderstanding(c.UserContext(), id)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

func (h *WorkflowHandler) GetUnderstandingByLetter(c *fiber.Ctx) error {
	letterID, err := requiredParam(c, "letterId")
	if err != nil {
		return err
	}

	session, err := h.workflowSvc.GetUnderstandingByLetter(c.UserContext(), letterID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Save strength finding session
// @Description Upsert the strength finding session bound to a letter
// @Tags strength-finding
// @Accept json
// @Produce json
// @Param saveRequest body dto.SaveCleanSessionRequest true "Highlighted items"
// @Success 200 {object} shared.Response{data=model.StrengthFindingSession}
// @Router /api/v1/strength-finding-session/save [post]
func (h *WorkflowHandler) SaveStrengthFinding(c *fiber.Ctx) error {
	var req dto.SaveCleanSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.workflowSvc.SaveStrengthFinding(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Strength finding session saved", session)
}

func (h *WorkflowHandler) GetStrengthFinding(c *fiber.Ctx) error {
	id, err := requiredParam(c, "id")
	if err != nil {
		return err
	}

	session, err := h.workflowSvc.GetStrengthFinding(c.UserContext(), id)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

func (h *WorkflowHandler) GetStrengthFindingByLetter(c *fiber.Ctx) error {
	letterID, err := requiredParam(c, "letterId")
	if err != nil {
		return err
	}

	session, err := h.workflowSvc.GetStrengthFindingByLetter(c.UserContext(), letterID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// ==================== WRITING STEPS ====================

// @Summary Save reflection step
// @Description Store reflection items and hint selections, bumping the version
// @Tags writing-step
// @Accept json
// @Produce json
// @Param saveRequest body dto.SaveReflectionRequest true "Reflection items"
// @Success 200 {object} shared.Response{data=dto.SaveReflectionResponse}
// @Router /api/v1/writing-step/save-reflection [post]
func (h *WorkflowHandler) SaveReflection(c *fiber.Ctx) error {
	var req dto.SaveReflectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.workflowSvc.SaveReflection(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Reflection saved", resp)
}

func (h *WorkflowHandler) GetReflection(c *fiber.Ctx) error {
	sessionID, err := requiredQuery(c, "sessionId")
	if err != nil {
		return err
	}

	reflection, err := h.workflowSvc.GetReflection(c.UserContext(), sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", reflection)
}

func (h *WorkflowHandler) SaveInspection(c *fiber.Ctx) error {
	var req dto.SaveInspectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveInspection(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Inspection saved", nil)
}

func (h *WorkflowHandler) SaveSuggestion(c *fiber.Ctx) error {
	var req dto.SaveSuggestionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveSuggestion(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Suggestion saved", nil)
}

func (h *WorkflowHandler) SaveSolutionExploration(c *fiber.Ctx) error {
	var req dto.SaveSolutionExplorationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveSolutionExploration(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Solution exploration saved", nil)
}

func (h *WorkflowHandler) SaveAIStrengthTags(c *fiber.Ctx) error {
	var req dto.SaveAIStrengthTagsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveAIStrengthTags(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Strength tags saved", nil)
}

func (h *WorkflowHandler) SaveMagicMix(c *fiber.Ctx) error {
	var req dto.SaveMagicMixRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveMagicMix(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Magic mix saved", nil)
}

func (h *WorkflowHandler) SaveLetterContent(c *fiber.Ctx) error {
	var req dto.SaveLetterContentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveLetterContent(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Letter content saved", nil)
}

func (h *WorkflowHandler) SaveResponseLetter(c *fiber.Ctx) error {
	var req dto.SaveResponseLetterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.workflowSvc.SaveResponseLetter(c.UserContext(), req); err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Response letter saved", nil)
}

// @Summary Get response letter
// @Description Look up by letterId, or by sessionId when no letterId is given
// @Tags writing-step
// @Produce json
// @Param letterId query string false "Letter ID"
// @Param sessionId query string false "Session ID"
// @Success 200 {object} shared.Response{data=model.ResponseLetterData}
// @Router /api/v1/writing-step/get-response-letter [get]
func (h *WorkflowHandler) GetResponseLetter(c *fiber.Ctx) error {
	letter, err := h.workflowSvc.GetResponseLetter(c.UserContext(), c.Query("letterId"), c.Query("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", letter)
}

func (h *WorkflowHandler) SaveCompletion(c *fiber.Ctx) error {
	var req dto.SaveCompletionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.workflowSvc.SaveCompletion(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Completion saved", resp)
}

// ==================== REFLECTION STATE ====================

// @Summary Complete a reflection item
// @Description Run the emotion and blame checks together and mark the item complete
// @Tags writing-step
// @Accept json
// @Produce json
// @Param completeRequest body dto.CompleteReflectionRequest true "Reflection to complete"
// @Success 200 {object} shared.Response{data=dto.ReflectionItemResponse}
// @Router /api/v1/writing-step/complete-reflection [post]
func (h *WorkflowHandler) CompleteReflection(c *fiber.Ctx) error {
	var req dto.CompleteReflectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.workflowSvc.CompleteReflection(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Reflection completed", resp)
}

// @Summary Regenerate blame factors
// @Description Re-run only the blame check for one reflection item
// @Tags writing-step
// @Accept json
// @Produce json
// @Param regenerateRequest body dto.RegenerateFactorsRequest true "Reflection to re-check"
// @Success 200 {object} shared.Response{data=dto.ReflectionItemResponse}
// @Router /api/v1/writing-step/regenerate-factors [post]
func (h *WorkflowHandler) RegenerateFactors(c *fiber.Ctx) error {
	var req dto.RegenerateFactorsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.workflowSvc.RegenerateFactors(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Factors regenerated", resp)
}
