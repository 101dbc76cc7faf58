package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

// AIHandler serves the classification and generation helpers. The checks
// always answer 200; model failures surface as fallback results.
type AIHandler struct {
	aiSvc AIServiceInterface
}

func NewAIHandler(aiSvc AIServiceInterface) *AIHandler {
	return &AIHandler{aiSvc: aiSvc}
}

// @Summary Check emotion
// @Description Classify whether the reflection names an emotion
// @Tags ai
// @Accept json
// @Produce json
// @Param checkRequest body dto.CheckRequest true "Reflection content"
// @Success 200 {object} shared.Response{data=model.EmotionCheckResult}
// @Router /api/v1/ai/check-emotion [post]
func (h *AIHandler) CheckEmotion(c *fiber.Ctx) error {
	var req dto.CheckRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.aiSvc.CheckEmotion(c.UserContext(), req))
}

// @Summary Check blame pattern
// @Description Classify whether the reflection blames the writer
// @Tags ai
// @Accept json
// @Produce json
// @Param checkRequest body dto.CheckRequest true "Reflection content"
// @Success 200 {object} shared.Response{data=model.BlameCheckResult}
// @Router /api/v1/ai/check-blame-pattern [post]
func (h *AIHandler) CheckBlame(c *fiber.Ctx) error {
	var req dto.CheckRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.aiSvc.CheckBlame(c.UserContext(), req))
}

func (h *AIHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.aiSvc.Summarize(c.UserContext(), req))
}

func (h *AIHandler) GenerateReflectionHints(c *fiber.Ctx) error {
	var req dto.ReflectionHintsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.aiSvc.GenerateReflectionHints(c.UserContext(), req))
}

func (h *AIHandler) GenerateSolutions(c *fiber.Ctx) error {
	var req dto.GenerateSolutionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.aiSvc.GenerateSolutions(c.UserContext(), req))
}

func (h *AIHandler) GenerateResponseLetter(c *fiber.Ctx) error {
	var req dto.GenerateResponseLetterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.aiSvc.GenerateResponseLetter(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
