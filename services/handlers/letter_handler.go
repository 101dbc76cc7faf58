package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

type LetterHandler struct {
	letterSvc LetterServiceInterface
}

func NewLetterHandler(letterSvc LetterServiceInterface) *LetterHandler {
	return &LetterHandler{letterSvc: letterSvc}
}

// @Summary Generate a letter
// @Description Analyze strengths in the answers and generate a character letter
// @Tags letters
// @Accept json
// @Produce json
// @Param generateRequest body dto.GenerateLetterRequest true "Answers to write from"
// @Success 201 {object} shared.Response{data=dto.GenerateLetterResponse}
// @Router /api/v1/letters/generate [post]
func (h *LetterHandler) GenerateLetter(c *fiber.Ctx) error {
	var req dto.GenerateLetterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.letterSvc.GenerateLetter(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Letter generated", resp)
}

// @Summary Save a letter
// @Description Save letter content with its four stage session ids
// @Tags letters
// @Accept json
// @Produce json
// @Param saveRequest body dto.SaveLetterRequest true "Letter"
// @Success 201 {object} shared.Response{data=model.Letter}
// @Router /api/v1/letters/save [post]
func (h *LetterHandler) SaveLetter(c *fiber.Ctx) error {
	var req dto.SaveLetterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	letter, err := h.letterSvc.SaveLetter(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Letter saved", letter)
}

func (h *LetterHandler) GetLetter(c *fiber.Ctx) error {
	letterID, err := requiredParam(c, "letterId")
	if err != nil {
		return err
	}

	letter, err := h.letterSvc.GetLetter(c.UserContext(), letterID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", letter)
}

func (h *LetterHandler) GetLetterByAnswers(c *fiber.Ctx) error {
	answersID, err := requiredParam(c, "answersId")
	if err != nil {
		return err
	}

	letter, err := h.letterSvc.GetLetterByAnswers(c.UserContext(), answersID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", letter)
}

func (h *LetterHandler) ListLetters(c *fiber.Ctx) error {
	userID, err := requiredQuery(c, "userId")
	if err != nil {
		return err
	}

	letters, err := h.letterSvc.ListLetters(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", letters)
}
