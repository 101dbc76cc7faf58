package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

type UserHandler struct {
	userSvc UserServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// @Summary Get user profile
// @Tags user
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} shared.Response{data=model.User}
// @Router /api/v1/users/{userId} [get]
func (h *UserHandler) GetUserProfile(c *fiber.Ctx) error {
	userID, err := requiredParam(c, "userId")
	if err != nil {
		return err
	}

	profile, err := h.userSvc.GetUserProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", profile)
}

// @Summary Update user profile
// @Description Update introduction, strength profile and challenge profile
// @Tags user
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param updateRequest body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} shared.Response{data=model.User}
// @Router /api/v1/users/{userId}/profile [put]
func (h *UserHandler) UpdateUserProfile(c *fiber.Ctx) error {
	userID, err := requiredParam(c, "userId")
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	profile, err := h.userSvc.UpdateUserProfile(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Profile updated", profile)
}

// @Summary Save onboarding answers
// @Description Create answers, or overwrite them when answersId is supplied
// @Tags answers
// @Accept json
// @Produce json
// @Param saveRequest body dto.SaveAnswersRequest true "Answers"
// @Success 200 {object} shared.Response{data=model.QuestionAnswers}
// @Router /api/v1/answers/save [post]
func (h *UserHandler) SaveAnswers(c *fiber.Ctx) error {
	var req dto.SaveAnswersRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	answers, err := h.userSvc.SaveAnswers(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Answers saved", answers)
}

func (h *UserHandler) GetAnswers(c *fiber.Ctx) error {
	answersID, err := requiredParam(c, "answersId")
	if err != nil {
		return err
	}

	answers, err := h.userSvc.GetAnswers(c.UserContext(), answersID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", answers)
}

func (h *UserHandler) ListAnswers(c *fiber.Ctx) error {
	userID, err := requiredQuery(c, "userId")
	if err != nil {
		return err
	}

	answers, err := h.userSvc.ListAnswers(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", answers)
}

// @Summary Save letter session
// @Description Create a session, or merge the supplied fields when sessionId is set
// @Tags sessions
// @Accept json
// @Produce json
// @Param saveRequest body dto.SaveSessionRequest true "Session"
// @Success 200 {object} shared.Response{data=model.LetterSession}
// @Router /api/v1/sessions/save [post]
func (h *UserHandler) SaveSession(c *fiber.Ctx) error {
	var req dto.SaveSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.userSvc.SaveSession(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Session saved", session)
}

func (h *UserHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := requiredParam(c, "sessionId")
	if err != nil {
		return err
	}

	session, err := h.userSvc.GetSession(c.UserContext(), sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

func (h *UserHandler) ListSessions(c *fiber.Ctx) error {
	userID, err := requiredQuery(c, "userId")
	if err != nil {
		return err
	}

	sessions, err := h.userSvc.ListSessions(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", sessions)
}

// @Summary Delete letter session
// @Description Delete a session and everything it owns
// @Tags sessions
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param userId query string false "Owner check"
// @Success 200 {object} shared.Response{data=repositories.CascadeReport}
// @Router /api/v1/sessions/{sessionId} [delete]
func (h *UserHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := requiredParam(c, "sessionId")
	if err != nil {
		return err
	}

	report, err := h.userSvc.DeleteSession(c.UserContext(), sessionID, c.Query("userId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Session deleted", report)
}
