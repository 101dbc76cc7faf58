package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

type AdminHandler struct {
	adminSvc     AdminServiceInterface
	migrationSvc MigrationServiceInterface
	exportSvc    ExportServiceInterface
}

func NewAdminHandler(adminSvc AdminServiceInterface, migrationSvc MigrationServiceInterface, exportSvc ExportServiceInterface) *AdminHandler {
	return &AdminHandler{
		adminSvc:     adminSvc,
		migrationSvc: migrationSvc,
		exportSvc:    exportSvc,
	}
}

// @Summary Dashboard statistics (Admin)
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Success 200 {object} shared.Response{data=dto.AdminStatsResponse}
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.adminSvc.GetStats(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}

// @Summary Get all users (Admin)
// @Description Page through users, newest first
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Nickname search"
// @Success 200 {object} shared.Response{data=dto.AdminUserListResponse}
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var req dto.AdminUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid query")
	}
	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	users, err := h.adminSvc.ListUsers(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Users retrieved successfully", users)
}

func (h *AdminHandler) GetUserActivity(c *fiber.Ctx) error {
	userID, err := requiredParam(c, "userId")
	if err != nil {
		return err
	}

	activity, err := h.adminSvc.GetUserActivity(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", activity)
}

// @Summary Delete user (Admin)
// @Description Delete a user and everything they own
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param deleteRequest body dto.DeleteUserRequest true "User to delete"
// @Success 200 {object} shared.Response{data=dto.DeleteUserResponse}
// @Router /api/v1/admin/user/delete [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	var req dto.DeleteUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.adminSvc.DeleteUser(c.UserContext(), req.UserID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "User deleted successfully", resp)
}

// @Summary Run migration (Admin)
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param name path string true "Migration name"
// @Param dryRun query bool false "Count without writing"
// @Success 200 {object} shared.Response{data=dto.MigrationResponse}
// @Router /api/v1/admin/migrations/{name} [post]
func (h *AdminHandler) RunMigration(c *fiber.Ctx) error {
	name, err := requiredParam(c, "name")
	if err != nil {
		return err
	}

	report, err := h.migrationSvc.Run(c.UserContext(), name, c.QueryBool("dryRun"))
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && report != nil {
			appErr.Data = report
		}
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Migration finished", report)
}

// @Summary Export user data (Admin)
// @Description Upload a JSON snapshot to object storage and return a presigned URL
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param exportRequest body dto.ExportRequest false "Limit to one user"
// @Success 200 {object} shared.Response{data=dto.ExportResponse}
// @Router /api/v1/admin/export [post]
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	var req dto.ExportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request body")
		}
	}

	resp, err := h.exportSvc.Export(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Export uploaded", resp)
}
