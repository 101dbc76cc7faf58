package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

// bind parses the JSON body into req and validates it. req must be a pointer.
func bind(c *fiber.Ctx, req dto.Validator) error {
	if err := c.BodyParser(req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		appErr := shared.NewBadRequestError(err, "Validation failed")
		appErr.Data = dto.FormatValidationErrors(err)
		return appErr
	}
	return nil
}

func requiredParam(c *fiber.Ctx, name string) (string, error) {
	v := strings.TrimSpace(c.Params(name))
	if v == "" {
		return "", shared.NewBadRequestError(nil, name+" is required")
	}
	return v, nil
}

func requiredQuery(c *fiber.Ctx, name string) (string, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return "", shared.NewBadRequestError(nil, name+" is required")
	}
	return v, nil
}
