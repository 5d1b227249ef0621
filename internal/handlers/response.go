package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/assistant"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/chat"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/marketplace"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/tasks"
)

var validate = validator.New()

// errHandled tells a caller that the response was already written.
var errHandled = errors.New("response written")

func success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func validationFail(c *fiber.Ctx, errs []string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

// FormatValidationErrors flattens validator errors into readable lines.
func FormatValidationErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		line := fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		if e.Param() != "" {
			line = fmt.Sprintf("%s (value: %s)", line, e.Param())
		}
		out = append(out, line)
	}
	return out
}

// parseAndValidate fills req from the body and runs its validate tags.
// On failure the response is already written and errHandled is returned.
func parseAndValidate(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		_ = fail(c, fiber.StatusBadRequest, "Invalid body")
		return errHandled
	}
	if err := validate.Struct(req); err != nil {
		_ = validationFail(c, FormatValidationErrors(err))
		return errHandled
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, tasks.ErrForbidden),
		errors.Is(err, marketplace.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, marketplace.ErrAlreadyApplied):
		return fiber.StatusConflict
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, tasks.ErrInvalidInput),
		errors.Is(err, tasks.ErrInvalidTransition),
		errors.Is(err, marketplace.ErrInvalidInput),
		errors.Is(err, marketplace.ErrInvalidStatus),
		errors.Is(err, marketplace.ErrJobClosed),
		errors.Is(err, assistant.ErrEmptyPrompt):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// serviceError maps a service error onto the response. Unknown errors are
// logged and hidden behind a generic message.
func serviceError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	status := statusFor(err)
	switch status {
	case fiber.StatusInternalServerError:
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
		return fail(c, status, "Internal server error")
	case fiber.StatusNotFound:
		return fail(c, status, "Not found")
	}
	return fail(c, status, err.Error())
}
