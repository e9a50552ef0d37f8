package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talentflow/internal/models"
)

const actorHeader = "X-Actor"

// statusFor maps the domain sentinels to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, models.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrTransitionInFlight), errors.Is(err, models.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrStorageFailure), errors.Is(err, models.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	body := fiber.Map{
		"error": err.Error(),
		"code":  code,
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Errors
	}
	if models.IsRetryable(err) {
		body["retryable"] = true
	}
	return c.Status(code).JSON(body)
}

// ErrorHandler is the Fiber error handler; anything a handler returns
// instead of writing a response ends up here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

func badRequest(field, message string) error {
	return models.NewValidationError(field, message)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest("body", "invalid JSON payload")
	}
	return nil
}

func pageFromQuery(c *fiber.Ctx) (models.Page, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return models.Page{}, err
	}
	size, err := queryInt(c, "pageSize", models.DefaultPageSize)
	if err != nil {
		return models.Page{}, err
	}
	return models.Page{Page: page, PageSize: size}.Normalize(), nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(key, "must be an integer")
	}
	return v, nil
}

func stageFromQuery(c *fiber.Ctx) (models.Stage, error) {
	raw := c.Query("stage")
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return models.ParseStage(raw)
}
