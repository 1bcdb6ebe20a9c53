package helper

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type Pagination[T any] struct {
	Page  int  `json:"page"`
	Size  int  `json:"size"`
	Total *int `json:"total"`
	Items []T  `json:"items"`
}

func GetPagination[T any](c fiber.Ctx) Pagination[T] {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	size, _ := strconv.Atoi(c.Query("size", "50"))
	if size < 1 {
		size = 1
	} else if size > 100 {
		size = 100
	}

	return Pagination[T]{
		Page:  page,
		Size:  size,
		Total: nil,
		Items: []T{},
	}
}

func (p Pagination[T]) Offset() int {
	return (p.Page - 1) * p.Size
}

var validate = validator.New()

func ValidateInput(input interface{}) error {
	return validate.Struct(input)
}

// Error writes the {"error": msg} body used by every failing endpoint.
func Error(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// ErrorHandler turns errors returned by handlers into JSON responses.
// Fiber errors keep their code and message, anything else is a 500.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, fe.Code, fe.Message)
	}

	slog.Error("Unhandled request error",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return Error(c, fiber.StatusInternalServerError, "internal server error")
}
