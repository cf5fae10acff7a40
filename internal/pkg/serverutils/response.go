package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// RenderView hands the locals of a page to the presentation layer. Templates are
// rendered elsewhere; the relay emits {view, locals}.
func RenderView(ctx *fiber.Ctx, view string, locals fiber.Map) error {
	ctx.Set(fiber.HeaderCacheControl, "private, no-store")
	return ctx.JSON(fiber.Map{
		"view":   view,
		"locals": locals,
	})
}
