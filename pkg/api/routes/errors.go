package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ontime-app/ontime/pkg/resolver"
	"github.com/ontime-app/ontime/pkg/savedroutes"
	"github.com/ontime-app/ontime/pkg/tago"
)

func sendError(c *fiber.Ctx, status int, message string) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error": message,
	})
}

// sendFailure maps a component error onto a response status.
func sendFailure(c *fiber.Ctx, err error) error {
	var validationError *savedroutes.ValidationError
	var gatewayError *tago.GatewayError

	switch {
	case errors.As(err, &validationError):
		return sendError(c, fiber.StatusBadRequest, validationError.Error())
	case errors.Is(err, resolver.ErrNoCity):
		return sendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &gatewayError):
		if gatewayError.Kind == tago.KindNetwork {
			return sendError(c, fiber.StatusGatewayTimeout, "Transit API unreachable")
		}
		return sendError(c, fiber.StatusBadGateway, gatewayError.Error())
	default:
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
