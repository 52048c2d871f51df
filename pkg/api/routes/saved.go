package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ontime-app/ontime/pkg/refresher"
	"github.com/ontime-app/ontime/pkg/savedroutes"
	"github.com/ontime-app/ontime/pkg/transit"
)

func SavedRoutesRouter(router fiber.Router, saved *savedroutes.Store, r *refresher.Refresher) {
	router.Get("/", func(c *fiber.Ctx) error {
		routes, err := saved.List(c.UserContext())
		if err != nil {
			return sendFailure(c, err)
		}
		return c.JSON(routes)
	})

	router.Post("/", func(c *fiber.Ctx) error {
		var candidate transit.SavedRoute
		if err := c.BodyParser(&candidate); err != nil {
			return sendError(c, fiber.StatusBadRequest, "Request body must be a saved route")
		}

		inserted, err := saved.Add(c.UserContext(), candidate)
		if err != nil {
			return sendFailure(c, err)
		}
		return sendAdded(c, candidate, inserted)
	})

	router.Delete("/", func(c *fiber.Ctx) error {
		if err := saved.Clear(c.UserContext()); err != nil {
			return sendFailure(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	router.Delete("/:routeid", func(c *fiber.Ctx) error {
		if err := saved.Remove(c.UserContext(), c.Params("routeid")); err != nil {
			return sendFailure(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	router.Get("/refresh", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"state":      r.State(),
			"lastReport": r.LastReport(),
		})
	})

	router.Post("/refresh", func(c *fiber.Ctx) error {
		if c.QueryBool("wait") {
			report := r.RunCycle(c.UserContext())
			return c.JSON(report)
		}

		r.Trigger()
		return c.SendStatus(fiber.StatusAccepted)
	})
}

func sendAdded(c *fiber.Ctx, candidate transit.SavedRoute, inserted bool) error {
	if inserted {
		c.Status(fiber.StatusCreated)
	}
	return c.JSON(fiber.Map{
		"inserted": inserted,
		"route":    candidate,
	})
}
