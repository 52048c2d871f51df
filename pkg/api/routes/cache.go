package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ontime-app/ontime/pkg/cachedresults"
)

func CacheRouter(router fiber.Router, results *cachedresults.Cache) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(results.Stats())
	})
}
