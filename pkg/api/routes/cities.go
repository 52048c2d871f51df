package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ontime-app/ontime/pkg/resolver"
	"github.com/ontime-app/ontime/pkg/savedroutes"
)

func CitiesRouter(router fiber.Router, r *resolver.Resolver, saved *savedroutes.Store) {
	router.Get("/", func(c *fiber.Ctx) error {
		cities, err := r.FilterCities(c.UserContext(), c.Query("name"))
		if err != nil {
			return sendFailure(c, err)
		}
		return c.JSON(cities)
	})

	router.Get("/:city/stations", func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return sendError(c, fiber.StatusBadRequest, "A station name must be given")
		}

		results, err := r.Search(c.UserContext(), c.Params("city"), name)
		if err != nil {
			return sendFailure(c, err)
		}
		return c.JSON(results)
	})

	router.Get("/:city/stations/:node/routes", func(c *fiber.Ctx) error {
		routes, err := r.Routes(c.UserContext(), c.Params("city"), c.Params("node"))
		if err != nil {
			return sendFailure(c, err)
		}
		return c.JSON(routes)
	})

	router.Get("/:city/stations/:node/arrivals", func(c *fiber.Ctx) error {
		if c.QueryBool("all") {
			arrivals, err := r.StationArrivals(c.UserContext(), c.Params("city"), c.Params("node"))
			if err != nil {
				return sendFailure(c, err)
			}
			return c.JSON(fiber.Map{
				"arrivals": arrivals.Items,
				"noData":   arrivals.NoData,
			})
		}

		board, err := r.BrowseArrivals(c.UserContext(), c.Params("city"), c.Params("node"))
		if err != nil {
			return sendFailure(c, err)
		}
		return c.JSON(board)
	})

	// pins a route using its current first arrival as the initial prediction
	router.Post("/:city/stations/:node/routes/:route/save", func(c *fiber.Ctx) error {
		cityCode, stationID, routeID := c.Params("city"), c.Params("node"), c.Params("route")

		board, err := r.BrowseArrivals(c.UserContext(), cityCode, stationID)
		if err != nil {
			return sendFailure(c, err)
		}

		for _, row := range board {
			if row.Route.ID != routeID {
				continue
			}

			candidate := row.Candidate(c.Query("stationName"), cityCode, stationID)
			inserted, err := saved.Add(c.UserContext(), candidate)
			if err != nil {
				return sendFailure(c, err)
			}
			return sendAdded(c, candidate, inserted)
		}

		return sendError(c, fiber.StatusNotFound, "Route does not pass through this station")
	})
}
