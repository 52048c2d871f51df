package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/ontime-app/ontime/pkg/api/routes"
	"github.com/ontime-app/ontime/pkg/app"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer builds the HTTP API the dashboard screens talk to.
func NewServer(application *app.Application) *fiber.App {
	webApp := fiber.New(fiber.Config{
		AppName:               "ontime",
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(application.Metrics.Registry, promhttp.HandlerOpts{})))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.CitiesRouter(group.Group("/cities"), application.Resolver, application.SavedRoutes)
	routes.SavedRoutesRouter(group.Group("/saved"), application.SavedRoutes, application.Refresher)
	routes.CacheRouter(group.Group("/cache"), application.Cache)

	return webApp
}
