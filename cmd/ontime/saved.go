package main

import (
	"context"
	"fmt"

	"github.com/ontime-app/ontime/pkg/app"
	"github.com/urfave/cli/v2"
)

func savedCommand() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage the routes pinned to the dashboard",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list saved routes with their last prediction",
				Action: func(c *cli.Context) error {
					return withApplication(c, func(ctx context.Context, application *app.Application) error {
						routes, err := application.SavedRoutes.List(ctx)
						if err != nil {
							return err
						}

						return printResult(c, savedRows(routes))
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "remove a saved route",
				ArgsUsage: "<routeid>",
				Action: func(c *cli.Context) error {
					routeID := c.Args().First()
					if routeID == "" {
						return fmt.Errorf("a route id must be given")
					}

					return withApplication(c, func(ctx context.Context, application *app.Application) error {
						return application.SavedRoutes.Remove(ctx, routeID)
					})
				},
			},
			{
				Name:  "clear",
				Usage: "remove every saved route",
				Action: func(c *cli.Context) error {
					return withApplication(c, func(ctx context.Context, application *app.Application) error {
						return application.SavedRoutes.Clear(ctx)
					})
				},
			},
			{
				Name:  "refresh",
				Usage: "refresh every saved route once",
				Action: func(c *cli.Context) error {
					return withApplication(c, func(ctx context.Context, application *app.Application) error {
						report := application.Refresher.RunCycle(ctx)
						if report.Err != nil {
							return report.Err
						}
						return printResult(c, report)
					})
				},
			},
		},
	}
}
