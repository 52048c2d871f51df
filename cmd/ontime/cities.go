package main

import (
	"context"

	"github.com/ontime-app/ontime/pkg/app"
	"github.com/urfave/cli/v2"
)

func citiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "cities",
		Usage: "List the cities covered by the transit API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "only list cities whose name contains this text",
			},
		},
		Action: func(c *cli.Context) error {
			return withApplication(c, func(ctx context.Context, application *app.Application) error {
				cities, err := application.Resolver.FilterCities(ctx, c.String("name"))
				if err != nil {
					return err
				}
				return printResult(c, cities)
			})
		},
	}
}
