package main

import (
	"context"
	"fmt"

	"github.com/ontime-app/ontime/pkg/app"
	"github.com/urfave/cli/v2"
)

func arrivalsCommand() *cli.Command {
	return &cli.Command{
		Name:  "arrivals",
		Usage: "Show the arrival board of a station",
		Flags: []cli.Flag{
			cityFlag(),
			stationFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "list every prediction at the station without grouping by route",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "pin this route id using its first arrival",
			},
			&cli.StringFlag{
				Name:  "station-name",
				Usage: "display name stored with a pinned route",
			},
		},
		Action: func(c *cli.Context) error {
			return withApplication(c, func(ctx context.Context, application *app.Application) error {
				cityCode, stationID := c.String("city"), c.String("station")

				if c.Bool("all") {
					arrivals, err := application.Resolver.StationArrivals(ctx, cityCode, stationID)
					if err != nil {
						return err
					}
					return printResult(c, arrivals)
				}

				board, err := application.Resolver.BrowseArrivals(ctx, cityCode, stationID)
				if err != nil {
					return err
				}

				routeID := c.String("save")
				if routeID == "" {
					return printResult(c, boardRows(board))
				}

				for _, row := range board {
					if row.Route.ID != routeID {
						continue
					}

					candidate := row.Candidate(c.String("station-name"), cityCode, stationID)
					inserted, err := application.SavedRoutes.Add(ctx, candidate)
					if err != nil {
						return err
					}
					if !inserted {
						fmt.Printf("Route %s is already saved\n", routeID)
						return nil
					}
					fmt.Printf("Saved route %s (%s)\n", routeID, row.Route.Number)
					return nil
				}

				return fmt.Errorf("route %s does not pass through station %s", routeID, stationID)
			})
		},
	}
}
