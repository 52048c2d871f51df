package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ontime-app/ontime/pkg/app"
	"github.com/ontime-app/ontime/pkg/resolver"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Search stations in a city",
		Subcommands: []*cli.Command{
			{
				Name:  "search",
				Usage: "search stations by name with their through routes",
				Flags: []cli.Flag{
					cityFlag(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "station name to search for",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return withApplication(c, func(ctx context.Context, application *app.Application) error {
						results, err := application.Resolver.Search(ctx, c.String("city"), c.String("name"))
						if err != nil {
							return err
						}
						return printResult(c, results)
					})
				},
			},
			{
				Name:  "interactive",
				Usage: "read search box input line by line from stdin and print every search state",
				Flags: []cli.Flag{
					cityFlag(),
				},
				Action: func(c *cli.Context) error {
					return withApplication(c, func(ctx context.Context, application *app.Application) error {
						session := application.Resolver.Session(c.String("city"))
						defer session.Close()

						var mu sync.Mutex
						var latest uint64
						session.OnUpdate(func(state resolver.SearchState) {
							mu.Lock()
							defer mu.Unlock()

							if state.Generation < latest || state.Typing {
								return
							}
							latest = state.Generation

							if state.Err != nil {
								log.Error().Err(state.Err).Str("query", state.Query).Msg("Search failed")
								return
							}
							if err := printResult(c, state); err != nil {
								log.Error().Err(err).Msg("Failed to print search state")
							}
						})

						fmt.Fprintln(os.Stderr, "Type a station name, one line per keystroke batch. Ctrl-D to finish.")

						scanner := bufio.NewScanner(os.Stdin)
						for scanner.Scan() {
							session.Input(scanner.Text())
						}

						return scanner.Err()
					})
				},
			},
		},
	}
}
