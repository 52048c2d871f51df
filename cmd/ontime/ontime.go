package main

import (
	"os"
	"time"

	"github.com/ontime-app/ontime/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("ONTIME_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("ONTIME_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "ontime",
		Description: "Saved bus route arrivals for the OnTime dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				EnvVars: []string{"ONTIME_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "print results as Go values instead of JSON",
			},
		},

		Commands: []*cli.Command{
			api.RegisterCLI(),
			citiesCommand(),
			stationsCommand(),
			arrivalsCommand(),
			savedCommand(),
			refresherCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
