package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/kr/pretty"
	"github.com/ontime-app/ontime/pkg/app"
	"github.com/ontime-app/ontime/pkg/config"
	"github.com/urfave/cli/v2"
)

func printResult(c *cli.Context, value any) error {
	if c.Bool("pretty") {
		_, err := pretty.Println(value)
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// withApplication loads the configuration, runs action and releases every
// connection afterwards.
func withApplication(c *cli.Context, action func(ctx context.Context, application *app.Application) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	application, err := app.New(c.Context, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	return action(c.Context, application)
}

func cityFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "city",
		Usage:    "TAGO city code, see the cities command",
		Required: true,
	}
}

func stationFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "station",
		Usage:    "station node id",
		Required: true,
	}
}
