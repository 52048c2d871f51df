package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ontime-app/ontime/pkg/app"
	"github.com/ontime-app/ontime/pkg/config"
	"github.com/urfave/cli/v2"
)

func refresherCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresher",
		Usage: "Keep saved route arrivals fresh",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the refresher until interrupted",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					application, err := app.New(ctx, cfg)
					if err != nil {
						return err
					}
					defer func() { _ = application.Close() }()

					// SIGHUP asks for a refresh now, the way a screen focus does
					hangup := make(chan os.Signal, 1)
					signal.Notify(hangup, syscall.SIGHUP)
					defer signal.Stop(hangup)

					if err := application.Refresher.Start(ctx); err != nil {
						return err
					}

					for {
						select {
						case <-ctx.Done():
							return nil
						case <-hangup:
							application.Refresher.Trigger()
						}
					}
				},
			},
		},
	}
}
