package api

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ontime-app/ontime/pkg/app"
	"github.com/ontime-app/ontime/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Provides the dashboard web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides the configured address",
					},
					&cli.BoolFlag{
						Name:  "no-refresh",
						Usage: "do not run the saved route refresher alongside the server",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					if listen := c.String("listen"); listen != "" {
						cfg.API.ListenAddress = listen
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					application, err := app.New(ctx, cfg)
					if err != nil {
						return err
					}
					defer func() { _ = application.Close() }()

					if !c.Bool("no-refresh") {
						if err := application.Refresher.Start(ctx); err != nil {
							return err
						}
					}

					webApp := NewServer(application)

					go func() {
						<-ctx.Done()
						shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
						defer cancel()
						if err := webApp.ShutdownWithContext(shutdownCtx); err != nil {
							log.Error().Err(err).Msg("Failed to shut down web server")
						}
					}()

					log.Info().Str("listen", cfg.API.ListenAddress).Msg("Starting web API")

					return webApp.Listen(cfg.API.ListenAddress)
				},
			},
		},
	}
}
