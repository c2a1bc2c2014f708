package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/api/console"
	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/search"
	"github.com/i474232898/weather-lookup/internal/store"
)

var configFile string

// errLookupFailed is returned after the failure has already been printed.
var errLookupFailed = errors.New("lookup failed")

func main() {
	rootCmd := &cobra.Command{
		Use:           "weather-lookup",
		Short:         "Current weather by city name",
		Long:          "Resolve a city, its timezone and its current weather, from the console or over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(lookupCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errLookupFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <city>",
		Short: "Print the current weather for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			pipeline, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
			defer cancel()

			snapshot, err := pipeline.Run(ctx, args[0])
			if err != nil {
				_ = console.RenderFailure(cmd.ErrOrStderr(), err)
				return errLookupFailed
			}
			return console.Render(cmd.OutOrStdout(), snapshot)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the watch-city scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			pipeline, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			// Latest-wins searches keyed by session.
			sessions := store.NewSessionStore(cfg.SessionMaxAge)
			searcher := search.New(pipeline, sessions, cfg.RunTimeout)

			sched := scheduler.New(cfg.WatchCities, cfg.RefreshInterval, searcher, sessions)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := fiber.New(fiber.Config{
				AppName:               "weather-lookup",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          cfg.RunTimeout + 5*time.Second,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					code := fiber.StatusInternalServerError
					var fe *fiber.Error
					if errors.As(err, &fe) {
						code = fe.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			app.Use(logger.New())
			app.Use(recover.New())

			app.Get("/health", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"status":  "ok",
					"service": "weather-lookup",
				})
			})

			httpapi.RegisterRoutes(app, pipeline, searcher, sessions)

			go func() {
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Printf("fiber server stopped: %v", err)
				}
			}()
			log.Printf("INFO: weather-lookup listening on :%s (provider=%s, geocoder=%s)", cfg.Port, cfg.WeatherProvider, cfg.Geocoder)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()
			log.Println("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Printf("error during shutdown: %v", err)
			}
			searcher.Wait()
			return nil
		},
	}
}
