package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/veridoc/veridoc/pkg/cmd"
	"github.com/veridoc/veridoc/pkg/eventbus"
	"github.com/veridoc/veridoc/pkg/events"
	"github.com/veridoc/veridoc/pkg/log"
	"github.com/veridoc/veridoc/pkg/otelhelper"
	"github.com/veridoc/veridoc/pkg/reviewer"
	"github.com/veridoc/veridoc/pkg/workflow"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "veridoc-api",
		Usage:                 "Manage controlled documents and their approval workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Storage URL (file://path or redis://host:port)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "review-window",
				Usage:   "How far ahead the review scheduler flags due documents (e.g. 720h)",
				Value:   "720h",
				Sources: cli.EnvVars("REVIEW_WINDOW"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export",
				Sources: cli.EnvVars("TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Veridoc API")

			persistence := cmd.NewPersistence(command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if err := consumeEvents(ctx, eventBus, log.WithModule("events")); err != nil {
				return err
			}

			engineOpts := []workflow.Option{workflow.WithEventBus(eventBus)}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "veridoc-api")
				if err != nil {
					logger.ErrorContext(ctx, "Failed to initialize tracer", "error", err)
				} else {
					engineOpts = append(engineOpts, workflow.WithTracer(tracer))
				}
			}

			engine := workflow.NewEngine(persistence, log.WithModule("engine"), engineOpts...)

			window, err := time.ParseDuration(command.String("review-window"))
			if err != nil {
				return err
			}

			reviewScheduler := reviewer.NewReviewer(persistence, eventBus, log.WithModule("reviewer"), window, "")
			if err := reviewScheduler.Start(ctx); err != nil {
				return err
			}
			defer reviewScheduler.Stop()

			api := NewAPI(logger, persistence, engine, eventBus)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

// consumeEvents subscribes a consumer that logs every document event the
// process publishes, giving operators a trail of bus traffic without an
// external consumer.
func consumeEvents(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	eventTypes := []events.EventType{
		events.DocumentCreatedEvent,
		events.ApprovalRecordedEvent,
		events.WorkflowCompletedEvent,
		events.LifecycleChangedEvent,
		events.ReviewDueEvent,
	}

	for _, eventType := range eventTypes {
		bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "Event received", "event_type", eventType, "event", event)

			return nil
		})
	}

	return bus.Subscribe(ctx)
}
