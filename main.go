package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"casino/cmd"
	"casino/config"
	"casino/database"
	"casino/domain/rng"
	"casino/events"
	"casino/infrastructure"
	"casino/server"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := config.Load(".env"); err != nil {
		log.Fatal("Config error: ", err)
	}

	if len(os.Args) > 1 {
		var err error
		switch os.Args[1] {
		case "migrate":
			err = handleMigrationCommand()
		case "events":
			err = handleEventsCommand()
		case "token":
			err = handleTokenCommand()
		case "simulate":
			err = handleSimulateCommand()
		default:
			err = fmt.Errorf("unknown command: %s", os.Args[1])
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: casino migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleEventsCommand logs every event on the casino stream until interrupted
func handleEventsCommand() error {
	if len(os.Args) < 3 || os.Args[2] != "tail" {
		return fmt.Errorf("usage: casino events tail")
	}

	cfg := config.Get()
	cfg.ConfigureLogging()
	if !cfg.EventsEnabled() {
		return fmt.Errorf("NATS_SERVERS must be set to tail events")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := infrastructure.NewNATSClient(cfg.NATSServers, "casino-tail")
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer client.Close()

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		return err
	}

	subscriber := infrastructure.NewNATSEventSubscriber(client, mapper)
	err := subscriber.SubscribeAll(func(_ context.Context, envelope *infrastructure.EventEnvelope, event events.Event) error {
		log.WithFields(log.Fields{
			"eventId":   envelope.EventID,
			"eventType": envelope.EventType,
			"timestamp": envelope.Timestamp.Format(time.RFC3339),
			"payload":   string(envelope.Payload),
		}).Info("Event received")
		return nil
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// handleTokenCommand prints a bearer token for local testing
func handleTokenCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: casino token <user-id> [ttl]")
	}

	userID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil || userID <= 0 {
		return fmt.Errorf("user id must be a positive integer, got %q", os.Args[2])
	}
	ttl := 24 * time.Hour
	if len(os.Args) > 3 {
		if ttl, err = time.ParseDuration(os.Args[3]); err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
	}

	token, err := server.NewAuthenticator(config.Get().JWTSecret).IssueToken(userID, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// handleSimulateCommand prints the observed odds of each game over many rounds
func handleSimulateCommand() error {
	rounds := 100000
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: casino simulate [rounds]")
		}
		rounds = n
	}

	report, err := cmd.Simulate(rounds, rng.New())
	if err != nil {
		return err
	}
	cmd.PrintReport(os.Stdout, report)
	return nil
}
