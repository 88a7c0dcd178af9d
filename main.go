package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/storage"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	server, cleanup, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	err = run(server, cfg.AppPort, quit)
	cleanup()
	if err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// run serves until a signal arrives on quit, then shuts the server down.
// A listen failure is returned instead of exiting so callers can release
// resources first.
func run(server *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", addr)
		listenErr <- server.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("error during Fiber shutdown: %w", err)
	}
	return nil
}

// NewServer opens the database, the upload folder and, when configured, the
// RabbitMQ connection, and builds the app on top of them. cleanup releases
// whatever was opened.
func NewServer(cfg *config.Config) (*fiber.App, func(), error) {
	store, err := repositories.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{store.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("Error during cleanup: %v", err)
			}
		}
	}

	images, err := storage.NewLocalImageStore(cfg.UploadDir, app.UploadsPrefix)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	deps := app.Dependencies{Config: cfg, Store: store, Images: images}

	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:       cfg.RabbitMQURL,
			Exchanges: []string{services.EventsExchange},
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, mqClient.Close)
		deps.Publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, domain events are disabled")
	}

	server, err := app.New(deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return server, cleanup, nil
}
