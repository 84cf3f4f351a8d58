package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"intelliview-be/internal/bootstrap"
	"intelliview-be/internal/config"
	"intelliview-be/internal/server"
	"intelliview-be/internal/tracer"
	"intelliview-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(tracer.Options{
		Enabled:     cfg.App.OtelEnabled,
		Endpoint:    cfg.App.OtelEndpoint,
		Environment: cfg.App.Environment,
	})
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	// the consumer subscribes before the first interview can finish
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Report consumer failed to start: %v", err)
	}
	go container.WebSocketHub.Run(ctx)

	if container.NotificationService != nil {
		if err := container.NotificationService.Start(ctx); err != nil {
			log.Printf("[WARN] HR notifications disabled: %v", err)
		}
	}
	if container.MonitorService != nil {
		if err := container.MonitorService.Start(ctx); err != nil {
			log.Printf("[WARN] Live monitor feed disabled: %v", err)
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
