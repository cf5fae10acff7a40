package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"acaradar-web/internal/bootstrap"
	"acaradar-web/internal/config"
	"acaradar-web/internal/server"
	"acaradar-web/internal/tracer"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	printBanner(cfg)

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func printBanner(cfg *config.Config) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgHiBlack)

	title.Println("AcaRadar Web")
	label.Print("  upstream  ")
	color.Green(cfg.Upstream.BaseURL)
	label.Print("  sessions  ")
	color.Green(cfg.Session.Store)
	label.Print("  listen    ")
	color.Green(":" + cfg.App.Port)
}
