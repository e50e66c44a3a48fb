package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"printer-scheduler/internal/app"
	"printer-scheduler/internal/config"
	"printer-scheduler/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var store app.Store
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, keeping reservations in memory")
		store = app.NewMemoryStore(nil)
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to db: %v", err)
		}
		defer pool.Close()

		if err := app.Migrate(pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		store = app.NewPGStore(pool)
	}

	board := app.NewBoard(store, nil)
	go func() {
		if err := board.Run(ctx, cfg.ResyncSchedule); err != nil {
			log.Printf("board: %v", err)
		}
	}()

	calendarImport := app.NewCalendarImport(cfg.Google.ClientID, cfg.Google.ClientSecret,
		cfg.Google.RedirectURL, cfg.Google.CalendarID)
	if calendarImport == nil {
		log.Println("Google Calendar not configured, calendar import disabled")
	}

	appInstance := &app.App{
		Board:    board,
		Rules:    cfg.Rules(),
		Opening:  cfg.Opening,
		Auth:     app.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.StaticTokens),
		Calendar: calendarImport,
	}

	router := gin.Default()
	appInstance.Routes(router)

	if err := server.Run(ctx, router, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
