package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"concord/internal/config"
	"concord/internal/httpserver"
	"concord/internal/security"
	"concord/internal/store/postgres"
	"concord/internal/store/sqlite"
	"concord/internal/ws"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, stores, err := openStores(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Identity token validation
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)

	// Fan-out hub: initialized once here, torn down on shutdown, injected
	// into the router.
	hub := ws.NewHub()

	router := httpserver.NewRouter(cfg, stores, hub, tokenSvc)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting Concord server on %s\n", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	hub.Close()
}

// openStores opens the configured database backend, runs migrations, and
// returns the repository bundle.
func openStores(cfg *config.Config) (*sql.DB, httpserver.Stores, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, httpserver.Stores{}, err
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, httpserver.Stores{}, err
		}
		return db, httpserver.Stores{
			Profiles:      postgres.NewProfileRepo(db),
			Servers:       postgres.NewServerRepo(db),
			Channels:      postgres.NewChannelRepo(db),
			Members:       postgres.NewMemberRepo(db),
			Conversations: postgres.NewConversationRepo(db),
			Messages:      postgres.NewMessageRepo(db),
		}, nil
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, httpserver.Stores{}, err
		}
		if err := sqlite.Migrate(db); err != nil {
			return nil, httpserver.Stores{}, err
		}
		return db, httpserver.Stores{
			Profiles:      sqlite.NewProfileRepo(db),
			Servers:       sqlite.NewServerRepo(db),
			Channels:      sqlite.NewChannelRepo(db),
			Members:       sqlite.NewMemberRepo(db),
			Conversations: sqlite.NewConversationRepo(db),
			Messages:      sqlite.NewMessageRepo(db),
		}, nil
	}
}
