package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nivenlake/journalmate/backend/internal/config"
	"github.com/nivenlake/journalmate/backend/internal/handler"
	"github.com/nivenlake/journalmate/backend/internal/service/ai"
	"github.com/nivenlake/journalmate/backend/internal/service/journal"
	"github.com/nivenlake/journalmate/backend/internal/service/sentiment"
	"github.com/nivenlake/journalmate/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize transcript store
	transcriptStore := store.NewTranscriptStore(cfg.Storage.TranscriptFile)

	// Initialize AI conversation generator
	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}
	log.Println("AI service initialized successfully")

	// Initialize sentiment classifier over the same chat model
	sentimentSvc, err := sentiment.NewService(ctx, aiService.GetChatModel())
	if err != nil {
		log.Fatalf("failed to initialize sentiment classifier: %v", err)
	}
	log.Println("Sentiment classifier initialized successfully")

	journalSvc := journal.NewService(transcriptStore, aiService, sentimentSvc)

	router := handler.NewRouter(cfg.Server.CORSOrigin, journalSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Journalmate backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
