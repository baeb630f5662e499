package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/internal/api"
	"whatsapp-autoreply/internal/config"
	"whatsapp-autoreply/internal/generation"
	"whatsapp-autoreply/internal/llm/openai"
	"whatsapp-autoreply/internal/messaging"
	"whatsapp-autoreply/internal/ws"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := activity.NewFeed()
	hub := ws.NewHub()
	feed.OnAppend(hub.NotifyActivity)
	feed.OnClear(hub.NotifyReset)
	go hub.Run(ctx)
	go feed.RunHeartbeat(ctx, cfg.ActivityHeartbeat)

	var generator *generation.Generator
	if err := cfg.GenerationError(); err != nil {
		log.Printf("Warning: %v", err)
	} else {
		generator = generation.NewGenerator(openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), cfg.OpenAIModel)
	}

	sender, err := messaging.NewSender(cfg)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	r := api.NewRouter(cfg, api.Deps{
		Generator: generator,
		Sender:    sender,
		Activity:  feed,
		Hub:       hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
