package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prinik8/AIcare/internal/adapters/auth/jwtauth"
	"github.com/prinik8/AIcare/internal/adapters/llm/ollama"
	"github.com/prinik8/AIcare/internal/config"
	"github.com/prinik8/AIcare/internal/ingest/mqttingest"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/auth"
	"github.com/prinik8/AIcare/internal/ports/llm"
	"github.com/prinik8/AIcare/internal/router"
	"github.com/prinik8/AIcare/internal/scheduler"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	var gen llm.Generator
	var embedder llm.Embedder
	if client, err := ollama.New(ollama.Config{
		BaseURL:    cfg.OllamaBaseURL,
		Model:      cfg.OllamaModel,
		EmbedModel: cfg.OllamaEmbedModel,
		Timeout:    cfg.OllamaTimeout,
	}); err != nil {
		log.Warn("ollama client not configured, agents will use fallback summaries", logger.Fields{"error": err.Error()})
	} else {
		gen = client
		embedder = client
	}

	deps, err := router.BuildDeps(cfg, gen, embedder, log)
	if err != nil {
		log.Error("storage init failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = deps.Close() }()

	var verifier auth.AuthVerifier
	if cfg.JWTSecret != "" {
		v, err := jwtauth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			log.Error("jwt verifier init failed", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
		verifier = v
	} else {
		log.Warn("JWT_SECRET not set, running in dev mode (X-Debug-Caregiver-ID)", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workers: dispatcher de reminders siempre, MQTT solo si hay broker.
	dispatcher := scheduler.NewDispatcher(deps.Reminders, deps.Events, log, cfg.ReminderInterval)
	go dispatcher.Run(ctx)

	if cfg.MQTTBroker != "" {
		listener, err := mqttingest.NewListener(mqttingest.Config{
			Broker:      cfg.MQTTBroker,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, deps.Vitals, deps.Safety, deps.Events, log)
		if err != nil {
			log.Error("mqtt listener init failed", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
		go func() {
			if err := listener.Start(ctx); err != nil {
				log.Error("mqtt listener stopped", logger.Fields{"error": err.Error()})
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddress,
		Handler:      router.NewRouter(deps, router.Options{AuthVerifier: verifier}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", logger.Fields{"app": cfg.AppName, "addr": cfg.HTTPAddress})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Fields{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", logger.Fields{"error": err.Error()})
	}
	log.Info("server stopped", nil)
}
