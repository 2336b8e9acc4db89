package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/prinik8/AIcare/internal/adapters/auth/jwtauth"
	"github.com/prinik8/AIcare/internal/adapters/llm/ollama"
	"github.com/prinik8/AIcare/internal/config"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
	"github.com/prinik8/AIcare/internal/router"
	"github.com/prinik8/AIcare/internal/seed"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	owner := flag.String("owner", seed.DefaultOwnerID, "caregiver dueño de los dispositivos de demo")
	flag.Parse()

	// Con Ollama corriendo el seed también precarga notas de knowledge.
	var embedder llm.Embedder
	if client, err := ollama.New(ollama.Config{
		BaseURL:    cfg.OllamaBaseURL,
		Model:      cfg.OllamaModel,
		EmbedModel: cfg.OllamaEmbedModel,
		Timeout:    cfg.OllamaTimeout,
	}); err == nil {
		embedder = client
	}

	deps, err := router.BuildDeps(cfg, nil, embedder, log)
	if err != nil {
		log.Error("storage init failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = deps.Close() }()

	if err := seed.Run(context.Background(), deps, *owner); err != nil {
		log.Error("seed failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	log.Info("sample data loaded", logger.Fields{"owner": *owner})

	// Con JWT configurado emitimos un token de dev para el owner, así se
	// puede probar la API sin el header de debug.
	if cfg.JWTSecret != "" {
		token, err := jwtauth.Issue(cfg.JWTSecret, cfg.JWTIssuer, *owner, "", "caregiver", 24*time.Hour)
		if err != nil {
			log.Warn("dev token issue failed", logger.Fields{"error": err.Error()})
		} else {
			log.Info("dev token for owner", logger.Fields{"owner": *owner, "token": token})
		}
	}
}
