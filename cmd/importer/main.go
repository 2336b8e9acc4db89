package main

import (
	"context"
	"flag"
	"os"

	"github.com/prinik8/AIcare/internal/config"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/router"
	"github.com/prinik8/AIcare/internal/seed"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	dir := flag.String("dir", cfg.DataDir, "directorio con los CSV a importar")
	owner := flag.String("owner", seed.DefaultOwnerID, "caregiver dueño de los dispositivos de demo")
	flag.Parse()

	deps, err := router.BuildDeps(cfg, nil, nil, log)
	if err != nil {
		log.Error("storage init failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = deps.Close() }()

	ctx := context.Background()

	// Los CSV traen lecturas de dispositivos que todavía no existen;
	// el seed los registra primero.
	if err := seed.Run(ctx, deps, *owner); err != nil {
		log.Error("seed failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	files, err := deps.Importer.ImportDir(ctx, *dir)
	if err != nil {
		log.Error("import failed", logger.Fields{"dir": *dir, "error": err.Error()})
		os.Exit(1)
	}

	for name, counts := range files {
		log.Info("file imported", logger.Fields{
			"file":     name,
			"imported": counts.Imported,
			"skipped":  counts.Skipped,
			"errors":   counts.Errors,
		})
	}
}
