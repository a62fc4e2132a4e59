package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logger"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

func main() {
	var (
		filePath string
		kind     string
	)
	flag.StringVar(&filePath, "file", "", "Path to a product or category CSV file")
	flag.StringVar(&kind, "kind", "", "products or categories (detected from the header when empty)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: "storefront-importer",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	importKind := importer.Kind(kind)
	if importKind == "" {
		if importKind, err = importer.DetectKind(f); err != nil {
			log.Fatal().Err(err).Msg("detect file kind")
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			log.Fatal().Err(err).Msg("rewind file")
		}
	}

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, log), categoryrepo.NewPostgres(pool), log)

	start := time.Now()
	count, err := imp.Run(ctx, importKind)
	for _, rowErr := range multierr.Errors(err) {
		log.Error().Err(rowErr).Msg("import row")
	}
	log.Info().
		Str("kind", string(importKind)).
		Int("imported", count).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("import finished")
	if err != nil {
		os.Exit(1)
	}
}
