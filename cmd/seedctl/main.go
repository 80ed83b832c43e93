// Command seedctl populates the content store: sample documents for a fresh
// install, or a real Discourse category pull. The API server only ever reads
// what this tool writes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/kailas-cloud/virtualta/internal/config"
	"github.com/kailas-cloud/virtualta/internal/ingest/discourse"
	logpkg "github.com/kailas-cloud/virtualta/internal/logger"
	"github.com/kailas-cloud/virtualta/internal/repository/content"
	"github.com/kailas-cloud/virtualta/internal/usecase/ingest"
)

func main() {
	var (
		seedSamples = flag.Bool("samples", false, "seed the built-in sample documents")
		forumURL    = flag.String("forum", "", "Discourse base URL to scrape")
		categories  = flag.String("categories", "", "comma-separated Discourse category IDs")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if !*seedSamples && *forumURL == "" {
		logger.Fatal("Nothing to do: pass -samples and/or -forum with -categories")
	}

	store, err := content.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open content store", zap.Error(err))
	}
	defer store.Close()

	saver := ingest.New(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *seedSamples {
		if err := discourse.SeedSampleData(ctx, saver); err != nil {
			logger.Fatal("Sample seeding failed", zap.Error(err))
		}
		logger.Info("Sample data seeded")
	}

	if *forumURL != "" {
		if *categories == "" {
			logger.Fatal("-forum requires -categories")
		}
		client := discourse.NewClient(*forumURL, logger)
		for _, cat := range strings.Split(*categories, ",") {
			cat = strings.TrimSpace(cat)
			if cat == "" {
				continue
			}
			if err := client.ScrapeCategory(ctx, saver, cat); err != nil {
				logger.Error("Category scrape failed", zap.String("category", cat), zap.Error(err))
			}
		}
	}

	stats, err := store.Stats(ctx, nil)
	if err != nil {
		logger.Fatal("Stats query failed", zap.Error(err))
	}
	logger.Info("Seeding completed",
		zap.Int("lessons", stats.Lessons),
		zap.Int("posts", stats.Posts),
	)
}
