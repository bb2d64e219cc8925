package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"recytoken-up-go/internal/common"
	"recytoken-up-go/internal/config"
	"recytoken-up-go/internal/database"
	"recytoken-up-go/internal/seed"
	"recytoken-up-go/internal/store"

	"go.uber.org/zap"
)

func printCollections(ctx context.Context, dbService *database.Service) {
	infos, err := dbService.Collections(ctx)
	if err != nil {
		zap.L().Error("Failed to list collections", zap.Error(err))
		return
	}
	common.PrintSection("Stored collections", common.DefaultWidth)
	for i, info := range infos {
		fmt.Printf("%s %-14s %8d bytes  updated %s\n",
			common.BoxPrefix(i == len(infos)-1),
			info.Name,
			info.Bytes,
			info.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	resetFlag := flag.Bool("reset", false, "Overwrite stored collections with the seed data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	backend, dbService, err := common.InitializeStorage(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer backend.Close()

	snapshot, err := seed.Load(cfg.Seed.File, time.Now())
	if err != nil {
		zap.L().Fatal("Failed to load seed data", zap.Error(err))
	}

	entityStore := store.NewEntityStore(backend, nil)
	if err := entityStore.Load(ctx, snapshot); err != nil {
		zap.L().Fatal("Failed to load entity store", zap.Error(err))
	}

	if *resetFlag {
		zap.L().Info("Resetting stored collections to seed data")
		if err := entityStore.Replace(ctx, snapshot); err != nil {
			zap.L().Fatal("Failed to reset collections", zap.Error(err))
		}
	}

	common.PrintHeader("RECYTOKEN-UP STORAGE", common.DefaultWidth)
	current := entityStore.Snapshot()
	fmt.Printf("Backend:      %s\n", cfg.Storage.Backend)
	fmt.Printf("Materials:    %d\n", len(current.Materials))
	fmt.Printf("Centers:      %d\n", len(current.Centers))
	fmt.Printf("Transactions: %d\n", len(current.Transactions))
	fmt.Printf("Invoices:     %d\n", len(current.Invoices))

	if dbService != nil {
		printCollections(ctx, dbService)
	}

	common.PrintFooter("Setup complete", common.DefaultWidth)
}
