package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"recytoken-up-go/internal/common"
	"recytoken-up-go/internal/config"
	"recytoken-up-go/internal/models"

	"go.uber.org/zap"
)

func backupFileName(now time.Time) string {
	return fmt.Sprintf("recytoken-up_backup_%s.json", now.Format("2006-01-02"))
}

func runExport(services *common.Services, path string) {
	backup := services.Console.Export()
	if path == "" {
		path = backupFileName(backup.Timestamp)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		zap.L().Fatal("Failed to encode backup", zap.Error(err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		zap.L().Fatal("Failed to write backup", zap.String("path", path), zap.Error(err))
	}

	zap.L().Info("Backup exported",
		zap.String("path", path),
		zap.Int("materials", len(backup.Materials)),
		zap.Int("centers", len(backup.Centers)),
		zap.Int("transactions", len(backup.Transactions)),
		zap.Int("invoices", len(backup.Invoices)))
}

func runImport(ctx context.Context, services *common.Services, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Fatal("Failed to read backup", zap.String("path", path), zap.Error(err))
	}

	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		zap.L().Fatal("Failed to parse backup", zap.String("path", path), zap.Error(err))
	}

	if err := services.Console.Import(ctx, backup); err != nil {
		zap.L().Fatal("Failed to import backup", zap.Error(err))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	exportFlag := flag.Bool("export", false, "Export all collections to a JSON file")
	importFlag := flag.String("import", "", "Restore all collections from a JSON backup file")
	outFlag := flag.String("out", "", "Export file path (default recytoken-up_backup_YYYY-MM-DD.json)")
	flag.Parse()

	if *exportFlag == (*importFlag != "") {
		zap.L().Fatal("Exactly one of -export or -import is required")
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *exportFlag {
		runExport(services, *outFlag)
		return
	}
	runImport(ctx, services, *importFlag)
}
