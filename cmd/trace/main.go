package main

import (
	"context"
	"flag"
	"fmt"

	"recytoken-up-go/internal/common"
	"recytoken-up-go/internal/config"
	"recytoken-up-go/internal/models"

	"go.uber.org/zap"
)

func printMaterial(m *models.Material) {
	if m == nil {
		fmt.Println("Material:  (no material carries this token)")
		return
	}
	fmt.Printf("Material:  %s (%s)\n", m.Name, m.Id)
	fmt.Printf("Category:  %s\n", m.Category)
	fmt.Printf("Location:  %s\n", m.Location)
	fmt.Printf("Inventory: %s\n", common.FormatKg(m.InventoryKg))
	fmt.Printf("Wallet:    %s\n", m.WalletAddress)
}

func printEvents(events []models.TransactionView) {
	common.PrintSection(fmt.Sprintf("Custody events (%d)", len(events)), common.WideWidth)
	for i, e := range events {
		fmt.Printf("%s %s  %-12s %-30s %12s  %s\n",
			common.BoxPrefix(i == len(events)-1),
			e.Date.Format("2006-01-02 15:04"),
			e.Status,
			e.CenterName,
			common.FormatKg(e.QuantityKg),
			e.Id)
	}
}

func printLedger(entries []models.LedgerEntry) {
	common.PrintSection(fmt.Sprintf("Ledger postings (%d)", len(entries)), common.WideWidth)
	for i, e := range entries {
		fmt.Printf("%s %s  %-5s %s -> %s  %s\n",
			common.BoxPrefix(i == len(entries)-1),
			e.Timestamp.Format("2006-01-02 15:04"),
			e.EventType,
			e.Source,
			e.Destination,
			common.FormatKg(e.QuantityKg))
	}
}

func printSearch(views []models.TransactionView) {
	for i, v := range views {
		fmt.Printf("%s %-14s %s  %-22s %-12s %s\n",
			common.BoxPrefix(i == len(views)-1),
			v.MaterialTokenId,
			v.Date.Format("2006-01-02"),
			v.MaterialName,
			v.Status,
			v.CenterName)
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	tokenFlag := flag.String("token", "", "Token id to trace, e.g. TKN-PET-001X")
	searchFlag := flag.String("search", "", "Search transactions by token, material or center instead")
	flag.Parse()

	if *tokenFlag == "" && *searchFlag == "" {
		zap.L().Fatal("Either -token or -search is required")
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

	if *searchFlag != "" {
		views := services.Console.Transactions(*searchFlag)
		common.PrintHeader(fmt.Sprintf("TRANSACTIONS MATCHING %q", *searchFlag), common.WideWidth)
		printSearch(views)
		common.PrintFooter(fmt.Sprintf("%d transactions", len(views)), common.WideWidth)
		return
	}

	timeline := services.Console.Trace(ctx, *tokenFlag)
	common.PrintHeader("TOKEN TRACE: "+timeline.TokenId, common.WideWidth)
	printMaterial(timeline.Material)
	printEvents(timeline.Events)
	if timeline.Ledger != nil {
		printLedger(timeline.Ledger)
	}
	common.PrintFooter(fmt.Sprintf("%d events", len(timeline.Events)), common.WideWidth)
}
