package main

import (
	"context"
	"fmt"

	"recytoken-up-go/internal/common"
	"recytoken-up-go/internal/config"
	"recytoken-up-go/internal/models"

	"go.uber.org/zap"
)

func printTopCenters(centers []models.CenterWeight) {
	common.PrintSection("Processed weight by center", common.DefaultWidth)
	for i, c := range centers {
		fmt.Printf("%s %-4s %-12s %18s\n", common.BoxPrefix(i == len(centers)-1), c.CenterId, c.City, common.FormatKg(c.Processed))
	}
}

func printCategories(categories []models.CategoryWeight) {
	common.PrintSection("Inventory by category", common.DefaultWidth)
	for i, c := range categories {
		fmt.Printf("%s %-16s %18s\n", common.BoxPrefix(i == len(categories)-1), c.Category, common.FormatKg(c.WeightKg))
	}
}

func printDailyActivity(days []models.DailyCount) {
	common.PrintSection("Transactions per day", common.DefaultWidth)
	for i, d := range days {
		fmt.Printf("%s %s  %3d\n", common.BoxPrefix(i == len(days)-1), d.Date, d.Count)
	}
}

func printRecentActivity(views []models.TransactionView) {
	common.PrintSection("Recent activity", common.DefaultWidth)
	for i, v := range views {
		fmt.Printf("%s %s  %-22s %-28s %-12s %12s\n",
			common.BoxPrefix(i == len(views)-1),
			v.Date.Format("2006-01-02"),
			v.MaterialName,
			v.CenterName,
			v.Status,
			common.FormatKg(v.QuantityKg))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	summary := services.Console.Dashboard()

	common.PrintHeader("RECYTOKEN-UP DASHBOARD", common.WideWidth)
	fmt.Printf("Tokens traced:        %d\n", summary.TotalTokens)
	fmt.Printf("Active materials:     %d\n", summary.ActiveMaterials)
	fmt.Printf("Collected:            %s t\n", summary.CollectedTonnes.String())
	fmt.Printf("Transactions:         %d\n", summary.TransactionCount)
	fmt.Printf("CO2 avoided:          %s t\n", summary.CO2SavedTonnes.String())
	fmt.Printf("Active centers:       %d\n", summary.ActiveCenters)

	printTopCenters(summary.TopCenters)
	printCategories(summary.CategoryDistribution)
	printDailyActivity(summary.DailyActivity)
	printRecentActivity(summary.RecentActivity)

	common.PrintFooter(fmt.Sprintf("Generated at %s", summary.GeneratedAt.Format("2006-01-02 15:04:05")), common.WideWidth)
}
