package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"

	cl "ladle/internal/cli"
	"ladle/internal/engine"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printPrices(prices map[string]float64) {
	if len(prices) == 0 {
		printWarn("No commodities on the market yet.")
		return
	}
	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	accent.Println("\n== MARKET ==")
	fmt.Printf("%-16s %12s\n", "COMMODITY", "PRICE")
	for _, id := range ids {
		fmt.Printf("%-16s %12.2f\n", id, prices[id])
	}
}

func printCommodity(view engine.PriceView) {
	accent.Printf("\n== %s (%s) ==\n", view.Name, view.ID)
	fmt.Printf("Base Price:    %.2f\n", view.BasePrice)
	fmt.Printf("Current Price: %.2f\n", view.CurrentPrice)
	fmt.Printf("Supply:        %d\n", view.Supply)
	fmt.Printf("Demand:        %d\n", view.Demand)
	fmt.Printf("Trend:         %s\n", colorizeTrend(view.Trend))
	fmt.Printf("Updated:       %s\n", view.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func colorizeTrend(trend string) string {
	switch trend {
	case "rising":
		return success.Sprint(trend)
	case "falling":
		return danger.Sprint(trend)
	default:
		return neutral.Sprint(trend)
	}
}

func printRecipeRows(rows []engine.RecipeRankRow) {
	if len(rows) == 0 {
		printWarn("No ranked recipes yet.")
		return
	}
	accent.Println("\n== TOP RECIPES ==")
	fmt.Printf("%-4s %-10s %10s %8s %8s %12s\n", "#", "RECIPE", "SCORE", "AVG", "EXTRA", "COMPLETIONS")
	for i, row := range rows {
		fmt.Printf("%-4d %-10d %10.2f %8.2f %8.1f %12d\n",
			i+1, row.RecipeID, row.TotalScore, row.Average, row.ExtraPoints, row.Completions)
	}
}

func printPlayerRows(rows []engine.PlayerRankRow) {
	if len(rows) == 0 {
		printWarn("No ranked players yet.")
		return
	}
	accent.Println("\n== TOP PLAYERS ==")
	fmt.Printf("%-4s %-24s %12s %8s\n", "#", "PLAYER", "COMPLETIONS", "UNIQUE")
	for _, row := range rows {
		fmt.Printf("%-4d %-24s %12d %8d\n", row.Rank, row.PlayerID, row.Completions, row.UniqueRecipes)
	}
}

func printListings(listings []engine.StoreListing) {
	if len(listings) == 0 {
		printWarn("The store is empty. Wait for the next rotation.")
		return
	}
	accent.Println("\n== RECIPE STORE ==")
	fmt.Printf("%-4s %-10s %-24s %8s %12s\n", "#", "RECIPE", "OWNER", "SALES", "REVENUE")
	for _, l := range listings {
		fmt.Printf("%-4d %-10d %-24s %8d %12.2f\n", l.Rank, l.RecipeID, l.OwnerID, l.SalesCount, l.TotalRevenue)
	}
}

func printReport(r engine.BusinessReport) {
	accent.Printf("\n== %s (level %d) ==\n", r.LevelName, r.Level)
	fmt.Printf("Reputation:    %.1f\n", r.Reputation)
	fmt.Printf("Satisfaction:  %.1f\n", r.Satisfaction)
	fmt.Printf("Staff:         %d\n", r.StaffCount)
	fmt.Printf("Capacity:      %d/day\n", r.Capacity)
	fmt.Printf("Customers:     %d today, %d total\n", r.DailyCustomers, r.TotalCustomers)
	fmt.Printf("Revenue:       %.2f today, %.2f total\n", r.DailyRevenue, r.TotalRevenue)
	if r.Upgrading {
		fmt.Printf("Upgrade:       %.1f%% complete\n", r.UpgradeProgress)
	}
}

func printMail(msgs []engine.MailMessage) {
	if len(msgs) == 0 {
		printWarn("Mailbox is empty.")
		return
	}
	accent.Println("\n== MAILBOX ==")
	for _, m := range msgs {
		marker := danger.Sprint("*")
		if m.Read {
			marker = " "
		}
		fmt.Printf("%s %-36s %-20s %s\n", marker, m.ID, m.SentAt.Local().Format("2006-01-02 15:04"), m.Subject)
		neutral.Printf("  %s\n", m.Body)
	}
}

func printRewardStatus(status cl.WeeklyRewardStatus) {
	accent.Println("\n== WEEKLY REWARD ==")
	if status.Rank == 0 {
		printWarn("Not on the leaderboard yet. Cook more recipes!")
		return
	}
	fmt.Printf("Rank:   %d\n", status.Rank)
	fmt.Printf("Reward: %d gold, %d beauty, %d exp\n", status.Reward.Gold, status.Reward.Beauty, status.Reward.Exp)
	if status.CanClaim {
		printSuccess("Reward available. Run `ldl reward claim`.")
	} else {
		printWarn("Already claimed this week.")
	}
}
