package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cl "ladle/internal/cli"
	"ladle/internal/config"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	playerID := cfg.PlayerID

	root := &cobra.Command{
		Use:          "ldl",
		Short:        "Ladle CLI game client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&playerID, "player", playerID, "player id (defaults to LDL_PLAYER_ID)")

	root.AddCommand(
		newMarketCmd(&apiBase),
		newTopCmd(&apiBase),
		newStoreCmd(&apiBase),
		newCookCmd(&apiBase, &playerID),
		newRateCmd(&apiBase, &playerID),
		newBoostCmd(&apiBase),
		newBusinessCmd(&apiBase, &playerID),
		newMailCmd(&apiBase, &playerID),
		newRewardCmd(&apiBase, &playerID),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func requirePlayer(playerID *string) (string, error) {
	id := strings.TrimSpace(*playerID)
	if id == "" {
		return "", fmt.Errorf("player id required: pass --player or set LDL_PLAYER_ID")
	}
	return id, nil
}

func newMarketCmd(apiBase *string) *cobra.Command {
	market := &cobra.Command{
		Use:   "market",
		Short: "Commodity market",
	}
	market.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List current commodity prices",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				prices, err := newClient(apiBase).AllPrices(ctx)
				if err != nil {
					return err
				}
				printPrices(prices)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <commodity>",
			Short: "Show one commodity with its trend",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				view, err := newClient(apiBase).Commodity(ctx, args[0])
				if err != nil {
					return err
				}
				printCommodity(view)
				return nil
			},
		},
		&cobra.Command{
			Use:   "supply <commodity> <0-100>",
			Short: "Set a commodity's supply level",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("supply must be a number: %w", err)
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				view, err := newClient(apiBase).SetSupply(ctx, args[0], value)
				if err != nil {
					return err
				}
				printCommodity(view)
				return nil
			},
		},
		&cobra.Command{
			Use:   "demand <commodity> <0-100>",
			Short: "Set a commodity's demand level",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("demand must be a number: %w", err)
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				view, err := newClient(apiBase).SetDemand(ctx, args[0], value)
				if err != nil {
					return err
				}
				printCommodity(view)
				return nil
			},
		},
	)
	return market
}

func newTopCmd(apiBase *string) *cobra.Command {
	top := &cobra.Command{
		Use:   "top",
		Short: "Leaderboards",
	}
	var limit int
	recipes := &cobra.Command{
		Use:   "recipes",
		Short: "Top recipes by score or completions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			by, _ := cmd.Flags().GetString("by")
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			rows, err := newClient(apiBase).TopRecipes(ctx, by, limit)
			if err != nil {
				return err
			}
			printRecipeRows(rows)
			return nil
		},
	}
	recipes.Flags().String("by", "score", "ranking key: score or completions")
	players := &cobra.Command{
		Use:   "players",
		Short: "Top players by collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			rows, err := newClient(apiBase).TopPlayers(ctx, limit)
			if err != nil {
				return err
			}
			printPlayerRows(rows)
			return nil
		},
	}
	top.PersistentFlags().IntVar(&limit, "limit", 10, "rows to fetch")
	top.AddCommand(recipes, players)
	return top
}

func newStoreCmd(apiBase *string) *cobra.Command {
	store := &cobra.Command{
		Use:   "store",
		Short: "Recipe store",
	}
	store.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the current store listing",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				listings, err := newClient(apiBase).StoreListings(ctx)
				if err != nil {
					return err
				}
				printListings(listings)
				return nil
			},
		},
		&cobra.Command{
			Use:   "sell <recipe-id> <revenue>",
			Short: "Record a store sale",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				recipeID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("recipe id must be a number: %w", err)
				}
				revenue, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("revenue must be a number: %w", err)
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				royalty, err := newClient(apiBase).RecordSale(ctx, recipeID, revenue)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Sale recorded. Owner royalty: %.2f gold", royalty))
				return nil
			},
		},
	)
	return store
}

func newCookCmd(apiBase *string, playerID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cook <recipe-id>",
		Short: "Record a recipe completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer(playerID)
			if err != nil {
				return err
			}
			recipeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("recipe id must be a number: %w", err)
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).AddCompletion(ctx, recipeID, player); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Recipe %d completed.", recipeID))
			return nil
		},
	}
}

func newRateCmd(apiBase *string, playerID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <recipe-id> <score 0-10>",
		Short: "Rate a recipe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer(playerID)
			if err != nil {
				return err
			}
			recipeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("recipe id must be a number: %w", err)
			}
			score, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("score must be a number: %w", err)
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			avg, err := newClient(apiBase).Rate(ctx, recipeID, player, score)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Rated recipe %d. New average: %.2f", recipeID, avg))
			return nil
		},
	}
}

func newBoostCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "boost <recipe-id> <points>",
		Short: "Buy extra ranking points for a recipe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("recipe id must be a number: %w", err)
			}
			points, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("points must be a number: %w", err)
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			cost, err := newClient(apiBase).BoostRecipe(ctx, recipeID, points)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Boosted recipe %d by %.1f points for %d gold.", recipeID, points, cost))
			return nil
		},
	}
}

func newBusinessCmd(apiBase *string, playerID *string) *cobra.Command {
	business := &cobra.Command{
		Use:   "business",
		Short: "Restaurant simulation",
	}
	business.AddCommand(
		&cobra.Command{
			Use:   "report",
			Short: "Show the restaurant report",
			RunE: func(cmd *cobra.Command, _ []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				report, err := newClient(apiBase).BusinessReport(ctx, player)
				if err != nil {
					return err
				}
				printReport(report)
				return nil
			},
		},
		&cobra.Command{
			Use:   "serve <customers> <quality 0-100>",
			Short: "Serve a batch of customers",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				customers, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("customers must be a number: %w", err)
				}
				quality, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("quality must be a number: %w", err)
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				served, revenue, err := newClient(apiBase).ServeCustomers(ctx, player, customers, quality)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Served %d customers for %.2f gold.", served, revenue))
				return nil
			},
		},
		&cobra.Command{
			Use:   "hire",
			Short: "Hire one staff member",
			RunE: func(cmd *cobra.Command, _ []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				staff, err := newClient(apiBase).HireStaff(ctx, player)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Staff hired. Headcount: %d", staff))
				return nil
			},
		},
		&cobra.Command{
			Use:   "upgrade",
			Short: "Start an upgrade to the next tier",
			RunE: func(cmd *cobra.Command, _ []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				report, err := newClient(apiBase).StartUpgrade(ctx, player)
				if err != nil {
					return err
				}
				printSuccess("Upgrade started.")
				printReport(report)
				return nil
			},
		},
	)
	return business
}

func newMailCmd(apiBase *string, playerID *string) *cobra.Command {
	mail := &cobra.Command{
		Use:   "mail",
		Short: "Mailbox",
	}
	mail.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List mail",
			RunE: func(cmd *cobra.Command, _ []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				msgs, err := newClient(apiBase).ListMail(ctx, player)
				if err != nil {
					return err
				}
				printMail(msgs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "read <mail-id>",
			Short: "Mark a mail as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				if err := newClient(apiBase).MarkMailRead(ctx, player, args[0]); err != nil {
					return err
				}
				printSuccess("Marked as read.")
				return nil
			},
		},
	)
	return mail
}

func newRewardCmd(apiBase *string, playerID *string) *cobra.Command {
	reward := &cobra.Command{
		Use:   "reward",
		Short: "Weekly ranking rewards",
	}
	reward.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show claimable weekly reward",
			RunE: func(cmd *cobra.Command, _ []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				status, err := newClient(apiBase).WeeklyReward(ctx, player)
				if err != nil {
					return err
				}
				printRewardStatus(status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "claim",
			Short: "Claim this week's reward",
			RunE: func(cmd *cobra.Command, _ []string) error {
				player, err := requirePlayer(playerID)
				if err != nil {
					return err
				}
				ctx, cancel := cmdContext(cmd)
				defer cancel()
				r, err := newClient(apiBase).ClaimWeeklyReward(ctx, player)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Claimed: %d gold, %d beauty, %d exp", r.Gold, r.Beauty, r.Exp))
				return nil
			},
		},
	)
	return reward
}
