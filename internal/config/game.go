package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ladle/internal/engine"
)

// Game is the designer-tunable configuration, loaded from a TOML file and
// injected into the engine at construction. Missing files fall back to the
// defaults below.
type Game struct {
	ExtraPoints ExtraPointsConfig `toml:"extra_points"`
	Store       StoreConfig       `toml:"store"`
	Rankings    RankingsConfig    `toml:"rankings"`
	Rewards     RewardsConfig     `toml:"rewards"`
}

type ExtraPointsConfig struct {
	DailyLimitPerRecipe float64 `toml:"daily_limit_per_recipe"`
	CostPerPoint        int     `toml:"cost_per_point"`
}

type StoreConfig struct {
	TopRankedRecipeCount int     `toml:"top_ranked_recipe_count"`
	RoyaltyRate          float64 `toml:"royalty_rate"`
	UpdateCycleDays      int     `toml:"update_cycle_days"`
}

type RankingsConfig struct {
	RefreshEveryHours int `toml:"refresh_every_hours"`
}

// RewardsConfig keys the weekly payout table by rank ("1") or inclusive
// rank range ("4-10").
type RewardsConfig struct {
	Weekly map[string]engine.Reward `toml:"weekly"`
}

func DefaultGame() Game {
	return Game{
		ExtraPoints: ExtraPointsConfig{
			DailyLimitPerRecipe: 10.0,
			CostPerPoint:        100,
		},
		Store: StoreConfig{
			TopRankedRecipeCount: 3,
			RoyaltyRate:          0.05,
			UpdateCycleDays:      30,
		},
		Rankings: RankingsConfig{
			RefreshEveryHours: 24,
		},
		Rewards: RewardsConfig{
			Weekly: map[string]engine.Reward{
				"1":     {Gold: 1000, Beauty: 50, Exp: 500},
				"2":     {Gold: 800, Beauty: 40, Exp: 400},
				"3":     {Gold: 600, Beauty: 30, Exp: 300},
				"4-10":  {Gold: 400, Beauty: 20, Exp: 200},
				"11-50": {Gold: 200, Beauty: 10, Exp: 100},
			},
		},
	}
}

// LoadGame reads the TOML config at path over the defaults. A missing file
// is not an error; a malformed one is.
func LoadGame(path string) (Game, error) {
	cfg := DefaultGame()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open game config: %w", err)
	}
	defer file.Close()
	if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse game config: %w", err)
	}
	return cfg, nil
}

// WeeklyReward resolves the payout for a leaderboard rank. Ranks outside
// every configured range get the consolation reward.
func (g Game) WeeklyReward(rank int) engine.Reward {
	for key, reward := range g.Rewards.Weekly {
		if lo, hi, ok := parseRankRange(key); ok && rank >= lo && rank <= hi {
			return reward
		}
	}
	return engine.Reward{Gold: 100, Beauty: 5, Exp: 50}
}

func parseRankRange(key string) (lo, hi int, ok bool) {
	key = strings.TrimSpace(key)
	if at := strings.IndexByte(key, '-'); at >= 0 {
		lo, err1 := strconv.Atoi(strings.TrimSpace(key[:at]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(key[at+1:]))
		if err1 != nil || err2 != nil || lo > hi {
			return 0, 0, false
		}
		return lo, hi, true
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, 0, false
	}
	return n, n, true
}

func (g Game) LedgerConfig() engine.LedgerConfig {
	return engine.LedgerConfig{
		DailyExtraPointsLimit: g.ExtraPoints.DailyLimitPerRecipe,
		RoyaltyRate:           g.Store.RoyaltyRate,
		StoreTopN:             g.Store.TopRankedRecipeCount,
	}
}

func (g Game) SchedulerConfig() engine.SchedulerConfig {
	return engine.SchedulerConfig{
		RankingRefreshEvery: time.Duration(g.Rankings.RefreshEveryHours) * time.Hour,
		StoreRotationEvery:  time.Duration(g.Store.UpdateCycleDays) * 24 * time.Hour,
		StoreTopN:           g.Store.TopRankedRecipeCount,
	}
}
