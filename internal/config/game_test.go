package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ladle/internal/engine"
)

func TestWeeklyRewardTable(t *testing.T) {
	game := DefaultGame()
	tests := []struct {
		rank int
		want engine.Reward
	}{
		{rank: 1, want: engine.Reward{Gold: 1000, Beauty: 50, Exp: 500}},
		{rank: 2, want: engine.Reward{Gold: 800, Beauty: 40, Exp: 400}},
		{rank: 3, want: engine.Reward{Gold: 600, Beauty: 30, Exp: 300}},
		{rank: 4, want: engine.Reward{Gold: 400, Beauty: 20, Exp: 200}},
		{rank: 10, want: engine.Reward{Gold: 400, Beauty: 20, Exp: 200}},
		{rank: 11, want: engine.Reward{Gold: 200, Beauty: 10, Exp: 100}},
		{rank: 50, want: engine.Reward{Gold: 200, Beauty: 10, Exp: 100}},
		{rank: 51, want: engine.Reward{Gold: 100, Beauty: 5, Exp: 50}},
		{rank: 9999, want: engine.Reward{Gold: 100, Beauty: 5, Exp: 50}},
	}
	for _, tc := range tests {
		got := game.WeeklyReward(tc.rank)
		if got != tc.want {
			t.Fatalf("rank=%d got=%+v want=%+v", tc.rank, got, tc.want)
		}
	}
}

func TestParseRankRange(t *testing.T) {
	tests := []struct {
		key    string
		lo, hi int
		ok     bool
	}{
		{key: "1", lo: 1, hi: 1, ok: true},
		{key: "4-10", lo: 4, hi: 10, ok: true},
		{key: " 11 - 50 ", lo: 11, hi: 50, ok: true},
		{key: "10-4", ok: false},
		{key: "abc", ok: false},
		{key: "1-x", ok: false},
	}
	for _, tc := range tests {
		lo, hi, ok := parseRankRange(tc.key)
		if ok != tc.ok || lo != tc.lo || hi != tc.hi {
			t.Fatalf("key=%q got=(%d,%d,%v) want=(%d,%d,%v)", tc.key, lo, hi, ok, tc.lo, tc.hi, tc.ok)
		}
	}
}

func TestLoadGameMissingFileUsesDefaults(t *testing.T) {
	game, err := LoadGame(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if game.Store.TopRankedRecipeCount != 3 || game.Store.RoyaltyRate != 0.05 {
		t.Fatalf("unexpected defaults: %+v", game.Store)
	}
}

func TestLoadGameOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")
	body := `
[extra_points]
daily_limit_per_recipe = 20.0
cost_per_point = 50

[store]
top_ranked_recipe_count = 5
royalty_rate = 0.1
update_cycle_days = 7

[rankings]
refresh_every_hours = 6

[rewards.weekly]
"1" = { gold = 5000, beauty = 100, exp = 1000 }
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	game, err := LoadGame(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if game.ExtraPoints.DailyLimitPerRecipe != 20 {
		t.Fatalf("extra points limit: %+v", game.ExtraPoints)
	}
	if game.Store.TopRankedRecipeCount != 5 || game.Store.UpdateCycleDays != 7 {
		t.Fatalf("store config: %+v", game.Store)
	}
	if got := game.WeeklyReward(1); got.Gold != 5000 {
		t.Fatalf("override reward: %+v", got)
	}

	ledger := game.LedgerConfig()
	if ledger.DailyExtraPointsLimit != 20 || ledger.RoyaltyRate != 0.1 || ledger.StoreTopN != 5 {
		t.Fatalf("ledger config: %+v", ledger)
	}
	sched := game.SchedulerConfig()
	if sched.RankingRefreshEvery != 6*time.Hour || sched.StoreRotationEvery != 7*24*time.Hour {
		t.Fatalf("scheduler config: %+v", sched)
	}
}

func TestLoadGameMalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")
	if err := os.WriteFile(path, []byte("[store\nbroken"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadGame(path); err == nil {
		t.Fatalf("malformed config should fail")
	}
}
