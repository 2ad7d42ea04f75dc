package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type RestaurantTier struct {
	Level             int
	Name              string
	Capacity          int
	UpgradeCost       float64
	RevenueMultiplier float64
}

var restaurantTiers = []RestaurantTier{
	{Level: 1, Name: "Street Stall", Capacity: 10, UpgradeCost: 0, RevenueMultiplier: 1.0},
	{Level: 2, Name: "Corner Diner", Capacity: 25, UpgradeCost: 1000, RevenueMultiplier: 1.2},
	{Level: 3, Name: "Bistro", Capacity: 50, UpgradeCost: 3000, RevenueMultiplier: 1.5},
	{Level: 4, Name: "Grand Restaurant", Capacity: 100, UpgradeCost: 8000, RevenueMultiplier: 2.0},
	{Level: 5, Name: "Restaurant Chain", Capacity: 200, UpgradeCost: 20000, RevenueMultiplier: 2.5},
	{Level: 6, Name: "Food Court", Capacity: 500, UpgradeCost: 50000, RevenueMultiplier: 3.0},
	{Level: 7, Name: "Dining Group", Capacity: 1000, UpgradeCost: 100000, RevenueMultiplier: 4.0},
	{Level: 8, Name: "Global Franchise", Capacity: 5000, UpgradeCost: 500000, RevenueMultiplier: 5.0},
}

func TierForLevel(level int) RestaurantTier {
	level = clampInt(level, 1, len(restaurantTiers))
	return restaurantTiers[level-1]
}

type RestaurantState struct {
	PlayerID        string
	Level           int
	Reputation      float64
	Satisfaction    float64
	DailyRevenue    float64
	TotalRevenue    float64
	StaffCount      int
	UpgradeProgress float64
	Upgrading       bool
	DailyCustomers  int
	TotalCustomers  int
	LastDailyReset  time.Time
	LastProgressAt  time.Time
}

func newRestaurantState(playerID string, now time.Time) *RestaurantState {
	return &RestaurantState{
		PlayerID:       playerID,
		Level:          1,
		Reputation:     50,
		Satisfaction:   50,
		StaffCount:     1,
		LastDailyReset: now,
		LastProgressAt: now,
	}
}

// BusinessSimulator owns one RestaurantState per player.
type BusinessSimulator struct {
	mu          sync.Mutex
	clock       Clock
	log         *slog.Logger
	restaurants map[string]*RestaurantState
}

func NewBusinessSimulator(clock Clock, logger *slog.Logger) *BusinessSimulator {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BusinessSimulator{
		clock:       clock,
		log:         logger,
		restaurants: make(map[string]*RestaurantState),
	}
}

func (b *BusinessSimulator) restaurant(playerID string) *RestaurantState {
	st, ok := b.restaurants[playerID]
	if !ok {
		st = newRestaurantState(playerID, b.clock.Now())
		b.restaurants[playerID] = st
	}
	return st
}

// ServeCustomers seats up to the remaining daily capacity and returns the
// count actually served plus the revenue earned. Quality feeds both the
// revenue formula and the reputation/satisfaction nudges.
func (b *BusinessSimulator) ServeCustomers(playerID string, count int, dishQuality float64) (int, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.restaurant(playerID)
	tier := TierForLevel(st.Level)

	served := count
	if remaining := tier.Capacity - st.DailyCustomers; served > remaining {
		served = remaining
	}
	if served <= 0 {
		return 0, 0, fmt.Errorf("%w: restaurant is at capacity (%d/%d)", ErrRejected, st.DailyCustomers, tier.Capacity)
	}

	st.DailyCustomers += served
	st.TotalCustomers += served

	dishQuality = clampF(dishQuality, 0, 100)
	revenue := float64(served) * BaseRevenuePerCustomer *
		(dishQuality / 100) * (st.Satisfaction / 100) * (st.Reputation / 100) *
		tier.RevenueMultiplier
	st.DailyRevenue += revenue
	st.TotalRevenue += revenue

	switch {
	case dishQuality >= 80:
		st.Reputation = clampF(st.Reputation+0.5, 0, 100)
		st.Satisfaction = clampF(st.Satisfaction+0.3, 0, 100)
	case dishQuality >= 60:
		st.Reputation = clampF(st.Reputation+0.2, 0, 100)
		st.Satisfaction = clampF(st.Satisfaction+0.1, 0, 100)
	case dishQuality >= 40:
		st.Reputation = clampF(st.Reputation-0.1, 0, 100)
		st.Satisfaction = clampF(st.Satisfaction-0.2, 0, 100)
	default:
		st.Reputation = clampF(st.Reputation-0.3, 0, 100)
		st.Satisfaction = clampF(st.Satisfaction-0.5, 0, 100)
	}

	return served, revenue, nil
}

// HireStaff recruits one staff member; the cost scales with headcount and is
// paid out of accumulated revenue.
func (b *BusinessSimulator) HireStaff(playerID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.restaurant(playerID)
	cost := float64(st.StaffCount) * 200
	if st.TotalRevenue < cost {
		return st.StaffCount, fmt.Errorf("%w: hiring costs %.0f gold", ErrRejected, cost)
	}
	st.TotalRevenue -= cost
	st.StaffCount++
	return st.StaffCount, nil
}

// CanUpgrade reports whether the next tier is affordable.
func (b *BusinessSimulator) CanUpgrade(playerID string) (bool, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.restaurant(playerID)
	return canUpgrade(st)
}

func canUpgrade(st *RestaurantState) (bool, string) {
	if st.Level >= len(restaurantTiers) {
		return false, "already at the top tier"
	}
	if st.Upgrading {
		return false, "an upgrade is already in progress"
	}
	next := restaurantTiers[st.Level]
	if st.TotalRevenue < next.UpgradeCost {
		return false, fmt.Sprintf("upgrading to %s costs %.0f gold", next.Name, next.UpgradeCost)
	}
	return true, ""
}

// StartUpgrade deducts the next tier's cost and begins construction.
// Progress then accrues through UpdateUpgradeProgress.
func (b *BusinessSimulator) StartUpgrade(playerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.restaurant(playerID)
	if ok, reason := canUpgrade(st); !ok {
		return fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	next := restaurantTiers[st.Level]
	st.TotalRevenue -= next.UpgradeCost
	st.UpgradeProgress = 0
	st.Upgrading = true
	st.LastProgressAt = b.clock.Now()
	return nil
}

// UpdateUpgradeProgress advances a running upgrade by elapsed minutes;
// progress accrues at 0.1 per staff member per minute. Completing returns
// true and bumps the level.
func (b *BusinessSimulator) UpdateUpgradeProgress(playerID string, elapsedMinutes float64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.restaurant(playerID)
	return b.advanceUpgrade(st, elapsedMinutes), nil
}

func (b *BusinessSimulator) advanceUpgrade(st *RestaurantState, elapsedMinutes float64) bool {
	if !st.Upgrading || elapsedMinutes <= 0 {
		return false
	}
	st.UpgradeProgress += 0.1 * float64(st.StaffCount) * elapsedMinutes
	if st.UpgradeProgress < 100 {
		return false
	}
	st.Level = clampInt(st.Level+1, 1, len(restaurantTiers))
	st.UpgradeProgress = 0
	st.Upgrading = false
	b.log.Info("restaurant upgraded", "player_id", st.PlayerID, "level", st.Level, "tier", TierForLevel(st.Level).Name)
	return true
}

// AdvanceUpgrades accrues upgrade progress for every player from wall-clock
// elapsed time. Called on each scheduler tick.
func (b *BusinessSimulator) AdvanceUpgrades(now time.Time) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var leveledUp []string
	for _, st := range b.restaurants {
		minutes := now.Sub(st.LastProgressAt).Minutes()
		st.LastProgressAt = now
		if b.advanceUpgrade(st, minutes) {
			leveledUp = append(leveledUp, st.PlayerID)
		}
	}
	return leveledUp
}

// ResetDailyStats zeroes the player's daily counters. The scheduler decides
// when; the simulator never self-triggers.
func (b *BusinessSimulator) ResetDailyStats(playerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.restaurant(playerID)
	st.DailyRevenue = 0
	st.DailyCustomers = 0
	st.LastDailyReset = b.clock.Now()
}

// ResetDailyDue resets daily counters for every player whose last reset is
// at least 24h old, returning how many were reset.
func (b *BusinessSimulator) ResetDailyDue(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	reset := 0
	for _, st := range b.restaurants {
		if now.Sub(st.LastDailyReset) >= 24*time.Hour {
			st.DailyRevenue = 0
			st.DailyCustomers = 0
			st.LastDailyReset = now
			reset++
		}
	}
	return reset
}

func (b *BusinessSimulator) Report(playerID string) BusinessReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.restaurant(playerID)
	tier := TierForLevel(st.Level)
	return BusinessReport{
		PlayerID:        st.PlayerID,
		Level:           st.Level,
		LevelName:       tier.Name,
		Reputation:      st.Reputation,
		Satisfaction:    st.Satisfaction,
		DailyRevenue:    st.DailyRevenue,
		TotalRevenue:    st.TotalRevenue,
		StaffCount:      st.StaffCount,
		DailyCustomers:  st.DailyCustomers,
		TotalCustomers:  st.TotalCustomers,
		Capacity:        tier.Capacity,
		UpgradeProgress: st.UpgradeProgress,
		Upgrading:       st.Upgrading,
	}
}
