package engine

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testSimulator(t *testing.T) (*BusinessSimulator, *fakeClock) {
	t.Helper()
	clock := newFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	return NewBusinessSimulator(clock, nil), clock
}

func TestServeCustomersRespectsCapacity(t *testing.T) {
	sim, _ := testSimulator(t)

	// level 1 caps at 10 customers a day
	served, _, err := sim.ServeCustomers("alice", 15, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if served != 10 {
		t.Fatalf("served %d, want 10", served)
	}

	_, _, err = sim.ServeCustomers("alice", 1, 70)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected at capacity, got %v", err)
	}

	report := sim.Report("alice")
	if report.DailyCustomers != 10 || report.TotalCustomers != 10 {
		t.Fatalf("unexpected counters: %+v", report)
	}
}

func TestServeCustomersRevenueFormula(t *testing.T) {
	sim, _ := testSimulator(t)

	// fresh restaurant: satisfaction 50, reputation 50, multiplier 1.0
	served, revenue, err := sim.ServeCustomers("alice", 10, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if served != 10 {
		t.Fatalf("served %d, want 10", served)
	}
	// 10 * 10.0 * 1.0 * 0.5 * 0.5 * 1.0
	if math.Abs(revenue-25) > 1e-9 {
		t.Fatalf("revenue: got %v want 25", revenue)
	}

	report := sim.Report("alice")
	// quality >= 80 nudges reputation +0.5, satisfaction +0.3
	if report.Reputation != 50.5 || report.Satisfaction != 50.3 {
		t.Fatalf("unexpected nudges: rep=%v sat=%v", report.Reputation, report.Satisfaction)
	}
}

func TestQualityNudgesClamp(t *testing.T) {
	sim, _ := testSimulator(t)
	sim.Report("alice")

	sim.mu.Lock()
	sim.restaurants["alice"].Reputation = 0.1
	sim.restaurants["alice"].Satisfaction = 0.2
	sim.mu.Unlock()

	if _, _, err := sim.ServeCustomers("alice", 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := sim.Report("alice")
	if report.Reputation != 0 || report.Satisfaction != 0 {
		t.Fatalf("nudges should clamp at zero: rep=%v sat=%v", report.Reputation, report.Satisfaction)
	}
}

func TestHireStaff(t *testing.T) {
	sim, _ := testSimulator(t)

	if _, err := sim.HireStaff("alice"); !errors.Is(err, ErrRejected) {
		t.Fatalf("hiring with no revenue should fail, got %v", err)
	}

	sim.Report("alice")
	sim.mu.Lock()
	sim.restaurants["alice"].TotalRevenue = 500
	sim.mu.Unlock()

	staff, err := sim.HireStaff("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if staff != 2 {
		t.Fatalf("staff count: got %d want 2", staff)
	}
	report := sim.Report("alice")
	if report.TotalRevenue != 300 {
		t.Fatalf("first hire costs 200: revenue %v", report.TotalRevenue)
	}

	// second hire costs 400, only 300 left
	if _, err := sim.HireStaff("alice"); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestUpgradeLifecycle(t *testing.T) {
	sim, _ := testSimulator(t)

	if err := sim.StartUpgrade("alice"); !errors.Is(err, ErrRejected) {
		t.Fatalf("upgrade with no funds should fail, got %v", err)
	}

	sim.Report("alice")
	sim.mu.Lock()
	sim.restaurants["alice"].TotalRevenue = 1500
	sim.mu.Unlock()

	if ok, _ := sim.CanUpgrade("alice"); !ok {
		t.Fatalf("1500 gold should afford the 1000 gold tier")
	}
	if err := sim.StartUpgrade("alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := sim.Report("alice")
	if !report.Upgrading || report.UpgradeProgress != 0 {
		t.Fatalf("upgrade should start at zero progress: %+v", report)
	}
	if report.TotalRevenue != 500 {
		t.Fatalf("upgrade cost not deducted: revenue %v", report.TotalRevenue)
	}

	if err := sim.StartUpgrade("alice"); !errors.Is(err, ErrRejected) {
		t.Fatalf("upgrade already in progress should reject, got %v", err)
	}

	// one staff member accrues 0.1 progress per minute
	done, err := sim.UpdateUpgradeProgress("alice", 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatalf("50%% progress should not complete the upgrade")
	}
	done, err = sim.UpdateUpgradeProgress("alice", 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatalf("100%% progress should complete the upgrade")
	}

	report = sim.Report("alice")
	if report.Level != 2 || report.Upgrading || report.UpgradeProgress != 0 {
		t.Fatalf("unexpected post-upgrade state: %+v", report)
	}
	if report.LevelName != "Corner Diner" || report.Capacity != 25 {
		t.Fatalf("tier 2 should be the Corner Diner with capacity 25: %+v", report)
	}
}

func TestAdvanceUpgradesFromClock(t *testing.T) {
	sim, clock := testSimulator(t)

	sim.Report("alice")
	sim.mu.Lock()
	sim.restaurants["alice"].TotalRevenue = 1000
	sim.mu.Unlock()
	if err := sim.StartUpgrade("alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(500 * time.Minute)
	if leveled := sim.AdvanceUpgrades(clock.Now()); len(leveled) != 0 {
		t.Fatalf("halfway through, nobody should level: %v", leveled)
	}
	clock.Advance(500 * time.Minute)
	leveled := sim.AdvanceUpgrades(clock.Now())
	if len(leveled) != 1 || leveled[0] != "alice" {
		t.Fatalf("expected alice to level up, got %v", leveled)
	}
	if report := sim.Report("alice"); report.Level != 2 {
		t.Fatalf("level: got %d want 2", report.Level)
	}
}

func TestTopTierCannotUpgrade(t *testing.T) {
	sim, _ := testSimulator(t)
	sim.Report("alice")
	sim.mu.Lock()
	sim.restaurants["alice"].Level = 8
	sim.restaurants["alice"].TotalRevenue = 1e9
	sim.mu.Unlock()

	if ok, reason := sim.CanUpgrade("alice"); ok || reason == "" {
		t.Fatalf("top tier must not upgrade: ok=%v reason=%q", ok, reason)
	}
}

func TestDailyReset(t *testing.T) {
	sim, clock := testSimulator(t)

	if _, _, err := sim.ServeCustomers("alice", 5, 70); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// too soon
	if n := sim.ResetDailyDue(clock.Now().Add(time.Hour)); n != 0 {
		t.Fatalf("reset should not fire within 24h, got %d", n)
	}

	clock.Advance(25 * time.Hour)
	if n := sim.ResetDailyDue(clock.Now()); n != 1 {
		t.Fatalf("expected one restaurant reset, got %d", n)
	}
	report := sim.Report("alice")
	if report.DailyCustomers != 0 || report.DailyRevenue != 0 {
		t.Fatalf("daily counters should be zeroed: %+v", report)
	}
	if report.TotalCustomers != 5 {
		t.Fatalf("lifetime counters must survive the reset: %+v", report)
	}
}

func TestTierTable(t *testing.T) {
	if tier := TierForLevel(1); tier.Name != "Street Stall" || tier.Capacity != 10 {
		t.Fatalf("unexpected tier 1: %+v", tier)
	}
	if tier := TierForLevel(8); tier.Name != "Global Franchise" || tier.Capacity != 5000 {
		t.Fatalf("unexpected tier 8: %+v", tier)
	}
	// out-of-range levels clamp rather than panic
	if tier := TierForLevel(0); tier.Level != 1 {
		t.Fatalf("level 0 should clamp to 1: %+v", tier)
	}
	if tier := TierForLevel(99); tier.Level != 8 {
		t.Fatalf("level 99 should clamp to 8: %+v", tier)
	}
}
