package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LedgerConfig carries the tunables the ledger enforces itself. Policy
// checks that belong to the business layer (extra-point currency cost,
// reward payouts) stay with the caller.
type LedgerConfig struct {
	DailyExtraPointsLimit float64
	RoyaltyRate           float64
	StoreTopN             int
}

func (c LedgerConfig) withDefaults() LedgerConfig {
	if c.DailyExtraPointsLimit <= 0 {
		c.DailyExtraPointsLimit = 10
	}
	if c.RoyaltyRate <= 0 || c.RoyaltyRate > 1 {
		c.RoyaltyRate = 0.05
	}
	if c.StoreTopN <= 0 {
		c.StoreTopN = 3
	}
	return c
}

type extraPointsDay struct {
	day    string
	points float64
}

// RankingLedger owns the competitive state of recipes and players:
// completion counters, ratings, paid boosts, leaderboards, the rotating
// recipe store and weekly reward claims.
type RankingLedger struct {
	mu    sync.Mutex
	clock Clock
	log   *slog.Logger
	cfg   LedgerConfig

	completions      map[string]map[int64]int
	totalCompletions map[int64]int
	ratings          map[int64]map[string]float64
	dailyRatings     map[string]map[string][]int64
	extraPoints      map[int64]float64
	extraToday       map[int64]extraPointsDay
	totalScores      map[int64]float64
	firstRanked      map[int64]time.Time
	owners           map[int64]string
	weeklyClaims     map[string]isoWeek
	store            []StoreListing
	playerRanks      []PlayerRankRow
}

func NewRankingLedger(cfg LedgerConfig, clock Clock, logger *slog.Logger) *RankingLedger {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RankingLedger{
		clock:            clock,
		log:              logger,
		cfg:              cfg.withDefaults(),
		completions:      make(map[string]map[int64]int),
		totalCompletions: make(map[int64]int),
		ratings:          make(map[int64]map[string]float64),
		dailyRatings:     make(map[string]map[string][]int64),
		extraPoints:      make(map[int64]float64),
		extraToday:       make(map[int64]extraPointsDay),
		totalScores:      make(map[int64]float64),
		firstRanked:      make(map[int64]time.Time),
		owners:           make(map[int64]string),
		weeklyClaims:     make(map[string]isoWeek),
	}
}

// RegisterRecipe records which player authored a recipe so store listings
// and royalty mails can credit the right account. Re-registering is a no-op.
func (l *RankingLedger) RegisterRecipe(recipeID int64, ownerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.owners[recipeID]; !ok {
		l.owners[recipeID] = ownerID
	}
}

func (l *RankingLedger) AddCompletion(playerID string, recipeID int64, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completions[playerID] == nil {
		l.completions[playerID] = make(map[int64]int)
	}
	l.completions[playerID][recipeID]++
	l.totalCompletions[recipeID]++
	_ = at // the completion timestamp is informational; counters drive rankings
}

func (l *RankingLedger) CompletionCount(recipeID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCompletions[recipeID]
}

func (l *RankingLedger) PlayerRecipeCount(playerID string, recipeID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completions[playerID][recipeID]
}

// CanRate reports whether the player may rate the recipe right now, with a
// human-readable reason when not.
func (l *RankingLedger) CanRate(playerID string, recipeID int64) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canRate(playerID, recipeID)
}

func (l *RankingLedger) canRate(playerID string, recipeID int64) (bool, string) {
	if _, ok := l.ratings[recipeID][playerID]; ok {
		return false, "you have already rated this recipe"
	}
	today := dayKey(l.clock.Now())
	if len(l.dailyRatings[playerID][today]) >= dailyRatingLimit {
		return false, "you have already rated two recipes today"
	}
	return true, ""
}

// AddRating records one player's rating of one recipe. Scores are clamped
// to the 0..10 band rather than rejected. The first rating a recipe ever
// receives stamps its first-ranked time, which is never overwritten.
func (l *RankingLedger) AddRating(playerID string, recipeID int64, score float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ok, reason := l.canRate(playerID, recipeID); !ok {
		return fmt.Errorf("%w: %s", ErrRejected, reason)
	}

	score = clampF(score, MinRatingScore, MaxRatingScore)
	if l.ratings[recipeID] == nil {
		l.ratings[recipeID] = make(map[string]float64)
	}
	l.ratings[recipeID][playerID] = score

	now := l.clock.Now()
	today := dayKey(now)
	if l.dailyRatings[playerID] == nil {
		l.dailyRatings[playerID] = make(map[string][]int64)
	}
	l.dailyRatings[playerID][today] = append(l.dailyRatings[playerID][today], recipeID)

	if _, ok := l.firstRanked[recipeID]; !ok {
		l.firstRanked[recipeID] = now
	}
	l.refreshTotalScore(recipeID)
	return nil
}

// AddExtraPoints accumulates a paid score boost. The per-recipe daily cap is
// a hard invariant here; the currency cost check belongs to the caller.
func (l *RankingLedger) AddExtraPoints(recipeID int64, points float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrRejected)
	}
	today := dayKey(l.clock.Now())
	acc := l.extraToday[recipeID]
	if acc.day != today {
		acc = extraPointsDay{day: today}
	}
	if acc.points+points > l.cfg.DailyExtraPointsLimit {
		return fmt.Errorf("%w: daily extra points cap of %.1f reached for recipe %d",
			ErrLimitExceeded, l.cfg.DailyExtraPointsLimit, recipeID)
	}
	acc.points += points
	l.extraToday[recipeID] = acc
	l.extraPoints[recipeID] += points
	l.refreshTotalScore(recipeID)
	return nil
}

// total score = mean of ratings + extra points; zero ratings mean a zero
// average, not a missing score.
func (l *RankingLedger) refreshTotalScore(recipeID int64) {
	var avg float64
	if rs := l.ratings[recipeID]; len(rs) > 0 {
		var sum float64
		for _, s := range rs {
			sum += s
		}
		avg = sum / float64(len(rs))
	}
	l.totalScores[recipeID] = avg + l.extraPoints[recipeID]
}

func (l *RankingLedger) AverageRating(recipeID int64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	rs := l.ratings[recipeID]
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, s := range rs {
		sum += s
	}
	return sum / float64(len(rs))
}

func (l *RankingLedger) recipeRow(recipeID int64) RecipeRankRow {
	row := RecipeRankRow{
		RecipeID:    recipeID,
		TotalScore:  l.totalScores[recipeID],
		ExtraPoints: l.extraPoints[recipeID],
		RatingCount: len(l.ratings[recipeID]),
		Completions: l.totalCompletions[recipeID],
		FirstRanked: l.firstRanked[recipeID],
	}
	if row.RatingCount > 0 {
		row.Average = row.TotalScore - row.ExtraPoints
	}
	return row
}

// TopRecipesByScore returns at most n recipes ordered by total score
// descending. Ties break toward the earlier first-ranked time, then the
// lower recipe id, so repeated queries are deterministic.
func (l *RankingLedger) TopRecipesByScore(n int) []RecipeRankRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.topRecipesByScore(n)
}

func (l *RankingLedger) topRecipesByScore(n int) []RecipeRankRow {
	rows := make([]RecipeRankRow, 0, len(l.totalScores))
	for id := range l.totalScores {
		rows = append(rows, l.recipeRow(id))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		if !rows[i].FirstRanked.Equal(rows[j].FirstRanked) {
			return rows[i].FirstRanked.Before(rows[j].FirstRanked)
		}
		return rows[i].RecipeID < rows[j].RecipeID
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func (l *RankingLedger) TopRecipesByCompletions(n int) []RecipeRankRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]RecipeRankRow, 0, len(l.totalCompletions))
	for id := range l.totalCompletions {
		rows = append(rows, l.recipeRow(id))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Completions != rows[j].Completions {
			return rows[i].Completions > rows[j].Completions
		}
		return rows[i].RecipeID < rows[j].RecipeID
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TopPlayersByCollection ranks players by total completions, ties broken by
// unique recipe count, then player id. Players with no completions are
// excluded.
func (l *RankingLedger) TopPlayersByCollection(n int) []PlayerRankRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.topPlayersByCollection(n)
}

func (l *RankingLedger) topPlayersByCollection(n int) []PlayerRankRow {
	rows := make([]PlayerRankRow, 0, len(l.completions))
	for playerID, recipes := range l.completions {
		total := 0
		for _, c := range recipes {
			total += c
		}
		if total == 0 {
			continue
		}
		rows = append(rows, PlayerRankRow{
			PlayerID:      playerID,
			Completions:   total,
			UniqueRecipes: len(recipes),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Completions != rows[j].Completions {
			return rows[i].Completions > rows[j].Completions
		}
		if rows[i].UniqueRecipes != rows[j].UniqueRecipes {
			return rows[i].UniqueRecipes > rows[j].UniqueRecipes
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// RecipeRank returns the recipe's 1-based position in the score ordering,
// or 0 when the recipe has never been scored.
func (l *RankingLedger) RecipeRank(recipeID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.totalScores[recipeID]; !ok {
		return 0
	}
	for i, row := range l.topRecipesByScore(0) {
		if row.RecipeID == recipeID {
			return i + 1
		}
	}
	return 0
}

// PlayerRank returns the player's 1-based position on the last refreshed
// collection leaderboard, or 0 when unranked.
func (l *RankingLedger) PlayerRank(playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, row := range l.playerRanks {
		if row.PlayerID == playerID {
			return row.Rank
		}
	}
	return 0
}

func (l *RankingLedger) CollectionStats(playerID string) CollectionStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats := CollectionStats{PlayerID: playerID}
	for _, c := range l.completions[playerID] {
		stats.Completions += c
	}
	stats.UniqueRecipes = len(l.completions[playerID])
	for _, row := range l.playerRanks {
		if row.PlayerID == playerID {
			stats.Rank = row.Rank
			break
		}
	}
	if len(l.totalCompletions) > 0 {
		stats.CompletionRate = float64(stats.UniqueRecipes) / float64(len(l.totalCompletions))
	}
	return stats
}

// FavoriteRecipe returns the recipe the player has completed most often.
func (l *RankingLedger) FavoriteRecipe(playerID string) (int64, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var (
		bestID    int64
		bestCount int
		found     bool
	)
	for id, count := range l.completions[playerID] {
		if !found || count > bestCount || (count == bestCount && id < bestID) {
			bestID, bestCount, found = id, count, true
		}
	}
	return bestID, bestCount, found
}

// CanClaimWeeklyReward is true unless the player already claimed in the
// current ISO (year, week).
func (l *RankingLedger) CanClaimWeeklyReward(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	claimed, ok := l.weeklyClaims[playerID]
	return !ok || claimed != isoWeekOf(l.clock.Now())
}

// ClaimWeeklyReward records the claim for the current ISO week. A second
// claim inside the same week is rejected.
func (l *RankingLedger) ClaimWeeklyReward(playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	week := isoWeekOf(l.clock.Now())
	if claimed, ok := l.weeklyClaims[playerID]; ok && claimed == week {
		return fmt.Errorf("%w: weekly reward already claimed", ErrRejected)
	}
	l.weeklyClaims[playerID] = week
	return nil
}

// RotateStore wholesale-replaces the store listing with the current top-N
// recipes by score. Listing times are stamped fresh and sales counters
// zeroed. The period gate lives in the scheduler, not here.
func (l *RankingLedger) RotateStore(topN int) []StoreListing {
	l.mu.Lock()
	defer l.mu.Unlock()
	if topN <= 0 {
		topN = l.cfg.StoreTopN
	}
	top := l.topRecipesByScore(topN)
	now := l.clock.Now()
	listings := make([]StoreListing, 0, len(top))
	for i, row := range top {
		listings = append(listings, StoreListing{
			RecipeID: row.RecipeID,
			OwnerID:  l.owners[row.RecipeID],
			Rank:     i + 1,
			ListedAt: now,
		})
	}
	l.store = listings
	return l.storeSnapshot()
}

func (l *RankingLedger) StoreListings() []StoreListing {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.storeSnapshot()
}

func (l *RankingLedger) storeSnapshot() []StoreListing {
	out := make([]StoreListing, len(l.store))
	copy(out, l.store)
	return out
}

// RecordSale credits a store sale against the listing and returns the
// royalty owed to the recipe's owner. Unlisted recipes earn nothing.
func (l *RankingLedger) RecordSale(recipeID int64, revenue float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.store {
		if l.store[i].RecipeID == recipeID {
			l.store[i].SalesCount++
			l.store[i].TotalRevenue += revenue
			return revenue * l.cfg.RoyaltyRate
		}
	}
	return 0
}

// RefreshPlayerRankings rebuilds the persisted collection leaderboard from
// scratch. Triggered by the scheduler's daily job.
func (l *RankingLedger) RefreshPlayerRankings() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playerRanks = l.topPlayersByCollection(playerRankingSize)
	return len(l.playerRanks)
}

func (l *RankingLedger) PlayerRankings() []PlayerRankRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PlayerRankRow, len(l.playerRanks))
	copy(out, l.playerRanks)
	return out
}

// RoyaltyMails builds one notification per listing owner with accumulated
// sales revenue. It only returns messages; delivering them is the caller's
// job.
func (l *RankingLedger) RoyaltyMails() []MailMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	var mails []MailMessage
	for _, listing := range l.store {
		if listing.OwnerID == "" || listing.TotalRevenue <= 0 {
			continue
		}
		royalty := listing.TotalRevenue * l.cfg.RoyaltyRate
		mails = append(mails, MailMessage{
			ID:       uuid.NewString(),
			PlayerID: listing.OwnerID,
			Subject:  "Recipe royalty payout",
			Body: fmt.Sprintf("Your recipe #%d earned a royalty of %.2f gold from %d sales.",
				listing.RecipeID, royalty, listing.SalesCount),
			SentAt: now,
		})
	}
	return mails
}

// RankingMails builds one leaderboard-update notification per ranked player.
func (l *RankingLedger) RankingMails() []MailMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	mails := make([]MailMessage, 0, len(l.playerRanks))
	for _, row := range l.playerRanks {
		mails = append(mails, MailMessage{
			ID:       uuid.NewString(),
			PlayerID: row.PlayerID,
			Subject:  "Collection leaderboard update",
			Body: fmt.Sprintf("You are ranked #%d with %d completions across %d recipes.",
				row.Rank, row.Completions, row.UniqueRecipes),
			SentAt: now,
		})
	}
	return mails
}

// ResetPlayerCollection removes a player's completions and their
// contribution to the global counters.
func (l *RankingLedger) ResetPlayerCollection(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for recipeID, count := range l.completions[playerID] {
		l.totalCompletions[recipeID] -= count
		if l.totalCompletions[recipeID] <= 0 {
			delete(l.totalCompletions, recipeID)
		}
	}
	delete(l.completions, playerID)
}
