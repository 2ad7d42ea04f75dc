package engine

import (
	"errors"
	"time"
)

const (
	// Base spend per served customer before quality/satisfaction/reputation
	// multipliers are applied.
	BaseRevenuePerCustomer = 10.0

	MinRatingScore = 0.0
	MaxRatingScore = 10.0

	// Hard band for dynamic prices relative to a commodity's base price.
	MinPriceRatio = 0.3
	MaxPriceRatio = 3.0

	// Price samples retained per commodity.
	priceHistoryLimit = 10

	// At most this many distinct recipes may be rated by one player per
	// calendar day.
	dailyRatingLimit = 2

	playerRankingSize = 100
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrRejected      = errors.New("rejected")
	ErrLimitExceeded = errors.New("limit exceeded")
)

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// dayKey collapses a timestamp to its local calendar day, the granularity
// used for rating limits and extra-point caps.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

type isoWeek struct {
	Year int
	Week int
}

func isoWeekOf(t time.Time) isoWeek {
	y, w := t.ISOWeek()
	return isoWeek{Year: y, Week: w}
}
