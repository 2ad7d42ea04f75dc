package engine

import "time"

type PriceView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BasePrice    float64   `json:"base_price"`
	CurrentPrice float64   `json:"current_price"`
	Supply       int       `json:"supply"`
	Demand       int       `json:"demand"`
	Trend        string    `json:"trend"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PriceSample struct {
	At     time.Time    `json:"at"`
	Price  float64      `json:"price"`
	Supply int          `json:"supply"`
	Demand int          `json:"demand"`
	Factor PriceFactors `json:"factors"`
}

type PriceFactors struct {
	Supply   float64 `json:"supply_factor"`
	Demand   float64 `json:"demand_factor"`
	Seasonal float64 `json:"seasonal_factor"`
	Event    float64 `json:"event_factor"`
	Hour     float64 `json:"time_factor"`
}

type RecipeRankRow struct {
	RecipeID    int64     `json:"recipe_id"`
	TotalScore  float64   `json:"total_score"`
	Average     float64   `json:"average_rating"`
	ExtraPoints float64   `json:"extra_points"`
	RatingCount int       `json:"rating_count"`
	Completions int       `json:"completions"`
	FirstRanked time.Time `json:"first_ranked_at"`
}

type PlayerRankRow struct {
	PlayerID      string `json:"player_id"`
	Rank          int    `json:"rank"`
	Completions   int    `json:"completions"`
	UniqueRecipes int    `json:"unique_recipes"`
}

type StoreListing struct {
	RecipeID     int64     `json:"recipe_id"`
	OwnerID      string    `json:"owner_id"`
	Rank         int       `json:"rank"`
	ListedAt     time.Time `json:"listed_at"`
	SalesCount   int       `json:"sales_count"`
	TotalRevenue float64   `json:"total_revenue"`
}

type CollectionStats struct {
	PlayerID       string  `json:"player_id"`
	Completions    int     `json:"completions"`
	UniqueRecipes  int     `json:"unique_recipes"`
	Rank           int     `json:"rank"`
	CompletionRate float64 `json:"completion_rate"`
}

type BusinessReport struct {
	PlayerID        string  `json:"player_id"`
	Level           int     `json:"level"`
	LevelName       string  `json:"level_name"`
	Reputation      float64 `json:"reputation"`
	Satisfaction    float64 `json:"satisfaction"`
	DailyRevenue    float64 `json:"daily_revenue"`
	TotalRevenue    float64 `json:"total_revenue"`
	StaffCount      int     `json:"staff_count"`
	DailyCustomers  int     `json:"daily_customers"`
	TotalCustomers  int     `json:"total_customers"`
	Capacity        int     `json:"capacity"`
	UpgradeProgress float64 `json:"upgrade_progress"`
	Upgrading       bool    `json:"upgrading"`
}

// MailMessage is the outbound notification handed to the mail store. Only
// the read flag is mutable after creation, and that mutation happens in the
// store, never here.
type MailMessage struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"player_id"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
	Read     bool      `json:"is_read"`
}

type Reward struct {
	Gold   int `json:"gold" toml:"gold"`
	Beauty int `json:"beauty" toml:"beauty"`
	Exp    int `json:"exp" toml:"exp"`
}
