package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ladle/internal/engine"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Tick(ctx context.Context) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/tick", nil, nil)
}

func (c *Client) AllPrices(ctx context.Context) (map[string]float64, error) {
	var out struct {
		Prices map[string]float64 `json:"prices"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market/commodities", nil, &out)
	return out.Prices, err
}

func (c *Client) Commodity(ctx context.Context, id string) (engine.PriceView, error) {
	var out engine.PriceView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market/commodities/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Trend(ctx context.Context, id string) (string, error) {
	var out struct {
		Trend string `json:"trend"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market/commodities/"+url.PathEscape(id)+"/trend", nil, &out)
	return out.Trend, err
}

func (c *Client) AddCommodity(ctx context.Context, id, name string, basePrice float64) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/market/commodities", map[string]any{
		"id":         id,
		"name":       name,
		"base_price": basePrice,
	}, nil)
}

func (c *Client) SetSupply(ctx context.Context, id string, value int) (engine.PriceView, error) {
	var out engine.PriceView
	err := c.jsonRequest(ctx, http.MethodPut, "/v1/market/commodities/"+url.PathEscape(id)+"/supply", map[string]any{
		"value": value,
	}, &out)
	return out, err
}

func (c *Client) SetDemand(ctx context.Context, id string, value int) (engine.PriceView, error) {
	var out engine.PriceView
	err := c.jsonRequest(ctx, http.MethodPut, "/v1/market/commodities/"+url.PathEscape(id)+"/demand", map[string]any{
		"value": value,
	}, &out)
	return out, err
}

func (c *Client) RegisterRecipe(ctx context.Context, recipeID int64, ownerID string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/recipes/", map[string]any{
		"recipe_id": recipeID,
		"owner_id":  ownerID,
	}, nil)
}

func (c *Client) AddCompletion(ctx context.Context, recipeID int64, playerID string) error {
	return c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/recipes/%d/completions", recipeID), map[string]any{
		"player_id": playerID,
	}, nil)
}

func (c *Client) Rate(ctx context.Context, recipeID int64, playerID string, score float64) (float64, error) {
	var out struct {
		AverageRating float64 `json:"average_rating"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/recipes/%d/ratings", recipeID), map[string]any{
		"player_id": playerID,
		"score":     score,
	}, &out)
	return out.AverageRating, err
}

func (c *Client) BoostRecipe(ctx context.Context, recipeID int64, points float64) (int, error) {
	var out struct {
		GoldCost int `json:"gold_cost"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/recipes/%d/extra-points", recipeID), map[string]any{
		"points": points,
	}, &out)
	return out.GoldCost, err
}

func (c *Client) TopRecipes(ctx context.Context, by string, limit int) ([]engine.RecipeRankRow, error) {
	var out struct {
		Rows []engine.RecipeRankRow `json:"rows"`
	}
	path := fmt.Sprintf("/v1/leaderboard/recipes?by=%s&limit=%d", url.QueryEscape(by), limit)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Rows, err
}

func (c *Client) TopPlayers(ctx context.Context, limit int) ([]engine.PlayerRankRow, error) {
	var out struct {
		Rows []engine.PlayerRankRow `json:"rows"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/leaderboard/players?limit=%d", limit), nil, &out)
	return out.Rows, err
}

func (c *Client) StoreListings(ctx context.Context) ([]engine.StoreListing, error) {
	var out struct {
		Listings []engine.StoreListing `json:"listings"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/store", nil, &out)
	return out.Listings, err
}

func (c *Client) RecordSale(ctx context.Context, recipeID int64, revenue float64) (float64, error) {
	var out struct {
		Royalty float64 `json:"royalty"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/store/sales", map[string]any{
		"recipe_id": recipeID,
		"revenue":   revenue,
	}, &out)
	return out.Royalty, err
}

type WeeklyRewardStatus struct {
	PlayerID string        `json:"player_id"`
	Rank     int           `json:"rank"`
	CanClaim bool          `json:"can_claim"`
	Reward   engine.Reward `json:"reward"`
}

func (c *Client) WeeklyReward(ctx context.Context, playerID string) (WeeklyRewardStatus, error) {
	var out WeeklyRewardStatus
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/rewards/weekly/"+url.PathEscape(playerID), nil, &out)
	return out, err
}

func (c *Client) ClaimWeeklyReward(ctx context.Context, playerID string) (engine.Reward, error) {
	var out struct {
		Reward engine.Reward `json:"reward"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/rewards/weekly/"+url.PathEscape(playerID)+"/claim", nil, &out)
	return out.Reward, err
}

func (c *Client) BusinessReport(ctx context.Context, playerID string) (engine.BusinessReport, error) {
	var out engine.BusinessReport
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/business/"+url.PathEscape(playerID)+"/", nil, &out)
	return out, err
}

func (c *Client) ServeCustomers(ctx context.Context, playerID string, customers int, quality float64) (int, float64, error) {
	var out struct {
		Served  int     `json:"served"`
		Revenue float64 `json:"revenue"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/business/"+url.PathEscape(playerID)+"/serve", map[string]any{
		"customers":    customers,
		"dish_quality": quality,
	}, &out)
	return out.Served, out.Revenue, err
}

func (c *Client) HireStaff(ctx context.Context, playerID string) (int, error) {
	var out struct {
		StaffCount int `json:"staff_count"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/business/"+url.PathEscape(playerID)+"/staff/hire", nil, &out)
	return out.StaffCount, err
}

func (c *Client) StartUpgrade(ctx context.Context, playerID string) (engine.BusinessReport, error) {
	var out engine.BusinessReport
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/business/"+url.PathEscape(playerID)+"/upgrade", nil, &out)
	return out, err
}

func (c *Client) ListMail(ctx context.Context, playerID string) ([]engine.MailMessage, error) {
	var out struct {
		Mail []engine.MailMessage `json:"mail"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/mail/"+url.PathEscape(playerID), nil, &out)
	return out.Mail, err
}

func (c *Client) MarkMailRead(ctx context.Context, playerID, mailID string) error {
	path := "/v1/mail/" + url.PathEscape(playerID) + "/" + url.PathEscape(mailID) + "/read"
	return c.jsonRequest(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
