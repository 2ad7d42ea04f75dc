package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ladle/internal/config"
	"ladle/internal/engine"
	"ladle/internal/mailstore"
)

func testServer(t *testing.T) (*httptest.Server, *engine.Engine, *mailstore.Memory) {
	t.Helper()
	mail := mailstore.NewMemory()
	eng := engine.New(engine.Options{Mail: mail})
	srv := New(config.APIConfig{}, config.DefaultGame(), nil, eng, mail)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, eng, mail
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestHealthz(t *testing.T) {
	ts, _, _ := testServer(t)
	resp, out := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || out["ok"] != true {
		t.Fatalf("status=%d body=%v", resp.StatusCode, out)
	}
}

func TestMarketLifecycle(t *testing.T) {
	ts, _, _ := testServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/market/commodities", map[string]any{
		"id": "tomato", "name": "Tomato", "base_price": 100,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}

	// duplicate is a conflict
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/market/commodities", map[string]any{
		"id": "tomato", "name": "Tomato", "base_price": 100,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate: status %d", resp.StatusCode)
	}

	resp, out := doJSON(t, http.MethodPut, ts.URL+"/v1/market/commodities/tomato/supply", map[string]any{"value": 20})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("supply: status %d", resp.StatusCode)
	}
	if price := out["current_price"].(float64); price <= 100 {
		t.Fatalf("scarce supply should raise the price: %v", price)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/v1/market/commodities/nope/supply", map[string]any{"value": 20})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown commodity: status %d", resp.StatusCode)
	}

	resp, out = doJSON(t, http.MethodGet, ts.URL+"/v1/market/commodities/tomato/trend", nil)
	if resp.StatusCode != http.StatusOK || out["trend"] == "" {
		t.Fatalf("trend: status=%d body=%v", resp.StatusCode, out)
	}
}

func TestRecipeRatingFlow(t *testing.T) {
	ts, _, _ := testServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/", map[string]any{
		"recipe_id": 1, "owner_id": "alice",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}

	resp, out := doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/ratings", map[string]any{
		"player_id": "bob", "score": 8,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rate: status %d body=%v", resp.StatusCode, out)
	}
	if avg := out["average_rating"].(float64); avg != 8 {
		t.Fatalf("average: %v", avg)
	}

	// repeat rating: rejected
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/ratings", map[string]any{
		"player_id": "bob", "score": 8,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate rating: status %d", resp.StatusCode)
	}

	// extra points past the daily cap map to 429
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/extra-points", map[string]any{"points": 11})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("over-cap boost: status %d", resp.StatusCode)
	}

	resp, out = doJSON(t, http.MethodGet, ts.URL+"/v1/leaderboard/recipes?by=score", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard: status %d", resp.StatusCode)
	}
	rows := out["rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected one ranked recipe, got %d", len(rows))
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/leaderboard/recipes?by=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad sort key: status %d", resp.StatusCode)
	}
}

func TestBlankPlayerIDRejected(t *testing.T) {
	ts, eng, _ := testServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/completions", map[string]any{"player_id": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank player completion: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/completions", map[string]any{"player_id": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("whitespace player completion: status %d", resp.StatusCode)
	}
	if n := eng.Ledger.CompletionCount(1); n != 0 {
		t.Fatalf("rejected completions must not accrue: got %d", n)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/ratings", map[string]any{"player_id": "", "score": 8})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank player rating: status %d", resp.StatusCode)
	}
}

func TestBusinessEndpoints(t *testing.T) {
	ts, _, _ := testServer(t)

	resp, out := doJSON(t, http.MethodPost, ts.URL+"/v1/business/alice/serve", map[string]any{
		"customers": 15, "dish_quality": 70,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("serve: status %d body=%v", resp.StatusCode, out)
	}
	if served := out["served"].(float64); served != 10 {
		t.Fatalf("level-1 capacity should cap at 10: %v", served)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/business/alice/serve", map[string]any{
		"customers": 1, "dish_quality": 70,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("at capacity: status %d", resp.StatusCode)
	}

	resp, out = doJSON(t, http.MethodGet, ts.URL+"/v1/business/alice/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report: status %d", resp.StatusCode)
	}
	if out["level_name"] != "Street Stall" {
		t.Fatalf("unexpected report: %v", out)
	}
}

func TestTickDeliversScheduledMail(t *testing.T) {
	ts, _, mail := testServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/completions", map[string]any{"player_id": "bob"})

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/tick", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tick: status %d", resp.StatusCode)
	}

	msgs, err := mail.ListForPlayer(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Subject != "Collection leaderboard update" {
		t.Fatalf("expected a leaderboard mail, got %+v", msgs)
	}

	resp, out := doJSON(t, http.MethodGet, ts.URL+"/v1/mail/bob", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list mail: status %d", resp.StatusCode)
	}
	listed := out["mail"].([]any)
	if len(listed) != 1 {
		t.Fatalf("expected one mail over HTTP, got %d", len(listed))
	}

	mailID := listed[0].(map[string]any)["id"].(string)
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/mail/bob/"+mailID+"/read", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark read: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/mail/bob/missing/read", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing mail: status %d", resp.StatusCode)
	}
}

func TestWeeklyRewardEndpoints(t *testing.T) {
	ts, _, _ := testServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/recipes/1/completions", map[string]any{"player_id": "bob"})
	doJSON(t, http.MethodPost, ts.URL+"/v1/tick", nil)

	resp, out := doJSON(t, http.MethodGet, ts.URL+"/v1/rewards/weekly/bob", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if out["rank"].(float64) != 1 || out["can_claim"] != true {
		t.Fatalf("unexpected status: %v", out)
	}
	reward := out["reward"].(map[string]any)
	if reward["gold"].(float64) != 1000 {
		t.Fatalf("rank 1 pays 1000 gold: %v", reward)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/rewards/weekly/bob/claim", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/rewards/weekly/bob/claim", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second claim should reject: status %d", resp.StatusCode)
	}
}
