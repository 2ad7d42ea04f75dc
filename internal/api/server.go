package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ladle/internal/config"
	"ladle/internal/engine"
	"ladle/internal/mailstore"
)

type Server struct {
	cfg  config.APIConfig
	game config.Game
	log  *slog.Logger
	eng  *engine.Engine
	mail mailstore.Store
	mux  *chi.Mux
}

func New(cfg config.APIConfig, game config.Game, logger *slog.Logger, eng *engine.Engine, mail mailstore.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		game: game,
		log:  logger,
		eng:  eng,
		mail: mail,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/tick", s.handleTick)

		r.Route("/market", func(r chi.Router) {
			r.Post("/commodities", s.handleAddCommodity)
			r.Get("/commodities", s.handleAllPrices)
			r.Get("/commodities/{id}", s.handleCommodity)
			r.Get("/commodities/{id}/trend", s.handleTrend)
			r.Put("/commodities/{id}/supply", s.handleSetSupply)
			r.Put("/commodities/{id}/demand", s.handleSetDemand)
			r.Post("/season", s.handleSetSeason)
			r.Post("/event", s.handleSetEvent)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Post("/", s.handleRegisterRecipe)
			r.Post("/{id}/completions", s.handleAddCompletion)
			r.Post("/{id}/ratings", s.handleAddRating)
			r.Post("/{id}/extra-points", s.handleAddExtraPoints)
		})

		r.Get("/leaderboard/recipes", s.handleTopRecipes)
		r.Get("/leaderboard/players", s.handleTopPlayers)

		r.Get("/store", s.handleStoreListings)
		r.Post("/store/sales", s.handleRecordSale)

		r.Get("/rewards/weekly/{player_id}", s.handleWeeklyRewardStatus)
		r.Post("/rewards/weekly/{player_id}/claim", s.handleClaimWeeklyReward)

		r.Route("/business/{player_id}", func(r chi.Router) {
			r.Get("/", s.handleBusinessReport)
			r.Post("/serve", s.handleServeCustomers)
			r.Post("/staff/hire", s.handleHireStaff)
			r.Post("/upgrade", s.handleStartUpgrade)
		})

		r.Get("/mail/{player_id}", s.handleListMail)
		r.Post("/mail/{player_id}/{mail_id}/read", s.handleMarkMailRead)
	})
}

// handleTick is the external driver's entry point: it refreshes the global
// time-of-day factor, jiggles the market, and lets the scheduler check its
// period boundaries. Safe to call at any cadence.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.eng.Market.ApplyHour(now.Hour())
	s.eng.Market.SimulateFluctuations()
	s.eng.Scheduler.Tick(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ticked_at": now})
}

func (s *Server) handleAddCommodity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		BasePrice float64 `json:"base_price"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.ID) == "" || in.BasePrice <= 0 {
		writeError(w, http.StatusBadRequest, "id and a positive base_price are required")
		return
	}
	if err := s.eng.Market.AddCommodity(in.ID, in.Name, in.BasePrice); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": in.ID})
}

func (s *Server) handleAllPrices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prices": s.eng.Market.AllPrices()})
}

func (s *Server) handleCommodity(w http.ResponseWriter, r *http.Request) {
	view, err := s.eng.Market.View(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trend, err := s.eng.Market.Trend(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "trend": trend})
}

func (s *Server) handleSetSupply(w http.ResponseWriter, r *http.Request) {
	s.handleSetLevel(w, r, s.eng.Market.UpdateSupply)
}

func (s *Server) handleSetDemand(w http.ResponseWriter, r *http.Request) {
	s.handleSetLevel(w, r, s.eng.Market.UpdateDemand)
}

func (s *Server) handleSetLevel(w http.ResponseWriter, r *http.Request, apply func(string, int) error) {
	var in struct {
		Value int `json:"value"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := apply(id, in.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := s.eng.Market.View(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetSeason(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Season string `json:"season"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.eng.Market.ApplySeason(strings.ToLower(strings.TrimSpace(in.Season)))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSetEvent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		EventType string `json:"event_type"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.eng.Market.ApplyEvent(strings.ToLower(strings.TrimSpace(in.EventType)))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRegisterRecipe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RecipeID int64  `json:"recipe_id"`
		OwnerID  string `json:"owner_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.RecipeID <= 0 || strings.TrimSpace(in.OwnerID) == "" {
		writeError(w, http.StatusBadRequest, "recipe_id and owner_id are required")
		return
	}
	s.eng.Ledger.RegisterRecipe(in.RecipeID, in.OwnerID)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

func (s *Server) handleAddCompletion(w http.ResponseWriter, r *http.Request) {
	recipeID, err := recipeParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in struct {
		PlayerID string `json:"player_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	s.eng.Ledger.AddCompletion(in.PlayerID, recipeID, time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"completions": s.eng.Ledger.CompletionCount(recipeID),
	})
}

func (s *Server) handleAddRating(w http.ResponseWriter, r *http.Request) {
	recipeID, err := recipeParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in struct {
		PlayerID string  `json:"player_id"`
		Score    float64 `json:"score"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if err := s.eng.Ledger.AddRating(in.PlayerID, recipeID, in.Score); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"average_rating": s.eng.Ledger.AverageRating(recipeID),
	})
}

func (s *Server) handleAddExtraPoints(w http.ResponseWriter, r *http.Request) {
	recipeID, err := recipeParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in struct {
		Points float64 `json:"points"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.eng.Ledger.AddExtraPoints(recipeID, in.Points); err != nil {
		writeDomainError(w, err)
		return
	}
	cost := int(in.Points) * s.game.ExtraPoints.CostPerPoint
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "gold_cost": cost})
}

func (s *Server) handleTopRecipes(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)
	var rows []engine.RecipeRankRow
	switch r.URL.Query().Get("by") {
	case "", "score":
		rows = s.eng.Ledger.TopRecipesByScore(limit)
	case "completions":
		rows = s.eng.Ledger.TopRecipesByCompletions(limit)
	default:
		writeError(w, http.StatusBadRequest, "by must be score or completions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handleTopPlayers(w http.ResponseWriter, r *http.Request) {
	rows := s.eng.Ledger.TopPlayersByCollection(queryLimit(r, 10))
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handleStoreListings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"listings": s.eng.Ledger.StoreListings()})
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RecipeID int64   `json:"recipe_id"`
		Revenue  float64 `json:"revenue"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Revenue < 0 {
		writeError(w, http.StatusBadRequest, "revenue must not be negative")
		return
	}
	royalty := s.eng.Ledger.RecordSale(in.RecipeID, in.Revenue)
	writeJSON(w, http.StatusOK, map[string]any{"royalty": royalty})
}

func (s *Server) handleWeeklyRewardStatus(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	rank := s.eng.Ledger.PlayerRank(playerID)
	writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"rank":      rank,
		"can_claim": s.eng.Ledger.CanClaimWeeklyReward(playerID),
		"reward":    s.game.WeeklyReward(rank),
	})
}

func (s *Server) handleClaimWeeklyReward(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	rank := s.eng.Ledger.PlayerRank(playerID)
	if err := s.eng.Ledger.ClaimWeeklyReward(playerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"rank":   rank,
		"reward": s.game.WeeklyReward(rank),
	})
}

func (s *Server) handleBusinessReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Business.Report(chi.URLParam(r, "player_id")))
}

func (s *Server) handleServeCustomers(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Customers   int     `json:"customers"`
		DishQuality float64 `json:"dish_quality"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Customers <= 0 {
		writeError(w, http.StatusBadRequest, "customers must be positive")
		return
	}
	served, revenue, err := s.eng.Business.ServeCustomers(chi.URLParam(r, "player_id"), in.Customers, in.DishQuality)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"served":  served,
		"revenue": revenue,
	})
}

func (s *Server) handleHireStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.eng.Business.HireStaff(chi.URLParam(r, "player_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "staff_count": staff})
}

func (s *Server) handleStartUpgrade(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "player_id")
	if err := s.eng.Business.StartUpgrade(playerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.eng.Business.Report(playerID))
}

func (s *Server) handleListMail(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.mail.ListForPlayer(r.Context(), chi.URLParam(r, "player_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mail": msgs})
}

func (s *Server) handleMarkMailRead(w http.ResponseWriter, r *http.Request) {
	err := s.mail.MarkRead(r.Context(), chi.URLParam(r, "player_id"), chi.URLParam(r, "mail_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func recipeParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("recipe id must be a positive integer")
	}
	return id, nil
}

func queryLimit(r *http.Request, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > 100 {
		return 100
	}
	return n
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrLimitExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, engine.ErrRejected):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
