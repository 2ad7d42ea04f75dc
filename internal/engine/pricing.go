package engine

import (
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"
)

var seasonMultipliers = map[string]float64{
	"spring": 1.0,
	"summer": 1.1,
	"autumn": 0.9,
	"winter": 1.2,
}

var eventMultipliers = map[string]float64{
	"festival": 1.5,
	"sale":     0.7,
	"shortage": 2.0,
	"normal":   1.0,
}

// hourMultiplier maps the shop-day rhythm onto price pressure: cheap in the
// morning, peaks at lunch and dinner, clearance before close.
func hourMultiplier(hour int) float64 {
	switch {
	case hour >= 8 && hour <= 11:
		return 0.9
	case hour >= 12 && hour <= 14:
		return 1.2
	case hour >= 18 && hour <= 20:
		return 1.3
	case hour >= 21 && hour <= 22:
		return 0.8
	default:
		return 1.0
	}
}

type Commodity struct {
	ID           string
	Name         string
	BasePrice    float64
	CurrentPrice float64
	Supply       int
	Demand       int
	Factors      PriceFactors
	History      []PriceSample
	UpdatedAt    time.Time
}

func newCommodity(id, name string, basePrice float64, now time.Time) *Commodity {
	return &Commodity{
		ID:           id,
		Name:         name,
		BasePrice:    basePrice,
		CurrentPrice: basePrice,
		Supply:       100,
		Demand:       50,
		Factors:      PriceFactors{Supply: 1, Demand: 1, Seasonal: 1, Event: 1, Hour: 1},
		UpdatedAt:    now,
	}
}

// Supply above the midpoint pushes the factor down toward 0.5, scarcity
// pushes it up toward 2.0. Demand is the mirror image.
func (c *Commodity) refreshSupplyFactor() {
	if c.Supply > 50 {
		c.Factors.Supply = 0.5 + (float64(c.Supply)/100)*0.5
	} else {
		c.Factors.Supply = 2.0 - (float64(c.Supply)/50)*1.0
	}
}

func (c *Commodity) refreshDemandFactor() {
	if c.Demand > 50 {
		c.Factors.Demand = 1.0 + (float64(c.Demand-50)/50)*1.0
	} else {
		c.Factors.Demand = 0.5 + (float64(c.Demand)/50)*0.5
	}
}

func (c *Commodity) recompute(now time.Time) float64 {
	mult := c.Factors.Supply * c.Factors.Demand * c.Factors.Seasonal * c.Factors.Event * c.Factors.Hour
	price := clampF(c.BasePrice*mult, c.BasePrice*MinPriceRatio, c.BasePrice*MaxPriceRatio)

	c.History = append(c.History, PriceSample{
		At:     now,
		Price:  price,
		Supply: c.Supply,
		Demand: c.Demand,
		Factor: c.Factors,
	})
	if len(c.History) > priceHistoryLimit {
		c.History = c.History[len(c.History)-priceHistoryLimit:]
	}

	c.CurrentPrice = price
	c.UpdatedAt = now
	return price
}

// trend compares the last two history samples; moves within 5% either way
// read as stable.
func (c *Commodity) trend() string {
	if len(c.History) < 2 {
		return "stable"
	}
	cur := c.History[len(c.History)-1].Price
	prev := c.History[len(c.History)-2].Price
	switch {
	case cur > prev*1.05:
		return "rising"
	case cur < prev*0.95:
		return "falling"
	default:
		return "stable"
	}
}

// PriceEngine owns every priced commodity and the global season/event/hour
// factors applied across them.
type PriceEngine struct {
	mu          sync.Mutex
	clock       Clock
	log         *slog.Logger
	rand        *mathrand.Rand
	commodities map[string]*Commodity
	season      string
}

func NewPriceEngine(clock Clock, logger *slog.Logger) *PriceEngine {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceEngine{
		clock:       clock,
		log:         logger,
		rand:        mathrand.New(mathrand.NewSource(clock.Now().UnixNano())),
		commodities: make(map[string]*Commodity),
		season:      "spring",
	}
}

func (e *PriceEngine) AddCommodity(id, name string, basePrice float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.commodities[id]; ok {
		return fmt.Errorf("commodity %q: %w", id, ErrAlreadyExists)
	}
	e.commodities[id] = newCommodity(id, name, basePrice, e.clock.Now())
	return nil
}

func (e *PriceEngine) UpdateSupply(id string, supply int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[id]
	if !ok {
		return fmt.Errorf("commodity %q: %w", id, ErrNotFound)
	}
	c.Supply = clampInt(supply, 0, 100)
	c.refreshSupplyFactor()
	return nil
}

func (e *PriceEngine) UpdateDemand(id string, demand int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[id]
	if !ok {
		return fmt.Errorf("commodity %q: %w", id, ErrNotFound)
	}
	c.Demand = clampInt(demand, 0, 100)
	c.refreshDemandFactor()
	return nil
}

// ApplySeason switches the seasonal factor on all commodities. Unknown
// seasons fall back to a neutral 1.0.
func (e *PriceEngine) ApplySeason(season string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mult, ok := seasonMultipliers[season]
	if !ok {
		mult = 1.0
	}
	e.season = season
	for _, c := range e.commodities {
		c.Factors.Seasonal = mult
	}
}

func (e *PriceEngine) ApplyEvent(eventType string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mult, ok := eventMultipliers[eventType]
	if !ok {
		mult = 1.0
	}
	for _, c := range e.commodities {
		c.Factors.Event = mult
	}
}

func (e *PriceEngine) ApplyHour(hour int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mult := hourMultiplier(hour)
	for _, c := range e.commodities {
		c.Factors.Hour = mult
	}
}

// Price recomputes and returns the commodity's current price, appending a
// history sample.
func (e *PriceEngine) Price(id string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[id]
	if !ok {
		return 0, fmt.Errorf("commodity %q: %w", id, ErrNotFound)
	}
	return c.recompute(e.clock.Now()), nil
}

func (e *PriceEngine) AllPrices() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	out := make(map[string]float64, len(e.commodities))
	for id, c := range e.commodities {
		out[id] = c.recompute(now)
	}
	return out
}

func (e *PriceEngine) Trend(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[id]
	if !ok {
		return "", fmt.Errorf("commodity %q: %w", id, ErrNotFound)
	}
	return c.trend(), nil
}

func (e *PriceEngine) View(id string) (PriceView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[id]
	if !ok {
		return PriceView{}, fmt.Errorf("commodity %q: %w", id, ErrNotFound)
	}
	price := c.recompute(e.clock.Now())
	return PriceView{
		ID:           c.ID,
		Name:         c.Name,
		BasePrice:    c.BasePrice,
		CurrentPrice: price,
		Supply:       c.Supply,
		Demand:       c.Demand,
		Trend:        c.trend(),
		UpdatedAt:    c.UpdatedAt,
	}, nil
}

func (e *PriceEngine) ResetToBase(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[id]
	if !ok {
		return fmt.Errorf("commodity %q: %w", id, ErrNotFound)
	}
	c.CurrentPrice = c.BasePrice
	c.Factors = PriceFactors{Supply: 1, Demand: 1, Seasonal: 1, Event: 1, Hour: 1}
	c.UpdatedAt = e.clock.Now()
	return nil
}

// SimulateFluctuations jiggles supply and demand by up to ±5 points each,
// keeping the market alive between player-driven events. Called by the
// worker on its market tick.
func (e *PriceEngine) SimulateFluctuations() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.commodities {
		c.Supply = clampInt(c.Supply+e.rand.Intn(11)-5, 0, 100)
		c.Demand = clampInt(c.Demand+e.rand.Intn(11)-5, 0, 100)
		c.refreshSupplyFactor()
		c.refreshDemandFactor()
	}
}
