// Package search is the train search, filter, and sort engine. It
// owns the current result set and the last search query, and persists
// both to the catalog+search snapshot slot after every mutation.
package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"trainswift/internal/catalog"
	"trainswift/internal/metrics"
	"trainswift/internal/models"
	"trainswift/internal/snapshot"
)

// Sort keys accepted by Sort. Anything else leaves the order as is.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortDeparture = "departure"
	SortArrival   = "arrival"
	SortDuration  = "duration"
)

// Criteria are AND-combined filter predicates. Zero values mean "not
// set", mirroring how callers omit individual filters. TrainClass is a
// literal membership test; treating "any" as no constraint is the
// caller's contract, not engine logic.
type Criteria struct {
	MinPrice       float64
	MaxPrice       float64
	DepartureAfter string // HH:MM, keep trains departing at or after
	ArriveBy       string // HH:MM, keep trains arriving at or before
	TrainClass     string
}

type engineState struct {
	Version  int                 `json:"version"`
	Filtered []models.Train      `json:"filtered"`
	Params   models.SearchParams `json:"params"`
}

// Engine holds the full catalog plus the mutable result set.
type Engine struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	filtered  []models.Train
	params    models.SearchParams
	snapshots snapshot.Repository
	logger    *zerolog.Logger
}

// NewEngine restores any persisted result set from the snapshot slot.
// A missing or schema-incompatible snapshot means a fresh engine.
func NewEngine(ctx context.Context, cat *catalog.Catalog, snapshots snapshot.Repository, logger *zerolog.Logger) *Engine {
	e := &Engine{
		catalog:   cat,
		snapshots: snapshots,
		logger:    logger,
	}

	data, err := snapshots.Load(ctx, snapshot.SlotSearch)
	if err != nil {
		logger.Error().Err(err).Msg("load search snapshot failed, starting empty")
		return e
	}
	if data == nil {
		return e
	}

	var state engineState
	if err := json.Unmarshal(data, &state); err != nil || state.Version != snapshot.SchemaVersion {
		logger.Warn().Msg("search snapshot unreadable or from another schema version, starting empty")
		return e
	}

	e.filtered = state.Filtered
	e.params = state.Params
	return e
}

// Search selects catalog trains whose route matches from and to
// case-insensitively (exact match, not substring). It replaces the
// result set and the stored query; it is the only operation that
// resets the base result set.
func (e *Engine) Search(ctx context.Context, from, to, date string) []models.Train {
	e.mu.Lock()
	defer e.mu.Unlock()

	var filtered []models.Train
	for _, train := range e.catalog.Trains() {
		if strings.EqualFold(train.From, from) && strings.EqualFold(train.To, to) {
			filtered = append(filtered, train)
		}
	}

	e.filtered = filtered
	e.params = models.SearchParams{From: from, To: to, Date: date}
	e.saveLocked(ctx)
	metrics.IncStoreOp("search", "search")

	return cloneTrains(filtered)
}

// Filter applies the criteria to the current result set, or to the
// full catalog when no result set exists yet. The fallback is a
// deliberate policy: filtering works even before any search.
func (e *Engine) Filter(ctx context.Context, c Criteria) []models.Train {
	e.mu.Lock()
	defer e.mu.Unlock()

	base := e.filtered
	if len(base) == 0 {
		base = e.catalog.Trains()
	}

	var filtered []models.Train
	for _, train := range base {
		if matches(train, c) {
			filtered = append(filtered, train)
		}
	}

	e.filtered = filtered
	e.saveLocked(ctx)
	metrics.IncStoreOp("search", "filter")

	return cloneTrains(filtered)
}

func matches(train models.Train, c Criteria) bool {
	if c.MinPrice != 0 && train.Price < c.MinPrice {
		return false
	}
	if c.MaxPrice != 0 && train.Price > c.MaxPrice {
		return false
	}

	if c.DepartureAfter != "" {
		req, reqErr := models.MinuteOfDay(c.DepartureAfter)
		dep, depErr := train.DepartureMinutes()
		if reqErr == nil && depErr == nil && dep < req {
			return false
		}
	}

	if c.ArriveBy != "" {
		req, reqErr := models.MinuteOfDay(c.ArriveBy)
		arr, arrErr := train.ArrivalMinutes()
		if reqErr == nil && arrErr == nil && arr > req {
			return false
		}
	}

	if c.TrainClass != "" {
		found := false
		for _, class := range train.Classes {
			if class == c.TrainClass {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Sort stably reorders the result set by the given key. Duration uses
// minute-of-day arithmetic with no overnight wraparound, so a train
// arriving past midnight sorts with a negative duration.
func (e *Engine) Sort(ctx context.Context, key string) []models.Train {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch key {
	case SortPriceAsc:
		sort.SliceStable(e.filtered, func(i, j int) bool {
			return e.filtered[i].Price < e.filtered[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(e.filtered, func(i, j int) bool {
			return e.filtered[i].Price > e.filtered[j].Price
		})
	case SortDeparture:
		sort.SliceStable(e.filtered, func(i, j int) bool {
			return departureOf(e.filtered[i]) < departureOf(e.filtered[j])
		})
	case SortArrival:
		sort.SliceStable(e.filtered, func(i, j int) bool {
			return arrivalOf(e.filtered[i]) < arrivalOf(e.filtered[j])
		})
	case SortDuration:
		sort.SliceStable(e.filtered, func(i, j int) bool {
			return durationOf(e.filtered[i]) < durationOf(e.filtered[j])
		})
	}

	e.saveLocked(ctx)
	metrics.IncStoreOp("search", "sort")

	return cloneTrains(e.filtered)
}

func departureOf(t models.Train) int {
	m, err := t.DepartureMinutes()
	if err != nil {
		return 0
	}
	return m
}

func arrivalOf(t models.Train) int {
	m, err := t.ArrivalMinutes()
	if err != nil {
		return 0
	}
	return m
}

func durationOf(t models.Train) int {
	m, err := t.DurationMinutes()
	if err != nil {
		return 0
	}
	return m
}

// ClearFilters re-runs the stored search query when one exists,
// discarding all filter and sort effects; otherwise it empties the
// result set.
func (e *Engine) ClearFilters(ctx context.Context) []models.Train {
	e.mu.Lock()
	params := e.params
	e.mu.Unlock()

	if !params.IsZero() {
		return e.Search(ctx, params.From, params.To, params.Date)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.filtered = nil
	e.saveLocked(ctx)
	return nil
}

// TrainByID looks up the full catalog, not the filtered subset.
func (e *Engine) TrainByID(id string) (models.Train, bool) {
	return e.catalog.FindByID(id)
}

// Results returns a copy of the current result set.
func (e *Engine) Results() []models.Train {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTrains(e.filtered)
}

// Params returns the active search query, if any.
func (e *Engine) Params() (models.SearchParams, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params, !e.params.IsZero()
}

func (e *Engine) saveLocked(ctx context.Context) {
	state := engineState{
		Version:  snapshot.SchemaVersion,
		Filtered: e.filtered,
		Params:   e.params,
	}
	data, err := json.Marshal(state)
	if err != nil {
		e.logger.Error().Err(err).Msg("marshal search state failed")
		return
	}
	if err := e.snapshots.Save(ctx, snapshot.SlotSearch, data); err != nil {
		e.logger.Error().Err(err).Msg("save search snapshot failed")
	}
}

func cloneTrains(trains []models.Train) []models.Train {
	if trains == nil {
		return nil
	}
	out := make([]models.Train, len(trains))
	for i, train := range trains {
		out[i] = train.Clone()
	}
	return out
}
