package search

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainswift/internal/catalog"
	"trainswift/internal/models"
	"trainswift/internal/snapshot"
)

func fixtureTrains() []models.Train {
	seats := func(price float64) map[string]models.SeatClass {
		return map[string]models.SeatClass{
			"standard": {Total: 60, Available: 30, Price: price},
		}
	}
	return []models.Train{
		{
			ID: "t1", Name: "Night Owl", From: "London", To: "Edinburgh",
			Departure: "06:00", Arrival: "10:45", Price: 60,
			Classes: []string{"standard"}, Seats: seats(60),
		},
		{
			ID: "t2", Name: "Borders Flyer", From: "London", To: "Edinburgh",
			Departure: "09:15", Arrival: "13:30", Price: 10,
			Classes: []string{"standard", "first"},
			Seats: map[string]models.SeatClass{
				"standard": {Total: 60, Available: 30, Price: 10},
				"first":    {Total: 10, Available: 2, Price: 25},
			},
		},
		{
			ID: "t3", Name: "Highland Express", From: "London", To: "Edinburgh",
			Departure: "14:00", Arrival: "18:05", Price: 30,
			Classes: []string{"standard"}, Seats: seats(30),
		},
		{
			ID: "t4", Name: "Pennine Local", From: "Manchester", To: "Leeds",
			Departure: "07:30", Arrival: "08:40", Price: 12,
			Classes: []string{"standard"}, Seats: seats(12),
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.New(fixtureTrains())
	require.NoError(t, err)
	logger := zerolog.Nop()
	return NewEngine(context.Background(), cat, snapshot.NewMemoryRepository(), &logger)
}

func ids(trains []models.Train) []string {
	out := make([]string, len(trains))
	for i, train := range trains {
		out[i] = train.ID
	}
	return out
}

func TestSearchMatchesRouteCaseInsensitively(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	got := e.Search(ctx, "LONDON", "edinburgh", "2024-06-01")
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(got))

	params, ok := e.Params()
	require.True(t, ok)
	assert.Equal(t, "LONDON", params.From)
	assert.Equal(t, "2024-06-01", params.Date)
}

func TestSearchIsExactMatchNotSubstring(t *testing.T) {
	e := newTestEngine(t)

	got := e.Search(context.Background(), "Lond", "Edinburgh", "2024-06-01")
	assert.Empty(t, got)
}

func TestSearchIdentityPreserved(t *testing.T) {
	e := newTestEngine(t)

	for _, train := range e.Search(context.Background(), "London", "Edinburgh", "2024-06-01") {
		found, ok := e.TrainByID(train.ID)
		require.True(t, ok)
		assert.Equal(t, train, found)
	}
}

func TestFilterPriceRange(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.Search(ctx, "London", "Edinburgh", "2024-06-01")
	got := e.Filter(ctx, Criteria{MinPrice: 20, MaxPrice: 50})

	assert.Equal(t, []string{"t3"}, ids(got))
}

func TestFilterFallsBackToCatalogWhenNoSearch(t *testing.T) {
	e := newTestEngine(t)

	// No search yet: the whole catalog is the base, t4 included.
	got := e.Filter(context.Background(), Criteria{MaxPrice: 15})
	assert.Equal(t, []string{"t2", "t4"}, ids(got))
}

func TestFilterDepartureAndArrivalWindows(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Search(ctx, "London", "Edinburgh", "2024-06-01")

	t.Run("departure not earlier than", func(t *testing.T) {
		got := e.Filter(ctx, Criteria{DepartureAfter: "09:15"})
		assert.Equal(t, []string{"t2", "t3"}, ids(got))
	})

	t.Run("arrival not later than", func(t *testing.T) {
		e.Search(ctx, "London", "Edinburgh", "2024-06-01")
		got := e.Filter(ctx, Criteria{ArriveBy: "13:30"})
		assert.Equal(t, []string{"t1", "t2"}, ids(got))
	})
}

func TestFilterTrainClassIsLiteralMembership(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Search(ctx, "London", "Edinburgh", "2024-06-01")

	got := e.Filter(ctx, Criteria{TrainClass: "first"})
	assert.Equal(t, []string{"t2"}, ids(got))

	// "any" is not special-cased by the engine.
	e.Search(ctx, "London", "Edinburgh", "2024-06-01")
	got = e.Filter(ctx, Criteria{TrainClass: "any"})
	assert.Empty(t, got)
}

func TestFiltersCombineWithAnd(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Search(ctx, "London", "Edinburgh", "2024-06-01")

	got := e.Filter(ctx, Criteria{MinPrice: 5, DepartureAfter: "07:00", ArriveBy: "14:00"})
	assert.Equal(t, []string{"t2"}, ids(got))
}

func TestSortOrders(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{key: SortPriceAsc, want: []string{"t2", "t3", "t1"}},
		{key: SortPriceDesc, want: []string{"t1", "t3", "t2"}},
		{key: SortDeparture, want: []string{"t1", "t2", "t3"}},
		{key: SortArrival, want: []string{"t1", "t2", "t3"}},
		{key: SortDuration, want: []string{"t3", "t2", "t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e := newTestEngine(t)
			ctx := context.Background()
			e.Search(ctx, "London", "Edinburgh", "2024-06-01")

			got := e.Sort(ctx, tt.key)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortUnknownKeyKeepsOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Search(ctx, "London", "Edinburgh", "2024-06-01")

	got := e.Sort(ctx, "altitude")
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(got))
}

func TestClearFiltersRestoresSearchResult(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	original := e.Search(ctx, "London", "Edinburgh", "2024-06-01")
	emptied := e.Filter(ctx, Criteria{MinPrice: 1000})
	require.Empty(t, emptied)

	restored := e.ClearFilters(ctx)
	assert.Equal(t, ids(original), ids(restored))
}

func TestClearFiltersWithoutSearchEmptiesResults(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.Filter(ctx, Criteria{MaxPrice: 100})
	got := e.ClearFilters(ctx)

	assert.Empty(t, got)
	assert.Empty(t, e.Results())
}

func TestEngineRestoresFromSnapshot(t *testing.T) {
	cat, err := catalog.New(fixtureTrains())
	require.NoError(t, err)
	logger := zerolog.Nop()
	repo := snapshot.NewMemoryRepository()
	ctx := context.Background()

	e := NewEngine(ctx, cat, repo, &logger)
	e.Search(ctx, "London", "Edinburgh", "2024-06-01")
	e.Filter(ctx, Criteria{MaxPrice: 15})

	restored := NewEngine(ctx, cat, repo, &logger)
	assert.Equal(t, []string{"t2"}, ids(restored.Results()))

	params, ok := restored.Params()
	require.True(t, ok)
	assert.Equal(t, "London", params.From)
}

func TestEngineIgnoresForeignSchemaSnapshot(t *testing.T) {
	cat, err := catalog.New(fixtureTrains())
	require.NoError(t, err)
	logger := zerolog.Nop()
	repo := snapshot.NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, snapshot.SlotSearch, []byte(`{"version":99,"filtered":[{"id":"zz"}]}`)))

	e := NewEngine(ctx, cat, repo, &logger)
	assert.Empty(t, e.Results())
}
