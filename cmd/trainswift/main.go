package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"trainswift/internal/catalog"
	"trainswift/internal/config"
	"trainswift/internal/events"
	"trainswift/internal/export"
	"trainswift/internal/identity"
	"trainswift/internal/ledger"
	"trainswift/internal/logging"
	"trainswift/internal/metrics"
	"trainswift/internal/search"
	"trainswift/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

type queryFlags struct {
	from        string
	to          string
	date        string
	minPrice    float64
	maxPrice    float64
	departAfter string
	arriveBy    string
	class       string
	sortKey     string
	exportEmail string
}

func run() error {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}

	var q queryFlags
	configPath := flag.String("config", defaultConfig, "path to the config file")
	flag.StringVar(&q.from, "from", "", "origin station")
	flag.StringVar(&q.to, "to", "", "destination station")
	flag.StringVar(&q.date, "date", "", "travel date (YYYY-MM-DD)")
	flag.Float64Var(&q.minPrice, "min-price", 0, "minimum base price")
	flag.Float64Var(&q.maxPrice, "max-price", 0, "maximum base price")
	flag.StringVar(&q.departAfter, "depart-after", "", "earliest departure (HH:MM)")
	flag.StringVar(&q.arriveBy, "arrive-by", "", "latest arrival (HH:MM)")
	flag.StringVar(&q.class, "class", "", "required travel class")
	flag.StringVar(&q.sortKey, "sort", "", "sort key: price-asc, price-desc, departure, arrival, duration")
	flag.StringVar(&q.exportEmail, "export", "", "export bookings for this user email instead of searching")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "trainswift-main").Logger()

	metrics.Register()
	ctx := context.Background()

	snapshots, snapClose, err := buildSnapshots(cfg, &logger)
	if err != nil {
		return err
	}
	if snapClose != nil {
		defer func() { _ = snapClose.Close() }()
	}

	cat, err := catalog.New(cfg.Trains)
	if err != nil {
		return err
	}
	logger.Info().Int("trains", cat.Len()).Str("backend", cfg.Storage.Backend).Msg("catalog loaded")

	bus := events.NewBus()
	engine := search.NewEngine(ctx, cat, snapshots, &logger)
	users := identity.NewStore(ctx, snapshots, bus, identity.Options{
		HashCost:   cfg.Security.HashCost,
		LoginRPS:   cfg.Security.LoginRPS,
		LoginBurst: cfg.Security.LoginBurst,
	}, &logger)
	bookings := ledger.New(ctx, snapshots, bus, nil, &logger)

	if q.exportEmail != "" {
		return exportBookings(cfg, users, bookings, q.exportEmail, &logger)
	}

	if q.from == "" || q.to == "" {
		flag.Usage()
		return fmt.Errorf("either -from/-to or -export is required")
	}

	return runQuery(ctx, engine, q)
}

func buildSnapshots(cfg *config.Config, logger *zerolog.Logger) (snapshot.Repository, io.Closer, error) {
	switch cfg.Storage.Backend {
	case "redis":
		client := snapshot.NewRedisClient(cfg.Redis)
		primary := snapshot.NewRedisRepository(client)
		return snapshot.NewFailoverRepository(primary, snapshot.NewMemoryRepository(), logger), client, nil
	case "sqlite":
		repo, err := snapshot.NewSQLiteRepository(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return snapshot.NewMemoryRepository(), nil, nil
	}
}

func runQuery(ctx context.Context, engine *search.Engine, q queryFlags) error {
	results := engine.Search(ctx, q.from, q.to, q.date)

	criteria := search.Criteria{
		MinPrice:       q.minPrice,
		MaxPrice:       q.maxPrice,
		DepartureAfter: q.departAfter,
		ArriveBy:       q.arriveBy,
		TrainClass:     q.class,
	}
	if criteria != (search.Criteria{}) {
		results = engine.Filter(ctx, criteria)
	}
	if q.sortKey != "" {
		results = engine.Sort(ctx, q.sortKey)
	}

	if len(results) == 0 {
		fmt.Println("No trains match this query.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRAIN\tNUMBER\tDEPARTS\tARRIVES\tDURATION\tPRICE\tCLASSES")
	for _, t := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%v\n",
			t.ID, t.Name, t.Number, t.Departure, t.Arrival, t.Duration, t.Price, t.Classes)
	}
	return w.Flush()
}

func exportBookings(cfg *config.Config, users *identity.Store, bookings *ledger.Ledger, email string, logger *zerolog.Logger) error {
	profile, ok := users.FindByEmail(email)
	if !ok {
		return fmt.Errorf("no user registered with email %s", email)
	}

	path, err := export.UserBookings(cfg.Exports.Path, profile, bookings.ForUser(profile.ID), time.Now())
	if err != nil {
		return err
	}

	logger.Info().Str("file_path", path).Msg("bookings export created")
	fmt.Println(path)
	return nil
}
