package catalog

import (
	"fmt"

	"trainswift/internal/models"
)

// Catalog is the read-only train table, indexed by id at load time.
// It lives for the whole process and never mutates.
type Catalog struct {
	trains []models.Train
	byID   map[string]int
}

// New validates the records and builds the index.
func New(trains []models.Train) (*Catalog, error) {
	if err := Validate(trains); err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(trains))
	copied := make([]models.Train, len(trains))
	for i, train := range trains {
		copied[i] = train.Clone()
		byID[train.ID] = i
	}

	return &Catalog{trains: copied, byID: byID}, nil
}

// Validate checks the catalog invariants: unique non-empty ids, a
// non-empty class list with a seat entry per class, and per-class
// availability within the total.
func Validate(trains []models.Train) error {
	seen := make(map[string]bool, len(trains))
	for _, train := range trains {
		if train.ID == "" {
			return fmt.Errorf("train %q has an empty id", train.Name)
		}
		if seen[train.ID] {
			return fmt.Errorf("duplicate train id %q", train.ID)
		}
		seen[train.ID] = true

		if len(train.Classes) == 0 {
			return fmt.Errorf("train %s has no classes", train.ID)
		}
		for _, class := range train.Classes {
			sc, ok := train.Seats[class]
			if !ok {
				return fmt.Errorf("train %s class %q has no seat entry", train.ID, class)
			}
			if sc.Available < 0 || sc.Available > sc.Total {
				return fmt.Errorf("train %s class %q availability %d outside 0..%d",
					train.ID, class, sc.Available, sc.Total)
			}
		}
	}
	return nil
}

// FindByID looks a train up in the full table.
func (c *Catalog) FindByID(id string) (models.Train, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Train{}, false
	}
	return c.trains[i].Clone(), true
}

// Trains returns a copy of the full table in catalog order.
func (c *Catalog) Trains() []models.Train {
	out := make([]models.Train, len(c.trains))
	for i, train := range c.trains {
		out[i] = train.Clone()
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.trains)
}
