package models

// SeatClass describes seat inventory and pricing for one travel class.
type SeatClass struct {
	Total     int     `json:"total" yaml:"total"`
	Available int     `json:"available" yaml:"available"`
	Price     float64 `json:"price" yaml:"price"`
}

// Train is an immutable catalog record. Departure and Arrival are local
// times of day in HH:MM form; Duration and Distance are display strings.
type Train struct {
	ID        string               `json:"id" yaml:"id"`
	Name      string               `json:"name" yaml:"name"`
	Number    string               `json:"number" yaml:"number"`
	From      string               `json:"from" yaml:"from"`
	To        string               `json:"to" yaml:"to"`
	Departure string               `json:"departure" yaml:"departure"`
	Arrival   string               `json:"arrival" yaml:"arrival"`
	Duration  string               `json:"duration" yaml:"duration"`
	Distance  string               `json:"distance" yaml:"distance"`
	Price     float64              `json:"price" yaml:"price"`
	Classes   []string             `json:"classes" yaml:"classes"`
	Seats     map[string]SeatClass `json:"seats" yaml:"seats"`
}

// Clone returns a deep copy so callers can never reach into shared
// slices or maps held by a store.
func (t Train) Clone() Train {
	out := t
	out.Classes = append([]string(nil), t.Classes...)
	if t.Seats != nil {
		out.Seats = make(map[string]SeatClass, len(t.Seats))
		for class, sc := range t.Seats {
			out.Seats[class] = sc
		}
	}
	return out
}

// DepartureMinutes returns the departure time as minutes after midnight.
func (t Train) DepartureMinutes() (int, error) {
	return MinuteOfDay(t.Departure)
}

// ArrivalMinutes returns the arrival time as minutes after midnight.
func (t Train) ArrivalMinutes() (int, error) {
	return MinuteOfDay(t.Arrival)
}

// DurationMinutes computes arrival minus departure in minutes. The
// timetable does not model overnight services: a train arriving past
// midnight yields a negative value.
func (t Train) DurationMinutes() (int, error) {
	dep, err := t.DepartureMinutes()
	if err != nil {
		return 0, err
	}
	arr, err := t.ArrivalMinutes()
	if err != nil {
		return 0, err
	}
	return arr - dep, nil
}

// SearchParams is the last successful search query. The zero value means
// no active search.
type SearchParams struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
}

func (p SearchParams) IsZero() bool {
	return p.From == "" && p.To == ""
}
