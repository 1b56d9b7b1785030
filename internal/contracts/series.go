package contracts

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// PricePoint is a single NAV observation.
type PricePoint struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// PriceSeries is a validated NAV history ordered by date.
// Construct with NewPriceSeries; every point has NAV > 0 and dates
// are strictly increasing.
type PriceSeries struct {
	points []PricePoint
}

var (
	ErrEmptySeries    = errors.New("price series is empty")
	ErrUnorderedDates = errors.New("price series dates must be strictly increasing")
	ErrNonPositiveNAV = errors.New("price series NAV must be positive")
)

// NewPriceSeries validates the points and returns a series.
func NewPriceSeries(points []PricePoint) (*PriceSeries, error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}

	for i, p := range points {
		if p.NAV <= 0 {
			return nil, fmt.Errorf("%w: %.4f at %s",
				ErrNonPositiveNAV, p.NAV, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			return nil, fmt.Errorf("%w: %s followed by %s",
				ErrUnorderedDates,
				points[i-1].Date.Format("2006-01-02"),
				p.Date.Format("2006-01-02"))
		}
	}

	cp := make([]PricePoint, len(points))
	copy(cp, points)
	return &PriceSeries{points: cp}, nil
}

// Len returns the number of points.
func (s *PriceSeries) Len() int {
	return len(s.points)
}

// At returns the point at index i.
func (s *PriceSeries) At(i int) PricePoint {
	return s.points[i]
}

// First returns the oldest point.
func (s *PriceSeries) First() PricePoint {
	return s.points[0]
}

// Latest returns the newest point.
func (s *PriceSeries) Latest() PricePoint {
	return s.points[len(s.points)-1]
}

// Points returns the underlying points. Callers must not modify the
// returned slice.
func (s *PriceSeries) Points() []PricePoint {
	return s.points
}

// AnchorAtOrBefore returns the last point dated at or before target.
// ok is false when the series starts after target.
func (s *PriceSeries) AnchorAtOrBefore(target time.Time) (PricePoint, bool) {
	// First index with Date > target
	idx := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(target)
	})
	if idx == 0 {
		return PricePoint{}, false
	}
	return s.points[idx-1], true
}

// Range returns the points dated within [from, to] inclusive.
func (s *PriceSeries) Range(from, to time.Time) []PricePoint {
	lo := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(from)
	})
	hi := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(to)
	})
	return s.points[lo:hi]
}

// SpanDays returns the calendar days between the first and last point.
func (s *PriceSeries) SpanDays() int {
	return int(s.Latest().Date.Sub(s.First().Date).Hours() / 24)
}

// Frequency is the detected sampling frequency of a series.
type Frequency int

const (
	FreqDaily Frequency = iota
	FreqWeekly
	FreqMonthly
)

// String returns the frequency name.
func (f Frequency) String() string {
	switch f {
	case FreqDaily:
		return "daily"
	case FreqWeekly:
		return "weekly"
	case FreqMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// PeriodsPerYear returns the annualization factor for the frequency.
func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case FreqDaily:
		return 252
	case FreqWeekly:
		return 52
	case FreqMonthly:
		return 12
	default:
		return 252
	}
}

// DetectFrequency classifies the sampling frequency from the median
// spacing between points. The median keeps holiday gaps from skewing
// the result. A series with fewer than 2 points reports daily.
func (s *PriceSeries) DetectFrequency() Frequency {
	if len(s.points) < 2 {
		return FreqDaily
	}

	gaps := make([]float64, 0, len(s.points)-1)
	for i := 1; i < len(s.points); i++ {
		gaps = append(gaps, s.points[i].Date.Sub(s.points[i-1].Date).Hours()/24)
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]

	switch {
	case median <= 3:
		return FreqDaily
	case median <= 10:
		return FreqWeekly
	default:
		return FreqMonthly
	}
}
