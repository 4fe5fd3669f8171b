// Package forecast turns an item's usage history into a daily usage trend,
// projects it forward to a depletion date and ranks items by urgency.
//
// Everything in this package is pure: callers pass immutable snapshots and get
// derived values back. Nothing here performs I/O or keeps state between calls.
package forecast

import (
	"errors"
	"sort"
	"time"

	"stock-forecast-service/internal/domain"
)

// ErrInsufficientData is returned when a history has fewer than two distinct
// usage dates, which is not enough to establish a trend.
var ErrInsufficientData = errors.New("not enough data to predict usage trend")

// DailyUsagePoint is one calendar day of the combined trend series.
type DailyUsagePoint struct {
	Date        time.Time
	ActualUsage float64
	IsForecast  bool
}

// Trend is the gap-filled actual usage series of a single item.
type Trend struct {
	Points  []DailyUsagePoint
	Average float64

	total int64
}

// TotalUsage is the sum of all usage across the span.
func (t Trend) TotalUsage() int64 {
	return t.total
}

// LastDate is the last day with actual usage in the span.
func (t Trend) LastDate() time.Time {
	return t.Points[len(t.Points)-1].Date
}

// BuildTrend groups events by calendar day, fills every missing day between the
// first and last recorded date with zero usage and computes the mean daily usage
// over the whole filled span. Input order does not matter.
func BuildTrend(history []domain.UsageEvent) (Trend, error) {
	byDay := make(map[time.Time]int64, len(history))
	for _, event := range history {
		byDay[domain.DateOf(event.Date)] += int64(event.QuantityUsed)
	}
	if len(byDay) < 2 {
		return Trend{}, ErrInsufficientData
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first, last := days[0], days[len(days)-1]
	points := make([]DailyUsagePoint, 0, domain.DaysBetween(first, last)+1)
	var total int64
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		used := byDay[day]
		total += used
		points = append(points, DailyUsagePoint{Date: day, ActualUsage: float64(used)})
	}

	return Trend{
		Points:  points,
		Average: float64(total) / float64(len(points)),
		total:   total,
	}, nil
}
