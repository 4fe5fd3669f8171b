package forecast

import (
	"time"

	"stock-forecast-service/internal/domain"
)

// DefaultHorizonDays bounds forward simulation to roughly two years.
const DefaultHorizonDays = 730

// Result is the combined actual and forecast series for one item.
// DepletionDate is nil when usage is zero or the horizon ends first.
type Result struct {
	Trend             []DailyUsagePoint
	DepletionDate     *time.Time
	ReorderDate       *time.Time
	AverageDailyUsage float64
}

// Forecaster extrapolates a Trend forward at its average daily usage.
type Forecaster struct {
	horizonDays int
}

// NewForecaster creates a forecaster; a non-positive horizon selects the default.
func NewForecaster(horizonDays int) *Forecaster {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Forecaster{horizonDays: horizonDays}
}

// HorizonDays returns the simulation bound in days.
func (f *Forecaster) HorizonDays() int {
	return f.horizonDays
}

// Predict builds the trend for history and extends it. It returns
// ErrInsufficientData when the history spans fewer than two dates.
func (f *Forecaster) Predict(history []domain.UsageEvent, currentQuantity, threshold int) (Result, error) {
	trend, err := BuildTrend(history)
	if err != nil {
		return Result{}, err
	}
	return f.Extend(trend, currentQuantity, threshold), nil
}

// Extend simulates consumption day by day starting the day after the last
// actual date. Each simulated day consumes the average and is appended as a
// forecast point; the first day remaining stock reaches zero or below is the
// depletion date. The first day it reaches the threshold or below is the
// reorder date.
//
// Remaining stock after k days is q - k*total/n. Comparisons are done on
// q*n - k*total so the result does not drift with float accumulation.
func (f *Forecaster) Extend(trend Trend, currentQuantity, threshold int) Result {
	points := make([]DailyUsagePoint, len(trend.Points))
	copy(points, trend.Points)

	result := Result{AverageDailyUsage: trend.Average}
	total := trend.TotalUsage()
	if total <= 0 {
		result.Trend = points
		return result
	}

	n := int64(len(trend.Points))
	stock := int64(currentQuantity) * n
	reorderLevel := int64(threshold) * n
	last := trend.LastDate()

	for k := 1; k <= f.horizonDays; k++ {
		day := last.AddDate(0, 0, k)
		points = append(points, DailyUsagePoint{
			Date:        day,
			ActualUsage: trend.Average,
			IsForecast:  true,
		})

		remaining := stock - int64(k)*total
		if result.ReorderDate == nil && remaining <= reorderLevel {
			reorder := day
			result.ReorderDate = &reorder
		}
		if remaining <= 0 {
			depletion := day
			result.DepletionDate = &depletion
			break
		}
	}

	result.Trend = points
	return result
}
