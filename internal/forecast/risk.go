package forecast

import (
	"sort"
	"sync"
	"time"

	"stock-forecast-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Item is the snapshot of one tracked stock record fed to the ranker.
type Item struct {
	StockID     int64
	CastingType string
	Quantity    int
	Threshold   int
	History     []domain.UsageEvent
}

// RiskEntry is one row of the urgency ranking.
type RiskEntry struct {
	StockID       int64
	CastingType   string
	DepletionDate time.Time
	DaysLeft      int
	AvgUsage      float64
	CurrentStock  int
}

// RiskRanker forecasts every item and orders them by days left.
type RiskRanker struct {
	forecaster *Forecaster
	workers    int
}

func NewRiskRanker(forecaster *Forecaster, workers int) *RiskRanker {
	if workers < 1 {
		workers = 1
	}
	return &RiskRanker{forecaster: forecaster, workers: workers}
}

// Rank forecasts items concurrently and returns entries for those with a
// depletion date, most urgent first. Items without enough data or without a
// depletion date are left out. Ties keep input order.
func (r *RiskRanker) Rank(items []Item, today time.Time) []RiskEntry {
	ranked := make([]*RiskEntry, len(items))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				ranked[i] = r.evaluate(items[i], today)
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	entries := make([]RiskEntry, 0, len(items))
	for _, entry := range ranked {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysLeft < entries[j].DaysLeft
	})
	return entries
}

func (r *RiskRanker) evaluate(item Item, today time.Time) *RiskEntry {
	result, err := r.forecaster.Predict(item.History, item.Quantity, item.Threshold)
	if err != nil || result.DepletionDate == nil {
		return nil
	}
	return &RiskEntry{
		StockID:       item.StockID,
		CastingType:   item.CastingType,
		DepletionDate: *result.DepletionDate,
		DaysLeft:      domain.DaysBetween(today, *result.DepletionDate),
		AvgUsage:      RoundUsage(result.AverageDailyUsage),
		CurrentStock:  item.Quantity,
	}
}

// RoundUsage rounds an average to two decimal places for display, half to even.
func RoundUsage(avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	return decimal.NewFromFloat(avg).RoundBank(2).InexactFloat64()
}
