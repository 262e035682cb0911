package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"canteen-dashboard/internal/models"
)

// DashboardStats is derived from the order and review snapshots. It is
// never stored; recomputing it on the same snapshot yields identical
// values.
type DashboardStats struct {
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TodayEarnings decimal.Decimal `json:"today_earnings"`
	TotalOrders   int             `json:"total_orders"`
	AverageRating float64         `json:"average_rating"`
}

// ComputeStats derives the dashboard summary from one consistent
// snapshot. Earnings count completed orders only; today's earnings are
// additionally restricted to orders created since local midnight of now.
// TotalOrders counts every order regardless of status: that asymmetry
// with the earnings filters is intentional and must stay.
func ComputeStats(orders []models.Order, reviews []models.Review, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalEarnings: decimal.Zero,
		TodayEarnings: decimal.Zero,
		TotalOrders:   len(orders),
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, o := range orders {
		if o.Status != models.StatusCompleted {
			continue
		}
		stats.TotalEarnings = stats.TotalEarnings.Add(o.TotalAmount)
		if !o.CreatedAt.Before(midnight) {
			stats.TodayEarnings = stats.TodayEarnings.Add(o.TotalAmount)
		}
	}

	// Same rule as the review screen: ratings outside 1..5 are dropped
	var sum, rated int
	for _, r := range reviews {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		sum += r.Rating
		rated++
	}
	if rated > 0 {
		stats.AverageRating = float64(sum) / float64(rated)
	}

	return stats
}
