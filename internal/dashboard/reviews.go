package dashboard

import (
	"fmt"
	"strconv"

	"canteen-dashboard/internal/models"
)

// RatingFilter selects the reviews shown in the list view. Zero means
// all ratings.
type RatingFilter int

// RatingAll shows every review
const RatingAll RatingFilter = 0

// ParseRatingFilter parses the rating query parameter ("", "all" or
// "1".."5")
func ParseRatingFilter(s string) (RatingFilter, error) {
	if s == "" || s == "all" {
		return RatingAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 5 {
		return RatingAll, fmt.Errorf("rating filter must be 'all' or 1-5, got %q", s)
	}
	return RatingFilter(n), nil
}

// ReviewStats summarizes the full review snapshot. It is always computed
// over the unfiltered set; the display filter narrows the listed reviews
// only, never these numbers.
type ReviewStats struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	Distribution  [5]int  `json:"rating_distribution"`
}

// ComputeReviewStats derives the average rating and the fixed five-bucket
// histogram (bucket i holds the count of rating i+1). A review with a
// rating outside 1..5 is dropped entirely, from the count and the
// average as well as the buckets, so the bucket counts always sum to
// TotalReviews.
func ComputeReviewStats(reviews []models.Review) ReviewStats {
	var stats ReviewStats
	var sum int

	for _, r := range reviews {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		stats.TotalReviews++
		stats.Distribution[r.Rating-1]++
		sum += r.Rating
	}

	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}

	return stats
}

// BucketPercent returns the share of reviews with the given rating as a
// percentage, 0 when there are no reviews at all.
func (s ReviewStats) BucketPercent(rating int) float64 {
	if s.TotalReviews == 0 || rating < 1 || rating > 5 {
		return 0
	}
	return float64(s.Distribution[rating-1]) / float64(s.TotalReviews) * 100
}

// FilterReviews narrows the review list for display. Stats must be
// computed before filtering, from the full set.
func FilterReviews(reviews []models.Review, filter RatingFilter) []models.Review {
	if filter == RatingAll {
		return reviews
	}

	filtered := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating == int(filter) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
