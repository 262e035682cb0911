package dashboard

import (
	"testing"

	"canteen-dashboard/internal/models"
)

func TestComputeReviewStats_Distribution(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5}, {Rating: 5}, {Rating: 4}, {Rating: 3}, {Rating: 1},
	}

	stats := ComputeReviewStats(reviews)

	want := [5]int{1, 0, 1, 0, 2}
	if stats.Distribution != want {
		t.Errorf("Distribution = %v, want %v", stats.Distribution, want)
	}
	if stats.TotalReviews != 5 {
		t.Errorf("TotalReviews = %d, want 5", stats.TotalReviews)
	}

	var sum int
	for _, n := range stats.Distribution {
		sum += n
	}
	if sum != stats.TotalReviews {
		t.Errorf("bucket sum %d != TotalReviews %d", sum, stats.TotalReviews)
	}

	if want := 3.6; stats.AverageRating != want {
		t.Errorf("AverageRating = %v, want %v", stats.AverageRating, want)
	}
}

func TestComputeReviewStats_OutOfRangeDropped(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5}, {Rating: 0}, {Rating: 3}, {Rating: 6}, {Rating: -2},
	}

	stats := ComputeReviewStats(reviews)

	// Ratings outside 1..5 are dropped entirely, never half-counted
	if stats.TotalReviews != 2 {
		t.Errorf("TotalReviews = %d, want 2", stats.TotalReviews)
	}
	if want := [5]int{0, 0, 1, 0, 1}; stats.Distribution != want {
		t.Errorf("Distribution = %v, want %v", stats.Distribution, want)
	}

	var sum int
	for _, n := range stats.Distribution {
		sum += n
	}
	if sum != stats.TotalReviews {
		t.Errorf("bucket sum %d != TotalReviews %d", sum, stats.TotalReviews)
	}

	if want := 4.0; stats.AverageRating != want {
		t.Errorf("AverageRating = %v, want %v", stats.AverageRating, want)
	}
}

func TestComputeReviewStats_Empty(t *testing.T) {
	stats := ComputeReviewStats(nil)
	if stats.AverageRating != 0 || stats.TotalReviews != 0 {
		t.Errorf("empty set: got %+v, want zero stats", stats)
	}
	if stats.Distribution != [5]int{} {
		t.Errorf("Distribution = %v, want all zeroes", stats.Distribution)
	}
}

func TestReviewStats_BucketPercent(t *testing.T) {
	stats := ComputeReviewStats([]models.Review{
		{Rating: 5}, {Rating: 5}, {Rating: 4}, {Rating: 2},
	})

	tests := []struct {
		rating int
		want   float64
	}{
		{5, 50},
		{4, 25},
		{3, 0},
		{2, 25},
		{1, 0},
		{0, 0},
		{6, 0},
	}
	for _, tt := range tests {
		if got := stats.BucketPercent(tt.rating); got != tt.want {
			t.Errorf("BucketPercent(%d) = %v, want %v", tt.rating, got, tt.want)
		}
	}

	var empty ReviewStats
	if got := empty.BucketPercent(5); got != 0 {
		t.Errorf("BucketPercent on empty stats = %v, want 0", got)
	}
}

func TestFilterReviews_DoesNotAffectStats(t *testing.T) {
	reviews := []models.Review{
		{ID: "a", Rating: 5}, {ID: "b", Rating: 3}, {ID: "c", Rating: 5},
	}

	before := ComputeReviewStats(reviews)
	filtered := FilterReviews(reviews, RatingFilter(5))

	if len(filtered) != 2 {
		t.Fatalf("filtered %d reviews, want 2", len(filtered))
	}
	for _, r := range filtered {
		if r.Rating != 5 {
			t.Errorf("filter let through rating %d", r.Rating)
		}
	}

	// Stats always come from the unfiltered set
	after := ComputeReviewStats(reviews)
	if before != after {
		t.Errorf("stats changed across filtering: %+v vs %+v", before, after)
	}
}

func TestFilterReviews_All(t *testing.T) {
	reviews := []models.Review{{Rating: 1}, {Rating: 2}}
	if got := FilterReviews(reviews, RatingAll); len(got) != len(reviews) {
		t.Errorf("RatingAll returned %d reviews, want %d", len(got), len(reviews))
	}
}

func TestParseRatingFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    RatingFilter
		wantErr bool
	}{
		{"", RatingAll, false},
		{"all", RatingAll, false},
		{"1", RatingFilter(1), false},
		{"5", RatingFilter(5), false},
		{"0", RatingAll, true},
		{"6", RatingAll, true},
		{"-1", RatingAll, true},
		{"five", RatingAll, true},
	}
	for _, tt := range tests {
		got, err := ParseRatingFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRatingFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRatingFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
