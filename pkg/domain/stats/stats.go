package stats

import "context"

const (
	AnalysesKey        = "stats:analyses"
	RatingsCountKey    = "stats:ratings:count"
	RatingsSumKey      = "stats:ratings:sum"
	RatingsPositiveKey = "stats:ratings:positive"

	MinScore          = 1
	MaxScore          = 5
	PositiveThreshold = 4
)

// Stats is the public view rendered by the statistics endpoint.
type Stats struct {
	TotalAnalyses int64   `json:"totalAnalyses"`
	TotalRatings  int64   `json:"totalRatings"`
	AverageRating float64 `json:"averageRating"`
	PositiveCount int64   `json:"positiveCount"`
}

// Totals holds the raw counter values as read from the store.
type Totals struct {
	Analyses      int64
	RatingsCount  int64
	RatingsSum    int64
	PositiveCount int64
}

type Store interface {
	IncrAnalyses(ctx context.Context) error
	// AddRating applies count, sum and the conditional positive increment as
	// one atomic batch.
	AddRating(ctx context.Context, score int) error
	// Totals returns zero for any counter that does not exist yet.
	Totals(ctx context.Context) (Totals, error)
}

func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

func IsPositive(score int) bool {
	return score >= PositiveThreshold
}

// Stats derives the public view. The average is rounded half up to one
// decimal place using integer arithmetic, so (5+5+5+2)/4 yields 4.3.
func (t Totals) Stats() Stats {
	s := Stats{
		TotalAnalyses: t.Analyses,
		TotalRatings:  t.RatingsCount,
		PositiveCount: t.PositiveCount,
	}
	if t.RatingsCount > 0 {
		tenths := (20*t.RatingsSum + t.RatingsCount) / (2 * t.RatingsCount)
		s.AverageRating = float64(tenths) / 10
	}
	return s
}
