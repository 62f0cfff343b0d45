package business

import "strings"

// Filters narrows a record list. Zero values disable the corresponding check.
type Filters struct {
	MinRating        float64
	MinReviews       int
	Categories       []string
	LocationKeywords []string
}

// Merge collapses records sharing the same name+address key into one. The
// first occurrence keeps its position and values; later duplicates only fill
// fields that are still empty.
func Merge(records []Record) []Record {
	pos := make(map[string]int, len(records))
	merged := make([]Record, 0, len(records))

	for _, r := range records {
		key := r.Key()
		if i, ok := pos[key]; ok {
			merged[i].Fill(r)
			continue
		}
		pos[key] = len(merged)
		merged = append(merged, r)
	}

	return merged
}

// Filter returns the records matching every active criterion in f.
// Rating and review thresholds are inclusive.
func Filter(records []Record, f Filters) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filters) match(r Record) bool {
	if f.MinRating > 0 && CleanRating(r.Rating) < f.MinRating {
		return false
	}
	if f.MinReviews > 0 && CleanReviewsCount(r.ReviewsCount) < f.MinReviews {
		return false
	}
	if len(f.Categories) > 0 && !containsAny(r.Category, f.Categories) {
		return false
	}
	if len(f.LocationKeywords) > 0 && !containsAny(r.Address, f.LocationKeywords) {
		return false
	}
	return true
}

// Active reports whether any criterion is set.
func (f Filters) Active() bool {
	return f.MinRating > 0 || f.MinReviews > 0 || len(f.Categories) > 0 || len(f.LocationKeywords) > 0
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Reindex assigns 1-based indexes in slice order.
func Reindex(records []Record) {
	for i := range records {
		records[i].Index = i + 1
	}
}
