package business

import "sort"

const (
	topRatedThreshold = 4.5
	topListSize       = 10
)

// CategoryCount is one row of the category histogram.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Report summarizes a scraped record list.
type Report struct {
	RunID                 string          `json:"run_id,omitempty"`
	TotalBusinesses       int             `json:"total_businesses"`
	BusinessesWithRating  int             `json:"businesses_with_rating"`
	BusinessesWithPhone   int             `json:"businesses_with_phone"`
	BusinessesWithWebsite int             `json:"businesses_with_website"`
	BusinessesWithHours   int             `json:"businesses_with_hours"`
	AverageRating         float64         `json:"average_rating"`
	RatingDistribution    map[string]int  `json:"rating_distribution"`
	Categories            []CategoryCount `json:"categories"`
	TopRated              []Record        `json:"top_rated"`
	MostReviewed          []Record        `json:"most_reviewed"`
}

// NewReport computes coverage and ranking statistics for records.
func NewReport(records []Record) Report {
	rep := Report{
		TotalBusinesses:    len(records),
		RatingDistribution: map[string]int{"5": 0, "4": 0, "3": 0, "2": 0, "1": 0},
	}
	if len(records) == 0 {
		return rep
	}

	var ratingSum float64
	categories := make(map[string]int)

	for _, r := range records {
		if r.Rating != "" {
			rep.BusinessesWithRating++
			rating := CleanRating(r.Rating)
			ratingSum += rating

			if bucket := int(rating); bucket >= 1 && bucket <= 5 {
				rep.RatingDistribution[string(rune('0'+bucket))]++
			}
		}
		if r.Phone != "" {
			rep.BusinessesWithPhone++
		}
		if r.Website != "" {
			rep.BusinessesWithWebsite++
		}
		if r.Hours != "" {
			rep.BusinessesWithHours++
		}

		category := r.Category
		if category == "" {
			category = "Unknown"
		}
		categories[category]++
	}

	if rep.BusinessesWithRating > 0 {
		rep.AverageRating = ratingSum / float64(rep.BusinessesWithRating)
	}

	for name, n := range categories {
		rep.Categories = append(rep.Categories, CategoryCount{Category: name, Count: n})
	}
	sort.Slice(rep.Categories, func(i, j int) bool {
		if rep.Categories[i].Count != rep.Categories[j].Count {
			return rep.Categories[i].Count > rep.Categories[j].Count
		}
		return rep.Categories[i].Category < rep.Categories[j].Category
	})

	var topRated []Record
	var reviewed []Record
	for _, r := range records {
		if CleanRating(r.Rating) >= topRatedThreshold {
			topRated = append(topRated, r)
		}
		if r.ReviewsCount != "" {
			reviewed = append(reviewed, r)
		}
	}
	sort.SliceStable(topRated, func(i, j int) bool {
		return CleanRating(topRated[i].Rating) > CleanRating(topRated[j].Rating)
	})
	sort.SliceStable(reviewed, func(i, j int) bool {
		return CleanReviewsCount(reviewed[i].ReviewsCount) > CleanReviewsCount(reviewed[j].ReviewsCount)
	})
	rep.TopRated = head(topRated, topListSize)
	rep.MostReviewed = head(reviewed, topListSize)

	return rep
}

func head(records []Record, n int) []Record {
	if len(records) > n {
		return records[:n]
	}
	return records
}
