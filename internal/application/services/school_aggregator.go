package services

import "github.com/homematch-ai/recommender/internal/domain/entities"

// AggregateSchools reduces a listing's embedded school records to an average
// rating and the nearest school distance. Zero ratings are treated as
// missing. Pure function, idempotent.
func AggregateSchools(schools []entities.SchoolRecord) (avgRating float64, closestMiles *float64) {
	var ratingSum float64
	var ratingCount int
	for _, school := range schools {
		if school.Rating > 0 {
			ratingSum += school.Rating
			ratingCount++
		}
	}
	if ratingCount > 0 {
		avgRating = ratingSum / float64(ratingCount)
	}

	for _, school := range schools {
		if school.DistanceMiles <= 0 {
			continue
		}
		if closestMiles == nil || school.DistanceMiles < *closestMiles {
			d := school.DistanceMiles
			closestMiles = &d
		}
	}

	return avgRating, closestMiles
}
