package entities

import "time"

// RecommendationEventChannel is the pub/sub channel scored-run events are
// published on.
const RecommendationEventChannel = "recommendations.scored"

// RecommendationEvent announces that a buyer's recommendations were
// re-scored, so downstream consumers (notification senders, dashboards)
// can react without polling the tracking store.
type RecommendationEvent struct {
	ID         string    `json:"id"`
	BuyerID    string    `json:"buyer_id"`
	ListingIDs []string  `json:"listing_ids"`
	TopScore   float64   `json:"top_score"`
	CreatedAt  time.Time `json:"created_at"`
}
