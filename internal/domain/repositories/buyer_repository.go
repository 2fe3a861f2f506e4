package repositories

import "context"

// BuyerRepository exposes the buyer profile fields the pipeline needs.
type BuyerRepository interface {
	// ContactPhone returns the buyer's notification phone number, or empty
	// when the buyer has none on file or has opted out.
	ContactPhone(ctx context.Context, buyerID string) (string, error)
}
