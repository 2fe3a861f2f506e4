package entities

// SchoolRecord is a school embedded in a listing record
type SchoolRecord struct {
	Rating        float64 `json:"rating"`
	DistanceMiles float64 `json:"distance"`
}

// Listing represents a candidate property being scored. Fetched once per
// request; never mutated after the fetch. Enrichment signals live in a
// separate Enrichment patch keyed by listing ID.
type Listing struct {
	ID           string         `json:"id" db:"id"`
	ZPID         string         `json:"zpid,omitempty" db:"zillow_property_id"`
	Address      string         `json:"address" db:"address"`
	City         string         `json:"city" db:"city"`
	State        string         `json:"state" db:"state"`
	ZipCode      string         `json:"zipcode" db:"zip_code"`
	Price        int64          `json:"price" db:"listing_price"`
	Bedrooms     int            `json:"bedrooms" db:"bedrooms"`
	Bathrooms    float64        `json:"bathrooms" db:"bathrooms"`
	LivingArea   int            `json:"living_area" db:"square_feet"`
	LotSize      float64        `json:"lot_size" db:"lot_size"`
	PropertyType string         `json:"property_type" db:"property_type"`
	YearBuilt    int            `json:"year_built,omitempty" db:"year_built"`
	Description  string         `json:"description" db:"description"`
	Latitude     *float64       `json:"latitude,omitempty" db:"-"`
	Longitude    *float64       `json:"longitude,omitempty" db:"-"`
	Schools      []SchoolRecord `json:"schools" db:"-"`
	DataSource   string         `json:"data_source,omitempty" db:"data_source"`

	// Raw carries the original record for fields not otherwise normalized,
	// e.g. cached risk subscore columns and the raw coordinate object.
	Raw map[string]any `json:"-" db:"-"`
}

// DisplayID returns the listing's display identifier, falling back to the
// source-of-truth ID when no zpid-style identifier exists.
func (l *Listing) DisplayID() string {
	if l.ZPID != "" {
		return l.ZPID
	}
	return l.ID
}
