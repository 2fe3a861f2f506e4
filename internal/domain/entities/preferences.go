package entities

// UnboundedBudget is the sentinel used when the buyer gave no upper budget.
const UnboundedBudget = 999_999_999

// SchoolPriority expresses how much weight the buyer places on school proximity
type SchoolPriority string

const (
	SchoolPriorityLow    SchoolPriority = "low"
	SchoolPriorityMedium SchoolPriority = "medium"
	SchoolPriorityHigh   SchoolPriority = "high"
)

// Preferences represents a buyer's structured requirements. Constructed once
// per request and immutable afterwards. List fields are never nil so that
// downstream iteration is total.
type Preferences struct {
	BudgetMin      int            `json:"budget_min"`
	BudgetMax      int            `json:"budget_max"`
	MinBeds        int            `json:"min_beds"`
	MinBaths       float64        `json:"min_baths"`
	MinSqft        int            `json:"min_sqft"`
	MinLotSize     float64        `json:"min_lot_size"`
	MustHaves      []string       `json:"must_haves"`
	NiceToHaves    []string       `json:"nice_to_haves"`
	PreferredAreas []string       `json:"preferred_areas"`
	PropertyTypes  []string       `json:"property_types"`
	SchoolPriority SchoolPriority `json:"school_priority"`
	CommuteAddress string         `json:"commute_address,omitempty"`
}

// NewPreferences returns preferences with all defaults applied
func NewPreferences() *Preferences {
	return &Preferences{
		BudgetMax:      UnboundedBudget,
		MustHaves:      []string{},
		NiceToHaves:    []string{},
		PreferredAreas: []string{},
		PropertyTypes:  []string{},
		SchoolPriority: SchoolPriorityMedium,
	}
}

// Normalize fills defaults on a caller-supplied preferences object so the
// invariants above hold regardless of how it was constructed.
func (p *Preferences) Normalize() {
	if p.BudgetMax <= 0 {
		p.BudgetMax = UnboundedBudget
	}
	if p.MustHaves == nil {
		p.MustHaves = []string{}
	}
	if p.NiceToHaves == nil {
		p.NiceToHaves = []string{}
	}
	if p.PreferredAreas == nil {
		p.PreferredAreas = []string{}
	}
	if p.PropertyTypes == nil {
		p.PropertyTypes = []string{}
	}
	switch p.SchoolPriority {
	case SchoolPriorityLow, SchoolPriorityMedium, SchoolPriorityHigh:
	default:
		p.SchoolPriority = SchoolPriorityMedium
	}
}
