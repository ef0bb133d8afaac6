package entity

import "time"

// SavedSearch is a user-owned search whose filters are stored verbatim as the
// JSON form of the raw search parameters.
type SavedSearch struct {
	ID     string `bson:"_id,omitempty" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`

	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// Raw filter payload, deserialized into a search.Params on evaluation.
	Filters []byte `bson:"filters" json:"filters"`

	AlertEnabled     bool                  `bson:"alert_enabled" json:"alert_enabled"`
	AlertFrequency   NotificationFrequency `bson:"alert_frequency" json:"alert_frequency"`
	AlertNewListings bool                  `bson:"alert_new_listings" json:"alert_new_listings"`
	AlertPriceDrops  bool                  `bson:"alert_price_drops" json:"alert_price_drops"`

	LastAlertedAt *time.Time `bson:"last_alerted_at,omitempty" json:"last_alerted_at,omitempty"`
	LastCheckedAt *time.Time `bson:"last_checked_at,omitempty" json:"last_checked_at,omitempty"`

	IsActive    bool  `bson:"is_active" json:"is_active"`
	ResultCount int64 `bson:"result_count" json:"result_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Favorite struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	PropertyID string    `bson:"property_id" json:"property_id"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// PriceChange is one row of a property's price history.
type PriceChange struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	PropertyID     string    `bson:"property_id" json:"property_id"`
	OldPrice       int64     `bson:"old_price" json:"old_price"`
	NewPrice       int64     `bson:"new_price" json:"new_price"`
	ChangePercent  float64   `bson:"change_percent" json:"change_percent"`
	ChangedAt      time.Time `bson:"changed_at" json:"changed_at"`
}

// PriceChangePercent is (new-old)/old*100, negative for drops.
func PriceChangePercent(oldPrice, newPrice int64) float64 {
	if oldPrice == 0 {
		return 0
	}
	return float64(newPrice-oldPrice) / float64(oldPrice) * 100
}
