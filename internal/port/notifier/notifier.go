// Package notifier defines the alert dispatch port. Delivery (email, push)
// is an external concern; the core only enqueues.
package notifier

import (
	"context"

	"github.com/davidjirca/dreamhome/internal/entity"
)

type AlertKind string

const (
	AlertNewListing AlertKind = "new_listing"
	AlertPriceDrop  AlertKind = "price_drop"
	AlertDigest     AlertKind = "digest"
)

type NewListingPayload struct {
	SearchID   string           `json:"search_id"`
	SearchName string           `json:"search_name"`
	Property   *entity.Property `json:"property"`
}

type PriceDropPayload struct {
	Property         *entity.Property `json:"property"`
	OldPrice         int64            `json:"old_price"`
	NewPrice         int64            `json:"new_price"`
	PriceDropPercent float64          `json:"price_drop_percent"`
}

type DigestSection struct {
	SearchID   string             `json:"search_id"`
	SearchName string             `json:"search_name"`
	NewCount   int64              `json:"new_count"`
	Properties []*entity.Property `json:"properties"`
}

type DigestPayload struct {
	Frequency  entity.NotificationFrequency `json:"frequency"`
	Sections   []DigestSection              `json:"sections"`
	PriceDrops []PriceDropPayload           `json:"price_drops,omitempty"`
}

type Dispatcher interface {
	Enqueue(ctx context.Context, kind AlertKind, userID string, payload interface{}) error
}
