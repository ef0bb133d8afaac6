package entity

import "time"

// PropertyEventKind names the mutation that produced an event.
type PropertyEventKind string

const (
	EventCreated      PropertyEventKind = "created"
	EventUpdated      PropertyEventKind = "updated"
	EventPublished    PropertyEventKind = "published"
	EventUnpublished  PropertyEventKind = "unpublished"
	EventDeleted      PropertyEventKind = "deleted"
	EventPriceChanged PropertyEventKind = "price_changed"
)

// PropertyEvent is emitted at commit time for every listing mutation. It is
// consumed best-effort: the event is not durably queued or retried.
type PropertyEvent struct {
	Kind       PropertyEventKind `json:"kind"`
	PropertyID string            `json:"property_id"`

	// Snapshot of the listing's searchable attributes, used by the
	// saved-search matcher without a store round-trip. Nil for deletes.
	Property *Property `json:"property,omitempty"`

	// Set only for price_changed events.
	OldPrice int64 `json:"old_price,omitempty"`
	NewPrice int64 `json:"new_price,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
