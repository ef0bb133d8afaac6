package entity

import "time"

// SearchRecord is one row of search analytics, written best-effort after
// every executed search.
type SearchRecord struct {
	ID         string `bson:"_id,omitempty" json:"id"`
	UserID     string `bson:"user_id,omitempty" json:"user_id,omitempty"`
	SessionID  string `bson:"session_id,omitempty" json:"session_id,omitempty"`
	SearchText string `bson:"search_text,omitempty" json:"search_text,omitempty"`

	// Filters is the canonical serialization of the executed FilterSet.
	Filters string `bson:"filters" json:"filters"`

	ResultCount     int64 `bson:"result_count" json:"result_count"`
	ExecutionTimeMs int64 `bson:"execution_time_ms" json:"execution_time_ms"`

	IPAddress string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// PopularSearch is an aggregated trending query.
type PopularSearch struct {
	Query string `bson:"_id" json:"query"`
	Count int64  `bson:"count" json:"count"`
}
