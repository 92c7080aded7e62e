package api

import "time"

// FilterOptionsResponse lists, per filterable attribute, the distinct
// values observed in the active dataset snapshot, in display order.
type FilterOptionsResponse struct {
	Options  map[string][]string `json:"options"`
	Rows     int                 `json:"rows"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// DatasetHealth describes the active dataset snapshot.
type DatasetHealth struct {
	Rows         int       `json:"rows"`
	RejectedRows int       `json:"rejected_rows"`
	SourceHash   string    `json:"source_hash"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// HealthResponse is the service health report.
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Dataset   DatasetHealth `json:"dataset"`
}
