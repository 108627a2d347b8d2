package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event shape written to service outboxes and
// relayed to the bus. Consumers outside this repository decode it, so field
// names and JSON tags must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Topic is the bus topic an envelope is published on.
func (e Envelope) Topic() string {
	return "communitypulse." + e.EventType
}
