package sync

import "time"

type Collection string

const (
	CollUsers        Collection = "users"
	CollPatients     Collection = "patients"
	CollAppointments Collection = "appointments"
)

type CollectionStatus string

const (
	StatusIdle       CollectionStatus = "idle"
	StatusLoading    CollectionStatus = "loading"
	StatusLoaded     CollectionStatus = "loaded"
	StatusLoadFailed CollectionStatus = "load_failed"
)

// CollectionState is the externally visible state of one collection: its
// load status, the monotonic version that optimistic writes must target, and
// the last sync outcome.
type CollectionState struct {
	Status   CollectionStatus `json:"status"`
	Version  uint64           `json:"version"`
	LastSync time.Time        `json:"lastSync,omitempty"`
	LastErr  string           `json:"lastError,omitempty"`
}

// collState is the internal mutable counterpart.
type collState struct {
	status   CollectionStatus
	version  uint64
	lastSync time.Time
	lastErr  string
}

func (c *collState) view() CollectionState {
	return CollectionState{
		Status:   c.status,
		Version:  c.version,
		LastSync: c.lastSync,
		LastErr:  c.lastErr,
	}
}
