package models

import "time"

// Checklist is the stored checklist row. The item payload is kept as a
// serialized JSON document in Data; Version is the optimistic-lock counter
// and is only ever incremented by the store.
type Checklist struct {
	Key        string    `json:"key" badgerhold:"key"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Data       string    `json:"data"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ChecklistItem is a single entry on a checklist.
type ChecklistItem struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// ChecklistData is the wire representation of a checklist as clients see it.
// Clients read Version and echo it back unchanged on updates.
type ChecklistData struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	DoneCount int             `json:"doneCount"`
	Items     []ChecklistItem `json:"items"`
}

// Location returns the resource URI for this checklist under baseURI
// (baseURI must end with a slash).
func (d *ChecklistData) Location(baseURI string) string {
	return baseURI + d.Key
}

// CountDone returns the number of completed items. DoneCount is derived
// server-side; client-submitted values are overwritten.
func (d *ChecklistData) CountDone() int {
	n := 0
	for _, item := range d.Items {
		if item.Done {
			n++
		}
	}
	return n
}

// ConflictResolution is the outcome of a versioned update. When Applied is
// false the update conflicted and Data carries the authoritative server
// state at Version, never the client submission.
type ConflictResolution struct {
	Applied bool
	Version int
	Data    *ChecklistData
}
