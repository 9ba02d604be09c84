// Package models defines the domain types shared by autotag packages.
package models

import "time"

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Op names a single backlink mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Change is one applied backlink mutation on a tag document.
type Change struct {
	Op    Op     `json:"op"`
	Tag   string `json:"tag"`
	Title string `json:"title"`
	// Deleted is set when a removal left the tag document without
	// backlinks and the file was deleted.
	Deleted bool `json:"deleted,omitempty"`
}

// EventKind names a published sync event.
type EventKind string

const (
	EventBacklinkAdded     EventKind = "backlink.added"
	EventBacklinkRemoved   EventKind = "backlink.removed"
	EventTagDeleted        EventKind = "tag.deleted"
	EventDocumentProcessed EventKind = "document.processed"
	EventDocumentForgotten EventKind = "document.forgotten"
)

// Event is a notification about an applied change or a finished document.
type Event struct {
	Kind  EventKind `json:"kind"`
	Title string    `json:"title"`
	Tag   string    `json:"tag,omitempty"`
	Path  string    `json:"path,omitempty"`
}

// Events expands a change into the events it publishes.
func (c Change) Events() []Event {
	switch c.Op {
	case OpAdd:
		return []Event{{Kind: EventBacklinkAdded, Title: c.Title, Tag: c.Tag}}
	case OpRemove:
		evs := []Event{{Kind: EventBacklinkRemoved, Title: c.Title, Tag: c.Tag}}
		if c.Deleted {
			evs = append(evs, Event{Kind: EventTagDeleted, Title: c.Title, Tag: c.Tag})
		}
		return evs
	}
	return nil
}
