package models

import "time"

// MemoryEntryType categorizes a memory entry.
type MemoryEntryType string

const (
	// MemoryThought records planner reasoning.
	MemoryThought MemoryEntryType = "thought"

	// MemoryAction records an intent to execute an action.
	MemoryAction MemoryEntryType = "action"

	// MemoryObservation records an executor observation.
	MemoryObservation MemoryEntryType = "observation"

	// MemorySummary records a terminal summary.
	MemorySummary MemoryEntryType = "summary"
)

// MemoryEntry is a single item in a task's append-only memory log.
// The recent window of entries primes the planner on each iteration.
type MemoryEntry struct {
	// Type categorizes the entry.
	Type MemoryEntryType `json:"type"`

	// Content is the entry text.
	Content string `json:"content"`

	// Timestamp is when the entry was appended.
	Timestamp time.Time `json:"timestamp"`

	// Metadata holds optional structured payload, such as observation data.
	Metadata map[string]any `json:"metadata,omitempty"`
}
