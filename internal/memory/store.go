// Package memory keeps the per-task append-only log the planner is primed
// with on every loop iteration.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// DefaultRecentLimit is the window size GetRecent uses when the caller passes
// no explicit limit.
const DefaultRecentLimit = 10

// Store holds memory entries keyed by task ID.
//
// Entries are unbounded; callers window at read time via GetRecent. The store
// is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]models.MemoryEntry
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]models.MemoryEntry)}
}

// Remember appends an entry to the task's log. A zero timestamp is filled in
// with the current time.
func (s *Store) Remember(taskID string, entry models.MemoryEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[taskID] = append(s.entries[taskID], entry)
}

// GetRecent returns the last limit entries in insertion order. A limit of
// zero or less returns all entries. The returned slice is a copy.
func (s *Store) GetRecent(taskID string, limit int) []models.MemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[taskID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]models.MemoryEntry, len(all))
	copy(out, all)
	return out
}

// Summarize builds a textual summary of the task goal and the observation,
// appends it as a summary entry, and returns it. Used on terminal transitions
// when the executor did not supply its own summary.
func (s *Store) Summarize(task *models.Task, observation models.Observation) string {
	summary := fmt.Sprintf("Goal: %s. Result: %s. %s", task.Goal, observation.Result, observation.Message)
	if len(observation.Data) > 0 {
		if raw, err := json.Marshal(observation.Data); err == nil {
			summary += " Data: " + string(raw)
		}
	}

	s.Remember(task.ID, models.MemoryEntry{
		Type:    models.MemorySummary,
		Content: summary,
	})
	return summary
}

// Clear removes all entries for the task.
func (s *Store) Clear(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, taskID)
}
