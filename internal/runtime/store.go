package runtime

import (
	"sync"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// taskStore owns every task for the process lifetime. Reads hand out deep
// clones; mutation happens under the store lock via mutate, so HTTP readers
// never observe a half-applied transition.
type taskStore struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
	order []string
}

func newTaskStore() *taskStore {
	return &taskStore{tasks: make(map[string]*models.Task)}
}

func (s *taskStore) add(task *models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
}

// get returns a clone of the task.
func (s *taskStore) get(id string) (*models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// list returns clones of all tasks, most recently created first.
func (s *taskStore) list() []*models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Task, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.tasks[s.order[i]].Clone())
	}
	return out
}

// mutate applies fn to the stored task under the lock and returns a clone of
// the result.
func (s *taskStore) mutate(id string, fn func(*models.Task)) (*models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	fn(task)
	return task.Clone(), true
}
