package main

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is the completion state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Todo is one item in the store.
type Todo struct {
	ID        string
	Title     string
	Tags      []string
	Status    Status
	CreatedAt time.Time
}

// TodoStats summarizes the store.
type TodoStats struct {
	Total     int
	Completed int
	Pending   int
}

// Store is an in-memory todo store.
type Store struct {
	mu     sync.RWMutex
	todos  map[string]*Todo
	nextID int
}

// NewStore creates a new store with sample data.
func NewStore() *Store {
	s := &Store{
		todos:  make(map[string]*Todo),
		nextID: 1,
	}

	// Add sample todos
	s.Add("Buy groceries", "personal")
	s.Add("Review PR #123", "work", "urgent")
	s.Add("Write documentation", "work")
	s.Add("Call dentist", "personal", "later")
	s.Toggle(s.Add("Fix login bug", "work", "urgent"))

	return s
}

// Add creates a new todo and returns its ID.
func (s *Store) Add(title string, tags ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("todo-%d", s.nextID)
	s.todos[id] = &Todo{
		ID:     id,
		Title:  title,
		Tags:   tags,
		Status: StatusPending,
		// Spread creation times so List has a stable order.
		CreatedAt: time.Now().Add(time.Duration(s.nextID) * time.Millisecond),
	}
	s.nextID++

	return id
}

// Toggle toggles the completed status of a todo.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return false
	}

	if todo.Status == StatusCompleted {
		todo.Status = StatusPending
	} else {
		todo.Status = StatusCompleted
	}
	return true
}

// List returns all todos, optionally filtered by status, newest first.
func (s *Store) List(status Status) []*Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Todo
	for _, todo := range s.todos {
		if status != "" && todo.Status != status {
			continue
		}
		result = append(result, todo)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// Stats returns statistics about the todos.
func (s *Store) Stats() TodoStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats TodoStats
	for _, todo := range s.todos {
		stats.Total++
		if todo.Status == StatusCompleted {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats
}
