package mapper

import (
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/pager"
)

// Registry holds statements by id. It is safe for concurrent use, and
// Replace swaps its whole content atomically.
type Registry struct {
	mu    sync.RWMutex
	stmts map[string]*Statement
}

// NewRegistry returns a registry holding stmts.
func NewRegistry(stmts ...*Statement) (*Registry, error) {
	r := &Registry{stmts: make(map[string]*Statement)}
	if err := r.Register(stmts...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds statements. Registering an id twice is an error.
func (r *Registry) Register(stmts ...*Statement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stmts {
		if _, ok := r.stmts[s.ID]; ok {
			return fmt.Errorf("pager/mapper: duplicate statement %q", s.ID)
		}
		r.stmts[s.ID] = s
	}
	return nil
}

// Replace swaps the registry content with stmts.
func (r *Registry) Replace(stmts []*Statement) error {
	m := make(map[string]*Statement, len(stmts))
	for _, s := range stmts {
		if _, ok := m[s.ID]; ok {
			return fmt.Errorf("pager/mapper: duplicate statement %q", s.ID)
		}
		m[s.ID] = s
	}
	r.mu.Lock()
	r.stmts = m
	r.mu.Unlock()
	return nil
}

// Statement returns the statement registered under id.
func (r *Registry) Statement(id string) (*Statement, error) {
	r.mu.RLock()
	s, ok := r.stmts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, pager.NewStatementError(id, "", pager.ErrStatementNotFound)
	}
	return s, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.stmts))
	for id := range r.stmts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
