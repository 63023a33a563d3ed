package api

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

// Registry holds the live workflows by id.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*schedule.Workflow
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{workflows: make(map[string]*schedule.Workflow)}
}

// Create starts a workflow under a fresh id. Any id in cfg is replaced.
func (r *Registry) Create(cfg schedule.Config) (*schedule.Workflow, error) {
	cfg.ID = uuid.NewString()
	wf, err := schedule.NewWorkflow(cfg)
	if err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}

	r.mu.Lock()
	r.workflows[cfg.ID] = wf
	r.mu.Unlock()
	return wf, nil
}

// Get looks up a workflow.
func (r *Registry) Get(id string) (*schedule.Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wf, ok := r.workflows[id]
	return wf, ok
}

// Delete discards a workflow. It reports whether the workflow existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workflows[id]; !ok {
		return false
	}
	delete(r.workflows, id)
	return true
}

// Len returns the number of live workflows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}
