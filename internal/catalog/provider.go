package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// SourceFallback names the built-in subject table in Provider.Source.
const SourceFallback = "fallback"

// Provider serves the class groups immediately and the subject table once it
// has been fetched. The fetch runs once; if it fails the built-in table is
// used instead, so a started provider always becomes ready.
type Provider struct {
	groups []ClassGroup

	mu       sync.RWMutex
	subjects SubjectTable
	source   string
	ready    chan struct{}
	once     sync.Once
}

// NewProvider creates a provider for the given groups. Nil groups means the
// built-in ones.
func NewProvider(groups []ClassGroup) *Provider {
	if groups == nil {
		groups = DefaultGroups()
	}
	return &Provider{
		groups: groups,
		ready:  make(chan struct{}),
	}
}

// Start fetches the subject table from src in the background. Only the first
// call has any effect.
func (p *Provider) Start(ctx context.Context, src Source) {
	p.once.Do(func() {
		go p.load(ctx, src)
	})
}

// Load fetches the subject table synchronously. Only the first call to Load
// or Start has any effect.
func (p *Provider) Load(ctx context.Context, src Source) {
	p.once.Do(func() {
		p.load(ctx, src)
	})
}

func (p *Provider) load(ctx context.Context, src Source) {
	table, err := src.Fetch(ctx)
	name := src.Name()
	if err != nil || len(table) == 0 {
		slog.Warn("subject catalog unavailable, using built-in table", "source", name, "error", err)
		table = FallbackSubjects()
		name = SourceFallback
	}

	p.mu.Lock()
	p.subjects = table
	p.source = name
	p.mu.Unlock()
	close(p.ready)

	slog.Info("catalog loaded", "source", name, "classes", len(table), "groups", len(p.groups))
}

// Ready is closed once the subject table is available.
func (p *Provider) Ready() <-chan struct{} {
	return p.ready
}

// Wait blocks until the subject table is available or ctx is done.
func (p *Provider) Wait(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Groups returns the class groups in display order.
func (p *Provider) Groups() []ClassGroup {
	return slices.Clone(p.groups)
}

// Group looks up a class group by id.
func (p *Provider) Group(id string) (ClassGroup, bool) {
	for _, g := range p.groups {
		if g.ID == id {
			return g, true
		}
	}
	return ClassGroup{}, false
}

// Subjects returns the subject table. ok is false while the fetch is pending.
func (p *Provider) Subjects() (SubjectTable, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.subjects, p.subjects != nil
}

// Source names where the subject table came from.
func (p *Provider) Source() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}
