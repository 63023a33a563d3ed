// Package catalog provides class groups and the per-class subject catalog.
// Groups are built in; subjects come from an ordered chain of sources with the
// built-in table as the last resort.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// Source fetches a subject table.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (SubjectTable, error)
}

// Chain tries each source in order and returns the first success.
type Chain []Source

func (c Chain) Name() string { return "chain" }

func (c Chain) Fetch(ctx context.Context) (SubjectTable, error) {
	for _, src := range c {
		table, err := src.Fetch(ctx)
		if err != nil {
			slog.Warn("catalog source failed, trying next",
				"source", src.Name(),
				"error", err,
			)
			continue
		}
		if len(table) == 0 {
			slog.Warn("catalog source returned no subjects, trying next", "source", src.Name())
			continue
		}
		slog.Debug("catalog source succeeded", "source", src.Name(), "classes", len(table))
		return table, nil
	}
	return nil, fmt.Errorf("all catalog sources failed")
}
