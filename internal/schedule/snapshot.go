package schedule

// Snapshot is a read-only copy of a workflow for display.
type Snapshot struct {
	ID           string              `json:"id"`
	State        State               `json:"state"`
	TestKind     TestKind            `json:"testKind"`
	Tag          TestTag             `json:"tag,omitempty"`
	Month        string              `json:"month,omitempty"`
	GroupID      string              `json:"groupId,omitempty"`
	EditMode     bool                `json:"editMode"`
	TestID       string              `json:"testId,omitempty"`
	CatalogReady bool                `json:"catalogReady"`
	Classes      []ClassSnapshot     `json:"classes"`
	Pending      []PendingTransition `json:"pending,omitempty"`
	Summary      *Summary            `json:"summary,omitempty"`
	LastError    string              `json:"lastError,omitempty"`
}

// ClassSnapshot is one selected class with its rows.
type ClassSnapshot struct {
	Class    int          `json:"class"`
	MaxScore *int         `json:"maxScore,omitempty"`
	Rows     []SubjectRow `json:"rows"`
}

// PendingTransition is a switch waiting for confirmation.
type PendingTransition struct {
	Gate GateKind `json:"gate"`
	From string   `json:"from"`
	To   string   `json:"to"`
}

// Snapshot copies the current workflow state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		ID:       w.id,
		State:    w.state,
		TestKind: w.kind,
		Tag:      w.tag,
		Month:    w.month,
		EditMode: w.edit != nil,
		Classes:  []ClassSnapshot{},
	}
	if w.edit != nil {
		snap.TestID = w.edit.TestID
	}
	if g, ok := w.sel.Group(); ok {
		snap.GroupID = g.ID
	}
	_, snap.CatalogReady = w.catalog.Subjects()

	for _, class := range w.sel.Classes() {
		cs := ClassSnapshot{Class: class, Rows: w.sel.Rows(class)}
		if score, ok := w.sel.MaxScore(class); ok {
			cs.MaxScore = &score
		}
		snap.Classes = append(snap.Classes, cs)
	}
	for _, gate := range []*Gate{w.guard.Group, w.guard.Kind} {
		if from, to, ok := gate.Pending(); ok {
			snap.Pending = append(snap.Pending, PendingTransition{Gate: gate.kind, From: from, To: to})
		}
	}
	if w.summary != nil {
		s := *w.summary
		snap.Summary = &s
	}
	if w.lastErr != nil {
		snap.LastError = w.lastErr.Error()
	}
	return snap
}
