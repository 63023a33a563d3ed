package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/p-n-ai/pai-assess/internal/catalog"
	"github.com/p-n-ai/pai-assess/internal/events"
)

// State is the submission state of a workflow.
type State int

const (
	StateDraft State = iota
	StateReviewing
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateReviewing:
		return "reviewing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CatalogSource provides class groups and, once fetched, the subject table.
type CatalogSource interface {
	Group(id string) (catalog.ClassGroup, bool)
	Subjects() (catalog.SubjectTable, bool)
}

// Submitter hands a compiled request to the submission service. A false
// result with a nil error means the service rejected the request.
type Submitter interface {
	Submit(ctx context.Context, req Request) (bool, error)
}

// EditRecord is an existing test loaded for editing. Tag is the composed tag
// as stored ("Monthly_March").
type EditRecord struct {
	TestID   string   `json:"testId" validate:"required"`
	GroupID  string   `json:"groupId" validate:"required"`
	Class    int      `json:"class" validate:"required,min=1"`
	Kind     TestKind `json:"testKind" validate:"required,oneof=syllabus remedial"`
	Tag      string   `json:"tag" validate:"required"`
	Subject  string   `json:"subject" validate:"required"`
	TestDate Date     `json:"testDate"`
	Deadline Date     `json:"deadline"`
	MaxScore int      `json:"maxScore,omitempty" validate:"omitempty,min=1,max=100"`
}

// Config holds the dependencies of a workflow.
type Config struct {
	ID        string
	Kind      TestKind // default syllabus
	Catalog   CatalogSource
	Submitter Submitter
	Events    events.Logger
	Edit      *EditRecord // nil for a fresh workflow
}

// Workflow drives one batch configuration from draft to submission. All
// methods are safe for concurrent use; edits are applied one at a time.
type Workflow struct {
	mu        sync.Mutex
	id        string
	state     State
	sel       *Selection
	kind      TestKind
	tag       TestTag
	month     string
	guard     *Guard
	catalog   CatalogSource
	submitter Submitter
	events    events.Logger
	edit      *EditRecord
	summary   *Summary
	lastErr   error
}

// NewWorkflow creates a workflow in the draft state. With cfg.Edit set, the
// selection is seeded from the existing test.
func NewWorkflow(cfg Config) (*Workflow, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if cfg.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	kind := cfg.Kind
	if kind == "" {
		kind = KindSyllabus
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown test kind %q", kind)
	}
	logger := cfg.Events
	if logger == nil {
		logger = events.NopLogger{}
	}

	w := &Workflow{
		id:        cfg.ID,
		state:     StateDraft,
		sel:       NewSelection(),
		kind:      kind,
		guard:     NewGuard(),
		catalog:   cfg.Catalog,
		submitter: cfg.Submitter,
		events:    logger,
	}

	if cfg.Edit != nil {
		if err := w.seed(*cfg.Edit); err != nil {
			return nil, fmt.Errorf("loading test %s: %w", cfg.Edit.TestID, err)
		}
	}

	w.emit("workflow.created", map[string]any{"test_kind": string(w.kind), "edit": w.edit != nil})
	return w, nil
}

func (w *Workflow) seed(rec EditRecord) error {
	if !rec.Kind.Valid() {
		return fmt.Errorf("unknown test kind %q", rec.Kind)
	}
	group, ok := w.catalog.Group(rec.GroupID)
	if !ok {
		return fmt.Errorf("group %q: %w", rec.GroupID, ErrUnknownGroup)
	}
	tag, month := SplitTag(rec.Tag)
	if !tag.ValidFor(rec.Kind) {
		return fmt.Errorf("tag %q: %w", rec.Tag, ErrInvalidTag)
	}

	row := SubjectRow{Subject: rec.Subject}
	if !rec.TestDate.IsZero() {
		d := rec.TestDate
		row.TestDate = &d
	}
	if !rec.Deadline.IsZero() {
		d := rec.Deadline
		row.Deadline = &d
	}
	maxScore := 0
	if rec.Kind.HasMaxScore() {
		maxScore = rec.MaxScore
	}
	sel, err := NewEditSelection(group, rec.Class, row, maxScore)
	if err != nil {
		return err
	}

	w.sel = sel
	w.kind = rec.Kind
	w.tag = tag
	w.month = month
	w.edit = &rec
	return nil
}

// ID returns the workflow id.
func (w *Workflow) ID() string {
	return w.id
}

// State returns the current submission state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns the most recent submission error, if any.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// SelectGroup switches the active class group. Switching away from a
// populated selection returns a *TransitionConflict and waits for
// ConfirmTransition.
func (w *Workflow) SelectGroup(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireDraft(); err != nil {
		return err
	}
	if w.edit != nil {
		return fmt.Errorf("group: %w", ErrEditModeLocked)
	}
	group, ok := w.catalog.Group(id)
	if !ok {
		return fmt.Errorf("group %q: %w", id, ErrUnknownGroup)
	}

	current := ""
	if g, ok := w.sel.Group(); ok {
		current = g.ID
	}
	err := w.guard.Group.Request(current, group.ID, w.sel.Empty(), func() error {
		w.sel.Clear()
		if err := w.sel.SelectGroup(group); err != nil {
			return err
		}
		w.emit("group.selected", map[string]any{"group_id": group.ID})
		return nil
	})
	w.noteConflict(err)
	return err
}

// SetTestKind switches the test kind. Like SelectGroup, a populated selection
// makes the switch wait for confirmation. The tag is reset when it is not
// valid for the new kind.
func (w *Workflow) SetTestKind(kind TestKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireDraft(); err != nil {
		return err
	}
	if w.edit != nil {
		return fmt.Errorf("test kind: %w", ErrEditModeLocked)
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown test kind %q", kind)
	}

	err := w.guard.Kind.Request(string(w.kind), string(kind), w.sel.Empty(), func() error {
		w.sel.Clear()
		w.kind = kind
		if !w.tag.ValidFor(kind) {
			w.tag = ""
			w.month = ""
		}
		w.emit("kind.changed", map[string]any{"test_kind": string(kind)})
		return nil
	})
	w.noteConflict(err)
	return err
}

// ConfirmTransition applies the switch pending on gate: the selection is
// cleared and the new value applied.
func (w *Workflow) ConfirmTransition(gate GateKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireDraft(); err != nil {
		return err
	}
	g := w.guard.Gate(gate)
	if g == nil {
		return fmt.Errorf("unknown gate %q", gate)
	}
	from, to, _ := g.Pending()
	if err := g.Confirm(); err != nil {
		return err
	}
	w.emit("transition.confirmed", map[string]any{"gate": string(gate), "from": from, "to": to})
	return nil
}

// CancelTransition drops the switch pending on gate. The selection is untouched.
func (w *Workflow) CancelTransition(gate GateKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	g := w.guard.Gate(gate)
	if g == nil {
		return fmt.Errorf("unknown gate %q", gate)
	}
	from, to, _ := g.Pending()
	if err := g.Cancel(); err != nil {
		return err
	}
	w.emit("transition.cancelled", map[string]any{"gate": string(gate), "from": from, "to": to})
	return nil
}

// SetTag sets the test tag and, for monthly tests, the month. The month is
// dropped for other tags.
func (w *Workflow) SetTag(tag TestTag, month string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireDraft(); err != nil {
		return err
	}
	if !tag.ValidFor(w.kind) {
		return fmt.Errorf("%q for %s: %w", tag, w.kind, ErrInvalidTag)
	}
	if !tag.NeedsMonth() {
		month = ""
	} else if month != "" && !IsMonth(month) {
		return fmt.Errorf("%q: %w", month, ErrInvalidMonth)
	}
	w.tag = tag
	w.month = month
	return nil
}

// ToggleClass selects or deselects a class of the active group.
func (w *Workflow) ToggleClass(class int) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStructural("class"); err != nil {
		return false, err
	}
	return w.sel.ToggleClass(class)
}

// SetMaxScore sets the max score of a selected class. Only syllabus tests
// carry a max score.
func (w *Workflow) SetMaxScore(class, value int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStructural("max score"); err != nil {
		return err
	}
	if !w.kind.HasMaxScore() {
		return ErrMaxScoreNotApplicable
	}
	return w.sel.SetMaxScore(class, value)
}

// AddSubjectRow appends a blank subject row to a selected class.
func (w *Workflow) AddSubjectRow(class int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStructural("subject rows"); err != nil {
		return 0, err
	}
	return w.sel.AddSubjectRow(class)
}

// RemoveSubjectRow removes a subject row, deselecting the class with its last row.
func (w *Workflow) RemoveSubjectRow(class, rowID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireStructural("subject rows"); err != nil {
		return err
	}
	return w.sel.RemoveSubjectRow(class, rowID)
}

// SetRowField edits one field of a subject row. Subjects must be offered by
// the catalog for the class and kind and are stored with the catalog's
// spelling; they cannot be chosen while the catalog is loading.
func (w *Workflow) SetRowField(class, rowID int, field RowField, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireDraft(); err != nil {
		return err
	}
	if field == FieldSubject {
		if w.edit != nil {
			return fmt.Errorf("subject: %w", ErrEditModeLocked)
		}
		value = strings.TrimSpace(value)
		if value != "" {
			subjects, ok := w.catalog.Subjects()
			if !ok {
				return ErrCatalogPending
			}
			offered, ok := lookupFold(OfferedSubjects(subjects, w.kind, class), value)
			if !ok {
				return fmt.Errorf("%q for class %d: %w", value, class, ErrSubjectNotOffered)
			}
			value = offered
		}
	}
	return w.sel.SetRowField(class, rowID, field, value)
}

// Violations runs every validation rule against the current state without
// changing it.
func (w *Workflow) Violations() Violations {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, _ := w.violations()
	return v
}

func (w *Workflow) violations() (Violations, bool) {
	v := Validate(w.sel, w.kind, w.tag, w.month)
	subjects, ok := w.catalog.Subjects()
	if ok {
		v = append(v, validateOffered(w.sel, func(class int) []string {
			return OfferedSubjects(subjects, w.kind, class)
		})...)
	}
	return v, ok
}

// Review validates the draft. On success the workflow enters review and the
// summary to confirm is returned; otherwise the violations are returned and
// the workflow stays in draft.
func (w *Workflow) Review() (Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateReviewing && w.summary != nil {
		return *w.summary, nil
	}
	if err := w.requireDraft(); err != nil {
		return Summary{}, err
	}

	v, ready := w.violations()
	if !ready {
		return Summary{}, ErrCatalogPending
	}
	if len(v) > 0 {
		w.emit("validation.failed", map[string]any{"fields": v.Fields()})
		return Summary{}, v
	}

	summary := BuildSummary(w.sel, w.kind, w.tag, w.month)
	w.summary = &summary
	w.setState(StateReviewing)
	return summary, nil
}

// Revise returns a workflow in review to draft so it can be edited again.
func (w *Workflow) Revise() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReviewing {
		return ErrNotReviewing
	}
	w.summary = nil
	w.setState(StateDraft)
	return nil
}

// Submit sends the reviewed configuration. Only one submission may be in
// flight; edits are refused meanwhile. On success the selection is
// discarded. On failure the workflow returns to review with its data intact
// and a *SubmissionError is returned. Failed submissions are never retried.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case StateReviewing:
	case StateSubmitting:
		w.mu.Unlock()
		return ErrSubmissionInFlight
	default:
		w.mu.Unlock()
		return ErrNotReviewing
	}

	mode := ModeCreate
	if w.edit != nil {
		mode = ModeEditSingle
	}
	req, err := BuildRequest(w.sel, w.kind, w.tag, w.month, mode)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	req.WorkflowID = w.id
	if w.edit != nil {
		req.TestID = w.edit.TestID
	}
	w.lastErr = nil
	w.setState(StateSubmitting)
	w.mu.Unlock()

	ok, err := w.submitter.Submit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil || !ok {
		subErr := &SubmissionError{Err: err}
		w.lastErr = subErr
		w.setState(StateReviewing)
		slog.Warn("submission failed", "workflow_id", w.id, "mode", mode.String(), "error", subErr)
		w.emit("submission.failed", map[string]any{"error": subErr.Error()})
		return subErr
	}

	count := 0
	if w.summary != nil {
		count = w.summary.Count()
	}
	w.sel.Clear()
	w.summary = nil
	w.setState(StateSubmitted)
	slog.Info("workflow submitted", "workflow_id", w.id, "mode", mode.String(), "tests", count)
	return nil
}

// AvailableSubjects lists the subjects offered for a class of the active group
// under the current kind. ok is false while the catalog is loading.
func (w *Workflow) AvailableSubjects(class int) ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	subjects, ok := w.catalog.Subjects()
	if !ok {
		return nil, false
	}
	return OfferedSubjects(subjects, w.kind, class), true
}

// OfferedSubjects lists the subjects a class can be tested on for kind.
func OfferedSubjects(t catalog.SubjectTable, kind TestKind, class int) []string {
	if kind == KindRemedial {
		return t.Remedial(class)
	}
	return t.Syllabus(class)
}

func (w *Workflow) requireDraft() error {
	if w.state != StateDraft {
		return fmt.Errorf("%s: %w", w.state, ErrNotEditable)
	}
	return nil
}

func (w *Workflow) requireStructural(what string) error {
	if err := w.requireDraft(); err != nil {
		return err
	}
	if w.edit != nil {
		return fmt.Errorf("%s: %w", what, ErrEditModeLocked)
	}
	return nil
}

func (w *Workflow) noteConflict(err error) {
	var conflict *TransitionConflict
	if errors.As(err, &conflict) {
		w.emit("transition.pending", map[string]any{
			"gate": string(conflict.Gate),
			"from": conflict.From,
			"to":   conflict.To,
		})
	}
}

func (w *Workflow) setState(s State) {
	from := w.state
	w.state = s
	w.emit("workflow."+s.String(), map[string]any{"from": from.String()})
}

func (w *Workflow) emit(eventType string, data map[string]any) {
	if err := w.events.LogEvent(events.Event{
		WorkflowID: w.id,
		Type:       eventType,
		Data:       data,
	}); err != nil {
		slog.Warn("failed to log workflow event", "workflow_id", w.id, "type", eventType, "error", err)
	}
}
