package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// Rejected edits. The selection is left unchanged whenever one of these is returned.
var (
	ErrNoActiveGroup            = errors.New("no class group selected")
	ErrSelectionNotEmpty        = errors.New("selection is not empty")
	ErrUnknownGroup             = errors.New("unknown class group")
	ErrClassNotInGroup          = errors.New("class is not part of the active group")
	ErrClassNotSelected         = errors.New("class is not selected")
	ErrRowNotFound              = errors.New("subject row not found")
	ErrIncompleteRow            = errors.New("class already has a row without a subject")
	ErrDuplicateSubject         = errors.New("subject already scheduled for this class")
	ErrDeadlineNotAfterTestDate = errors.New("submission deadline must be after the test date")
	ErrMaxScoreRange            = errors.New("max score must be between 1 and 100")
	ErrMaxScoreNotApplicable    = errors.New("max score applies to syllabus tests only")
	ErrUnknownField             = errors.New("unknown row field")
	ErrSubjectNotOffered        = errors.New("subject is not offered for this class")
	ErrCatalogPending           = errors.New("subject catalog is still loading")
	ErrEditModeLocked           = errors.New("field cannot be changed while editing an existing test")
	ErrInvalidTag               = errors.New("tag is not valid for the test kind")
	ErrInvalidMonth             = errors.New("month must be an English month name")
	ErrNotEditable              = errors.New("workflow is not accepting edits")
	ErrNotReviewing             = errors.New("workflow is not in review")
	ErrSubmissionInFlight       = errors.New("a submission is already in flight")
	ErrNothingPending           = errors.New("no transition awaiting confirmation")
	ErrNoEditTarget             = errors.New("selection has no row loaded from an existing test")
	ErrIncompleteSelection      = errors.New("selection is incomplete")
)

// Violation is a single failed validation rule, scoped to a field path such as
// "classes[3].rows[1].deadline".
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the ValidationError kind: every failed rule, not just the first.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Field + ": " + violation.Message
	}
	return fmt.Sprintf("%d validation error(s): %s", len(v), strings.Join(msgs, "; "))
}

// Err returns v as an error, or nil when there are no violations.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields returns the field paths in order.
func (v Violations) Fields() []string {
	if len(v) == 0 {
		return nil
	}
	fields := make([]string, len(v))
	for i, violation := range v {
		fields[i] = violation.Field
	}
	return fields
}

// TransitionConflict reports a destructive switch that is waiting for the
// operator to confirm or cancel it. It is a decision point, not a failure.
type TransitionConflict struct {
	Gate GateKind
	From string
	To   string
}

func (c *TransitionConflict) Error() string {
	return fmt.Sprintf("switching %s from %q to %q clears the current selection; confirm or cancel", c.Gate, c.From, c.To)
}

// SubmissionError reports that the submission service rejected the request or
// could not be reached. The workflow is back in review with its data intact.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return "submission rejected"
	}
	return "submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
