package schedule

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode selects the request shape BuildRequest compiles.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEditSingle
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEditSingle:
		return "edit_single"
	default:
		return "unknown"
	}
}

// Summary is the human-readable description shown for confirmation before
// submit. It is never sent to the submission service.
type Summary struct {
	TestKind TestKind       `json:"testKind"`
	Tag      string         `json:"tag"`
	Classes  []ClassSummary `json:"classes"`
}

// ClassSummary groups the summarized rows of one class.
type ClassSummary struct {
	Class    int          `json:"class"`
	MaxScore *int         `json:"maxScore,omitempty"`
	Rows     []RowSummary `json:"rows"`
}

// RowSummary describes one scheduled test.
type RowSummary struct {
	RowID    int    `json:"rowId"`
	Subject  string `json:"subject"`
	TestDate *Date  `json:"testDate,omitempty"`
	Deadline *Date  `json:"deadline,omitempty"`
	Name     string `json:"name"`
}

// Count returns the number of summarized tests.
func (s Summary) Count() int {
	n := 0
	for _, c := range s.Classes {
		n += len(c.Rows)
	}
	return n
}

// DisplayName title-cases a subject and collapses its whitespace
// ("social  science" -> "Social Science").
func DisplayName(subject string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(subject), " "))
}

// TestName derives the display name of a scheduled test, e.g.
// "Mathematics_Syllabus_Class 3_March".
func TestName(subject string, kind TestKind, class int, month string) string {
	parts := []string{DisplayName(subject), kind.DisplayName(), fmt.Sprintf("Class %d", class)}
	if month != "" {
		parts = append(parts, month)
	}
	return strings.Join(parts, "_")
}

// BuildSummary lists every row with a chosen subject, grouped by class.
// Max scores are included for syllabus tests only.
func BuildSummary(sel *Selection, kind TestKind, tag TestTag, month string) Summary {
	summary := Summary{
		TestKind: kind,
		Tag:      ComposeTag(tag, month),
		Classes:  []ClassSummary{},
	}

	for _, class := range sel.Classes() {
		cs := ClassSummary{Class: class}
		if kind.HasMaxScore() {
			if score, ok := sel.MaxScore(class); ok {
				cs.MaxScore = &score
			}
		}
		for _, row := range sel.Rows(class) {
			if row.Subject == "" {
				continue
			}
			cs.Rows = append(cs.Rows, RowSummary{
				RowID:    row.ID,
				Subject:  row.Subject,
				TestDate: row.TestDate,
				Deadline: row.Deadline,
				Name:     TestName(row.Subject, kind, class, month),
			})
		}
		if len(cs.Rows) > 0 {
			summary.Classes = append(summary.Classes, cs)
		}
	}
	return summary
}

// SubjectPayload is one scheduled test of a class in a create request.
type SubjectPayload struct {
	Subject  string `json:"subject"`
	TestDate Date   `json:"testDate"`
	Deadline Date   `json:"deadline"`
	MaxScore *int   `json:"maxScore,omitempty"`
}

// ClassPayload groups the scheduled tests of one class.
type ClassPayload struct {
	Class    int              `json:"class"`
	Subjects []SubjectPayload `json:"subjects"`
}

// CreatePayload is the batch body of a create request.
type CreatePayload struct {
	TestKind TestKind       `json:"testKind"`
	Tag      string         `json:"tag"`
	Classes  []ClassPayload `json:"classes"`
}

// EditPayload updates a single existing test. Fields it does not carry are
// left untouched by the submission service.
type EditPayload struct {
	TestKind TestKind `json:"testKind"`
	Tag      string   `json:"tag"`
	TestDate Date     `json:"testDate"`
	Deadline Date     `json:"deadline"`
}

// Request is the compiled submission. Exactly one of Create and Edit is set,
// according to Mode. TestID addresses the existing test in edit mode.
// WorkflowID names the workflow that submitted it and is not part of the body.
type Request struct {
	Mode       Mode
	WorkflowID string
	TestID     string
	Create     *CreatePayload
	Edit       *EditPayload
}

// Body returns the payload to encode on the wire.
func (r Request) Body() any {
	if r.Mode == ModeEditSingle {
		return r.Edit
	}
	return r.Create
}

// BuildRequest compiles sel into a submission request. It has no side effects
// and expects a selection that Validate accepted; incomplete rows are reported
// as ErrIncompleteSelection rather than compiled.
func BuildRequest(sel *Selection, kind TestKind, tag TestTag, month string, mode Mode) (Request, error) {
	composed := ComposeTag(tag, month)

	switch mode {
	case ModeCreate:
		classes := sel.Classes()
		if len(classes) == 0 {
			return Request{}, fmt.Errorf("no classes selected: %w", ErrIncompleteSelection)
		}
		payload := &CreatePayload{TestKind: kind, Tag: composed}
		for _, class := range classes {
			cp := ClassPayload{Class: class}
			var maxScore *int
			if kind.HasMaxScore() {
				score, ok := sel.MaxScore(class)
				if !ok {
					return Request{}, fmt.Errorf("class %d has no max score: %w", class, ErrIncompleteSelection)
				}
				maxScore = &score
			}
			for _, row := range sel.Rows(class) {
				if !row.Complete() {
					return Request{}, fmt.Errorf("class %d row %d: %w", class, row.ID, ErrIncompleteSelection)
				}
				cp.Subjects = append(cp.Subjects, SubjectPayload{
					Subject:  row.Subject,
					TestDate: *row.TestDate,
					Deadline: *row.Deadline,
					MaxScore: maxScore,
				})
			}
			payload.Classes = append(payload.Classes, cp)
		}
		return Request{Mode: ModeCreate, Create: payload}, nil

	case ModeEditSingle:
		class, rowID, ok := sel.EditTarget()
		if !ok {
			return Request{}, ErrNoEditTarget
		}
		row, ok := sel.Row(class, rowID)
		if !ok || row.TestDate == nil || row.Deadline == nil {
			return Request{}, fmt.Errorf("class %d row %d: %w", class, rowID, ErrIncompleteSelection)
		}
		return Request{
			Mode: ModeEditSingle,
			Edit: &EditPayload{
				TestKind: kind,
				Tag:      composed,
				TestDate: *row.TestDate,
				Deadline: *row.Deadline,
			},
		}, nil
	}
	return Request{}, fmt.Errorf("unknown request mode %d", mode)
}
