package schedule

import (
	"fmt"
	"strings"
)

// Validate checks sel against every submission rule and returns all
// violations. It never mutates sel.
func Validate(sel *Selection, kind TestKind, tag TestTag, month string) Violations {
	var v Violations

	if _, ok := sel.Group(); !ok {
		v = append(v, Violation{Field: "group", Message: "select a class group"})
	}

	switch {
	case tag.NeedsMonth() && month == "":
		v = append(v, Violation{Field: "month", Message: "monthly tests need a month"})
	case tag.NeedsMonth() && !IsMonth(month):
		v = append(v, Violation{Field: "month", Message: fmt.Sprintf("%q is not a month", month)})
	case !tag.NeedsMonth() && month != "":
		v = append(v, Violation{Field: "month", Message: "only monthly tests take a month"})
	}

	classes := sel.Classes()
	if len(classes) == 0 {
		v = append(v, Violation{Field: "classes", Message: "select at least one class"})
	}

	if !tag.ValidFor(kind) {
		v = append(v, Violation{Field: "tag", Message: fmt.Sprintf("%q is not a %s tag", tag, kind)})
	}

	for _, class := range classes {
		v = append(v, validateClass(sel, kind, class)...)
	}
	return v
}

func validateClass(sel *Selection, kind TestKind, class int) Violations {
	var v Violations
	prefix := classPath(class)

	// The edit payload does not carry a max score, so an existing test keeps its own.
	if kind.HasMaxScore() && !sel.EditMode() {
		score, ok := sel.MaxScore(class)
		switch {
		case !ok:
			v = append(v, Violation{Field: prefix + ".maxScore", Message: "max score is required"})
		case score < 1 || score > 100:
			v = append(v, Violation{Field: prefix + ".maxScore", Message: ErrMaxScoreRange.Error()})
		}
	}

	rows := sel.Rows(class)
	if len(rows) == 0 {
		v = append(v, Violation{Field: prefix + ".rows", Message: "add at least one subject"})
	}
	for _, row := range rows {
		path := rowPath(class, row.ID)
		if row.Subject == "" {
			v = append(v, Violation{Field: path + ".subject", Message: "subject is required"})
		}
		if row.TestDate == nil {
			v = append(v, Violation{Field: path + ".testDate", Message: "test date is required"})
		}
		if row.Deadline == nil {
			v = append(v, Violation{Field: path + ".deadline", Message: "submission deadline is required"})
		}
		if !deadlineAfter(row.TestDate, row.Deadline) {
			v = append(v, Violation{Field: path + ".deadline", Message: ErrDeadlineNotAfterTestDate.Error()})
		}
	}
	return v
}

// validateOffered flags chosen subjects the catalog does not offer for the
// class and kind. It runs only once the catalog is ready. The row loaded from
// an existing test is skipped: its subject is locked and never resent.
func validateOffered(sel *Selection, offered func(class int) []string) Violations {
	var v Violations
	for _, class := range sel.Classes() {
		subjects := offered(class)
		for _, row := range sel.Rows(class) {
			if row.Subject == "" || sel.isEditTarget(class, row.ID) || containsFold(subjects, row.Subject) {
				continue
			}
			v = append(v, Violation{
				Field:   rowPath(class, row.ID) + ".subject",
				Message: fmt.Sprintf("%q is not offered for class %d", row.Subject, class),
			})
		}
	}
	return v
}

func classPath(class int) string {
	return fmt.Sprintf("classes[%d]", class)
}

func rowPath(class, rowID int) string {
	return fmt.Sprintf("classes[%d].rows[%d]", class, rowID)
}

func containsFold(list []string, s string) bool {
	_, ok := lookupFold(list, s)
	return ok
}

// lookupFold returns the entry of list equal to s under case folding.
func lookupFold(list []string, s string) (string, bool) {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return item, true
		}
	}
	return "", false
}
