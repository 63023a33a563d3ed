// Package schedule builds batch test-scheduling configurations: the in-progress
// selection of classes and subject rows, its validation rules, the confirmation
// gates for destructive switches, and the compilation into submission payloads.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// TestKind is the assessment category. It decides which subjects are offered
// and whether a max score applies.
type TestKind string

const (
	KindSyllabus TestKind = "syllabus"
	KindRemedial TestKind = "remedial"
)

// ParseTestKind accepts the kind case-insensitively.
func ParseTestKind(s string) (TestKind, error) {
	switch TestKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSyllabus:
		return KindSyllabus, nil
	case KindRemedial:
		return KindRemedial, nil
	}
	return "", fmt.Errorf("unknown test kind %q", s)
}

// Valid reports whether k is a known kind.
func (k TestKind) Valid() bool {
	return k == KindSyllabus || k == KindRemedial
}

// DisplayName is the label used in derived test names.
func (k TestKind) DisplayName() string {
	switch k {
	case KindSyllabus:
		return "Syllabus"
	case KindRemedial:
		return "Remedial"
	default:
		return "Unknown"
	}
}

// HasMaxScore reports whether tests of this kind carry a per-class max score.
func (k TestKind) HasMaxScore() bool {
	return k == KindSyllabus
}

// Tags returns the tags valid for the kind, in display order.
func (k TestKind) Tags() []TestTag {
	switch k {
	case KindSyllabus:
		return []TestTag{TagMonthly, TagQuarterly, TagHalfYearly, TagPreBoard, TagAnnual}
	case KindRemedial:
		return []TestTag{TagBaseline, TagMidline, TagEndline}
	default:
		return nil
	}
}

// TestTag refines a TestKind.
type TestTag string

const (
	TagMonthly    TestTag = "Monthly"
	TagQuarterly  TestTag = "Quarterly"
	TagHalfYearly TestTag = "HalfYearly"
	TagPreBoard   TestTag = "PreBoard"
	TagAnnual     TestTag = "Annual"

	TagBaseline TestTag = "Baseline"
	TagMidline  TestTag = "Midline"
	TagEndline  TestTag = "Endline"
)

// ValidFor reports whether t may be used with kind k.
func (t TestTag) ValidFor(k TestKind) bool {
	for _, tag := range k.Tags() {
		if tag == t {
			return true
		}
	}
	return false
}

// NeedsMonth reports whether the tag must be qualified by a month.
func (t TestTag) NeedsMonth() bool {
	return t == TagMonthly
}

// ComposeTag joins a Monthly tag with its month ("Monthly_March"). Other tags
// are returned unchanged.
func ComposeTag(tag TestTag, month string) string {
	if tag.NeedsMonth() && month != "" {
		return string(tag) + "_" + month
	}
	return string(tag)
}

// SplitTag reverses ComposeTag.
func SplitTag(composed string) (TestTag, string) {
	tag, month, found := strings.Cut(composed, "_")
	if !found {
		return TestTag(composed), ""
	}
	return TestTag(tag), month
}

// IsMonth reports whether s is an English month name ("March").
func IsMonth(s string) bool {
	for m := time.January; m <= time.December; m++ {
		if m.String() == s {
			return true
		}
	}
	return false
}
