package catalog

import (
	"slices"
	"strings"
)

// DefaultRemedial is offered for remedial tests when the curriculum service
// lists no remedial subjects for a class.
var DefaultRemedial = []string{"Hindi", "English", "Mathematics"}

// ClassGroup is a band of consecutive classes sharing a curriculum stage,
// e.g. Primary (1-5).
type ClassGroup struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Classes []int  `yaml:"classes" json:"classes"`
}

// HasClass reports whether class belongs to the group.
func (g ClassGroup) HasClass(class int) bool {
	return slices.Contains(g.Classes, class)
}

// ClassSubjects holds the subject sets of one class.
type ClassSubjects struct {
	Class      int      `yaml:"class" json:"class"`
	Academic   []string `yaml:"academic" json:"academicSubjects"`
	Vocational []string `yaml:"vocational,omitempty" json:"vocationalSubjects,omitempty"`
	Remedial   []string `yaml:"remedial,omitempty" json:"remedialSubjects,omitempty"`
}

// SubjectTable maps a class number to its subject sets.
type SubjectTable map[int]ClassSubjects

// NewSubjectTable builds a table from per-class entries, trimming names and
// dropping duplicates. Later entries for the same class are merged in.
func NewSubjectTable(entries []ClassSubjects) SubjectTable {
	t := make(SubjectTable, len(entries))
	for _, e := range entries {
		cur := t[e.Class]
		cur.Class = e.Class
		cur.Academic = mergeSubjects(cur.Academic, e.Academic)
		cur.Vocational = mergeSubjects(cur.Vocational, e.Vocational)
		cur.Remedial = mergeSubjects(cur.Remedial, e.Remedial)
		t[e.Class] = cur
	}
	return t
}

// Syllabus returns the academic and vocational subjects of a class.
func (t SubjectTable) Syllabus(class int) []string {
	s := t[class]
	return mergeSubjects(slices.Clone(s.Academic), s.Vocational)
}

// Remedial returns the remedial subjects of a class, or DefaultRemedial.
func (t SubjectTable) Remedial(class int) []string {
	if s := t[class]; len(s.Remedial) > 0 {
		return slices.Clone(s.Remedial)
	}
	return slices.Clone(DefaultRemedial)
}

// Entries returns the table as a list ordered by class.
func (t SubjectTable) Entries() []ClassSubjects {
	entries := make([]ClassSubjects, 0, len(t))
	for _, s := range t {
		entries = append(entries, s)
	}
	slices.SortFunc(entries, func(a, b ClassSubjects) int { return a.Class - b.Class })
	return entries
}

func mergeSubjects(dst, src []string) []string {
	for _, s := range src {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if slices.ContainsFunc(dst, func(d string) bool { return strings.EqualFold(d, s) }) {
			continue
		}
		dst = append(dst, s)
	}
	return dst
}
