package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewSubjectTable_MergesAndDedupes(t *testing.T) {
	table := NewSubjectTable([]ClassSubjects{
		{Class: 9, Academic: []string{"Hindi", " English ", "hindi"}},
		{Class: 9, Academic: []string{"Science"}, Vocational: []string{"Retail", ""}},
	})

	if diff := cmp.Diff([]string{"Hindi", "English", "Science", "Retail"}, table.Syllabus(9)); diff != "" {
		t.Errorf("Syllabus(9) mismatch (-want +got):\n%s", diff)
	}
}

func TestSubjectTable_Remedial(t *testing.T) {
	table := NewSubjectTable([]ClassSubjects{
		{Class: 1, Academic: []string{"Hindi"}},
		{Class: 2, Academic: []string{"Hindi"}, Remedial: []string{"Reading"}},
	})

	if diff := cmp.Diff(DefaultRemedial, table.Remedial(1)); diff != "" {
		t.Errorf("Remedial(1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Reading"}, table.Remedial(2)); diff != "" {
		t.Errorf("Remedial(2) mismatch (-want +got):\n%s", diff)
	}

	// Callers must not be able to modify the shared default.
	got := table.Remedial(1)
	got[0] = "Changed"
	if DefaultRemedial[0] == "Changed" {
		t.Error("Remedial() returned the shared default slice")
	}
}

func TestSubjectTable_Entries(t *testing.T) {
	table := NewSubjectTable([]ClassSubjects{{Class: 5}, {Class: 2}, {Class: 11}})
	var classes []int
	for _, e := range table.Entries() {
		classes = append(classes, e.Class)
	}
	if diff := cmp.Diff([]int{2, 5, 11}, classes); diff != "" {
		t.Errorf("Entries() order mismatch (-want +got):\n%s", diff)
	}
}

func TestClassGroup_HasClass(t *testing.T) {
	g := ClassGroup{ID: "secondary", Classes: []int{9, 10}}
	if !g.HasClass(9) || g.HasClass(8) {
		t.Errorf("HasClass() wrong for %+v", g)
	}
}
