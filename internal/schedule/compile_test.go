package schedule

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildRequest_Create(t *testing.T) {
	sel := completeSelection(t)

	req, err := BuildRequest(sel, KindSyllabus, TagAnnual, "", ModeCreate)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if req.Mode != ModeCreate || req.Edit != nil {
		t.Fatalf("request = %+v, want create", req)
	}

	got, err := json.Marshal(req.Body())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"testKind":"syllabus","tag":"Annual","classes":[{"class":3,"subjects":[{"subject":"Maths","testDate":"2025-03-01","deadline":"2025-03-10","maxScore":100}]}]}`
	if string(got) != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}
}

func TestBuildRequest_RemedialOmitsMaxScore(t *testing.T) {
	sel := newPrimarySelection(t)
	mustToggle(t, sel, 2)
	mustSet(t, sel, 2, 1, FieldSubject, "English")
	mustSet(t, sel, 2, 1, FieldTestDate, "2025-06-01")
	mustSet(t, sel, 2, 1, FieldDeadline, "2025-06-08")

	req, err := BuildRequest(sel, KindRemedial, TagBaseline, "", ModeCreate)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if got := req.Create.Classes[0].Subjects[0].MaxScore; got != nil {
		t.Errorf("maxScore = %d, want omitted", *got)
	}
}

func TestBuildRequest_ComposedTag(t *testing.T) {
	tests := []struct {
		tag   TestTag
		month string
		want  string
	}{
		{TagMonthly, "March", "Monthly_March"},
		{TagAnnual, "", "Annual"},
		{TagHalfYearly, "", "HalfYearly"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			req, err := BuildRequest(completeSelection(t), KindSyllabus, tt.tag, tt.month, ModeCreate)
			if err != nil {
				t.Fatalf("BuildRequest() error = %v", err)
			}
			if req.Create.Tag != tt.want {
				t.Errorf("tag = %q, want %q", req.Create.Tag, tt.want)
			}
		})
	}
}

func TestBuildRequest_Incomplete(t *testing.T) {
	if _, err := BuildRequest(newPrimarySelection(t), KindSyllabus, TagAnnual, "", ModeCreate); !errors.Is(err, ErrIncompleteSelection) {
		t.Errorf("empty: error = %v, want ErrIncompleteSelection", err)
	}

	sel := newPrimarySelection(t)
	mustToggle(t, sel, 3)
	if err := sel.SetMaxScore(3, 10); err != nil {
		t.Fatalf("SetMaxScore() error = %v", err)
	}
	if _, err := BuildRequest(sel, KindSyllabus, TagAnnual, "", ModeCreate); !errors.Is(err, ErrIncompleteSelection) {
		t.Errorf("blank row: error = %v, want ErrIncompleteSelection", err)
	}

	if _, err := BuildRequest(completeSelection(t), KindSyllabus, TagAnnual, "", ModeEditSingle); !errors.Is(err, ErrNoEditTarget) {
		t.Errorf("edit without target: error = %v, want ErrNoEditTarget", err)
	}
}

func TestBuildRequest_Edit(t *testing.T) {
	testDate := MustParseDate("2025-04-01")
	deadline := MustParseDate("2025-04-15")
	sel, err := NewEditSelection(primary, 4, SubjectRow{Subject: "English", TestDate: &testDate, Deadline: &deadline}, 40)
	if err != nil {
		t.Fatalf("NewEditSelection() error = %v", err)
	}
	mustSet(t, sel, 4, 1, FieldTestDate, "2025-04-05")

	if _, err := BuildRequest(sel, KindSyllabus, TagMonthly, "April", ModeEditSingle); !errors.Is(err, ErrIncompleteSelection) {
		t.Fatalf("cleared deadline: error = %v, want ErrIncompleteSelection", err)
	}

	mustSet(t, sel, 4, 1, FieldDeadline, "2025-04-12")
	req, err := BuildRequest(sel, KindSyllabus, TagMonthly, "April", ModeEditSingle)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	want := &EditPayload{
		TestKind: KindSyllabus,
		Tag:      "Monthly_April",
		TestDate: MustParseDate("2025-04-05"),
		Deadline: MustParseDate("2025-04-12"),
	}
	if diff := cmp.Diff(want, req.Edit); diff != "" {
		t.Errorf("edit payload mismatch (-want +got):\n%s", diff)
	}
	if req.Body() != any(req.Edit) {
		t.Error("Body() should return the edit payload")
	}
}

func TestBuildRequest_DoesNotMutate(t *testing.T) {
	sel := completeSelection(t)
	before := sel.Rows(3)
	if _, err := BuildRequest(sel, KindSyllabus, TagAnnual, "", ModeCreate); err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if diff := cmp.Diff(before, sel.Rows(3)); diff != "" {
		t.Errorf("rows changed (-before +after):\n%s", diff)
	}
}

func TestBuildSummary(t *testing.T) {
	sel := completeSelection(t)
	if _, err := sel.AddSubjectRow(3); err != nil {
		t.Fatalf("AddSubjectRow() error = %v", err)
	}
	mustToggle(t, sel, 5)

	s := BuildSummary(sel, KindSyllabus, TagMonthly, "March")

	score := 100
	testDate := MustParseDate("2025-03-01")
	deadline := MustParseDate("2025-03-10")
	want := Summary{
		TestKind: KindSyllabus,
		Tag:      "Monthly_March",
		Classes: []ClassSummary{{
			Class:    3,
			MaxScore: &score,
			Rows: []RowSummary{{
				RowID:    1,
				Subject:  "Maths",
				TestDate: &testDate,
				Deadline: &deadline,
				Name:     "Maths_Syllabus_Class 3_March",
			}},
		}},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestTestName(t *testing.T) {
	tests := []struct {
		subject string
		kind    TestKind
		class   int
		month   string
		want    string
	}{
		{"mathematics", KindSyllabus, 3, "March", "Mathematics_Syllabus_Class 3_March"},
		{"social  science", KindSyllabus, 7, "", "Social Science_Syllabus_Class 7"},
		{"English", KindRemedial, 2, "", "English_Remedial_Class 2"},
	}

	for _, tt := range tests {
		if got := TestName(tt.subject, tt.kind, tt.class, tt.month); got != tt.want {
			t.Errorf("TestName(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}
