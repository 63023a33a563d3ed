package schedule

import "testing"

func TestParseTestKind(t *testing.T) {
	tests := []struct {
		in      string
		want    TestKind
		wantErr bool
	}{
		{"syllabus", KindSyllabus, false},
		{" Remedial ", KindRemedial, false},
		{"weekly", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTestKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTestKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseTestKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTagValidFor(t *testing.T) {
	tests := []struct {
		tag  TestTag
		kind TestKind
		want bool
	}{
		{TagMonthly, KindSyllabus, true},
		{TagPreBoard, KindSyllabus, true},
		{TagBaseline, KindSyllabus, false},
		{TagEndline, KindRemedial, true},
		{TagAnnual, KindRemedial, false},
		{"", KindSyllabus, false},
	}

	for _, tt := range tests {
		if got := tt.tag.ValidFor(tt.kind); got != tt.want {
			t.Errorf("%q.ValidFor(%s) = %v, want %v", tt.tag, tt.kind, got, tt.want)
		}
	}
}

func TestComposeTag(t *testing.T) {
	tests := []struct {
		tag   TestTag
		month string
		want  string
	}{
		{TagMonthly, "March", "Monthly_March"},
		{TagMonthly, "", "Monthly"},
		{TagAnnual, "", "Annual"},
		{TagAnnual, "March", "Annual"},
	}

	for _, tt := range tests {
		if got := ComposeTag(tt.tag, tt.month); got != tt.want {
			t.Errorf("ComposeTag(%q, %q) = %q, want %q", tt.tag, tt.month, got, tt.want)
		}
	}

	tag, month := SplitTag("Monthly_March")
	if tag != TagMonthly || month != "March" {
		t.Errorf("SplitTag() = %q, %q", tag, month)
	}
	tag, month = SplitTag("Annual")
	if tag != TagAnnual || month != "" {
		t.Errorf("SplitTag() = %q, %q", tag, month)
	}
}

func TestIsMonth(t *testing.T) {
	for _, s := range []string{"January", "September", "December"} {
		if !IsMonth(s) {
			t.Errorf("IsMonth(%q) = false", s)
		}
	}
	for _, s := range []string{"", "march", "Sept", "Monthly"} {
		if IsMonth(s) {
			t.Errorf("IsMonth(%q) = true", s)
		}
	}
}
