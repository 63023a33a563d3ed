package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFallback(t *testing.T) {
	groups := DefaultGroups()
	if len(groups) != 4 {
		t.Fatalf("len(groups) = %d, want 4", len(groups))
	}
	if groups[0].Name != "Primary (1-5)" {
		t.Errorf("groups[0].Name = %q, want Primary (1-5)", groups[0].Name)
	}

	subjects := FallbackSubjects()
	for _, g := range groups {
		for _, class := range g.Classes {
			if len(subjects.Syllabus(class)) == 0 {
				t.Errorf("class %d of %s has no syllabus subjects", class, g.ID)
			}
		}
	}
}

func TestParseYAML_Rejected(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", "groups: [:"},
		{"group without classes", "groups:\n  - id: empty\n    name: Empty\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(tt.in)); err == nil {
				t.Error("ParseYAML() should fail")
			}
		})
	}
}

func TestYAMLFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subjects.yaml")
	content := `subjects:
  - class: 6
    academic: [Hindi, Sanskrit]
    remedial: [Reading]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := YAMLFileSource{Path: path}.Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := table.Syllabus(6); len(got) != 2 {
		t.Errorf("Syllabus(6) = %v, want 2 subjects", got)
	}

	if _, err := (YAMLFileSource{Path: filepath.Join(dir, "missing.yaml")}).Fetch(t.Context()); err == nil {
		t.Error("missing file should fail")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("groups: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (YAMLFileSource{Path: empty}).Fetch(t.Context()); err == nil {
		t.Error("file without subjects should fail")
	}
}
