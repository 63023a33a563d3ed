package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// Data is the on-disk shape of a catalog file.
type Data struct {
	Groups   []ClassGroup    `yaml:"groups"`
	Subjects []ClassSubjects `yaml:"subjects"`
}

// ParseYAML decodes a catalog file.
func ParseYAML(b []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("parsing catalog yaml: %w", err)
	}
	for _, g := range d.Groups {
		if g.ID == "" || len(g.Classes) == 0 {
			return Data{}, fmt.Errorf("group %q has no id or classes", g.Name)
		}
	}
	return d, nil
}

var loadFallback = sync.OnceValues(func() (Data, error) {
	return ParseYAML(fallbackYAML)
})

// Fallback returns the built-in catalog. It panics if the embedded file is
// malformed, which the package tests rule out.
func Fallback() Data {
	d, err := loadFallback()
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultGroups returns the built-in class groups.
func DefaultGroups() []ClassGroup {
	return Fallback().Groups
}

// FallbackSubjects returns the built-in subject table.
func FallbackSubjects() SubjectTable {
	return NewSubjectTable(Fallback().Subjects)
}

// YAMLFileSource reads subjects from a catalog file on disk.
type YAMLFileSource struct {
	Path string
}

func (s YAMLFileSource) Name() string { return "yaml:" + s.Path }

func (s YAMLFileSource) Fetch(_ context.Context) (SubjectTable, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	d, err := ParseYAML(b)
	if err != nil {
		return nil, err
	}
	if len(d.Subjects) == 0 {
		return nil, fmt.Errorf("%s lists no subjects", s.Path)
	}
	return NewSubjectTable(d.Subjects), nil
}
