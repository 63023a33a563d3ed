package submission

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	createSchema = mustSchema("schemas/create.schema.json")
	editSchema   = mustSchema("schemas/edit.schema.json")
)

func mustSchema(path string) *gojsonschema.Schema {
	b, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("compiling %s: %v", path, err))
	}
	return s
}

// CheckPayload validates an encoded request body against the wire schema of
// its mode.
func CheckPayload(mode schedule.Mode, body []byte) error {
	schema := createSchema
	if mode == schedule.ModeEditSingle {
		schema = editSchema
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s payload does not match schema: %s", mode, strings.Join(msgs, "; "))
	}
	return nil
}
