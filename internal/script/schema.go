package script

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSrc string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error

	// cue.Context is not safe for concurrent use
	schemaMu sync.Mutex
)

// loadSchema compiles the embedded schema once per process.
func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSrc, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile script schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Script"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("script schema has no #Script definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// validateSchema checks decoded YAML against #Script.
func validateSchema(raw any) error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}
	schemaMu.Lock()
	defer schemaMu.Unlock()

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return formatCUEError(err)
	}
	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError flattens a CUE error list into one line per problem.
func formatCUEError(err error) error {
	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msgs = append(msgs, strings.TrimSpace(cueerrors.Details(e, nil)))
	}
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
