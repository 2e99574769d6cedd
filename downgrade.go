package typegraph

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// downgrade walks the registered transforms from tag.Version down, one
// version at a time, until a constructor exists. The chain is linear: a
// missing transform ends it, nothing is skipped and no upgrade is tried.
func downgrade(reg TypeRegistry, tag SchemaTag, f *Fields, logger *log.Logger) (SchemaTag, *Fields, error) {
	if !reg.HasSchema(tag.Name) {
		e := newError(CodeUnknownSchema, "no constructor or downgrade registered for schema "+tag.Name)
		e.Schema = tag.Name
		e.Version = tag.Version
		return tag, nil, e
	}
	cur := tag.Version
	for !reg.HasConstructor(tag.Name, cur) {
		if cur == 0 || !reg.HasDowngrade(tag.Name, cur) {
			return tag, nil, unsupported(tag, cur)
		}
		next, err := reg.ApplyDowngrade(tag.Name, cur, f)
		if err != nil {
			if errors.Is(err, ErrNoDowngrade) {
				return tag, nil, unsupported(tag, cur)
			}
			e := newError(CodeConstructor, fmt.Sprintf("downgrade %s.%d -> %d: %v", tag.Name, cur, cur-1, err))
			e.Schema = tag.Name
			e.Version = cur
			e.Requested = tag.Version
			e.Cause = err
			return tag, nil, e
		}
		if next == nil {
			next = NewFields()
		}
		if logger != nil {
			logger.Debug("schema downgraded", "schema", tag.Name, "from", cur, "to", cur-1)
		}
		f = next
		cur--
	}
	return SchemaTag{Name: tag.Name, Version: cur}, f, nil
}

func unsupported(tag SchemaTag, reached int) *Error {
	msg := fmt.Sprintf("schema %s has no constructor for version %d", tag.Name, tag.Version)
	if reached != tag.Version {
		msg = fmt.Sprintf("schema %s version %d downgrades only to version %d, which has no constructor", tag.Name, tag.Version, reached)
	}
	e := newError(CodeUnsupportedSchemaVersion, msg)
	e.Schema = tag.Name
	e.Version = tag.Version
	e.Requested = tag.Version
	e.Reached = reached
	return e
}
