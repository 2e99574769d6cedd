package typegraph

import "github.com/charmbracelet/log"

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Fail
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore keeps the last value, Warn logs, Fail aborts.
}

// Default reserved keys. They follow OpenTimelineIO naming.
const (
	DefaultSchemaKey  = "OTIO_SCHEMA"
	DefaultVersionKey = "OTIO_SCHEMA_VERSION"
	DefaultRefIDKey   = "OTIO_REF_ID"
)

// ReservedKeys names the object keys that carry the schema tag and the
// reference-id. Empty fields fall back to the defaults.
type ReservedKeys struct {
	Schema  string
	Version string
	RefID   string
}

// DefaultKeys returns the reserved keys used when none are configured.
func DefaultKeys() ReservedKeys {
	return ReservedKeys{Schema: DefaultSchemaKey, Version: DefaultVersionKey, RefID: DefaultRefIDKey}
}

func (k ReservedKeys) withDefaults() ReservedKeys {
	d := DefaultKeys()
	if k.Schema == "" {
		k.Schema = d.Schema
	}
	if k.Version == "" {
		k.Version = d.Version
	}
	if k.RefID == "" {
		k.RefID = d.RefID
	}
	return k
}

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	// Registry resolves schema tags. A nil Registry knows no schemas, so any
	// tagged object fails with CodeUnknownSchema.
	Registry   TypeRegistry
	Keys       ReservedKeys
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	// Logger receives debug traces (downgrade steps, reference resolution)
	// and duplicate-key warnings. Nil disables logging.
	Logger *log.Logger
}

func lastOpt(opts []DecodeOpt) DecodeOpt {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	opt.Keys = opt.Keys.withDefaults()
	if opt.Registry == nil {
		opt.Registry = emptyRegistry{}
	}
	return opt
}
