package timeline

import (
	"fmt"

	"github.com/reoring/typegraph"
)

// Schema names as written in documents.
const (
	SchemaRationalTime      = "RationalTime"
	SchemaTimeRange         = "TimeRange"
	SchemaExternalReference = "ExternalReference"
	SchemaMissingReference  = "MissingReference"
	SchemaMarker            = "Marker"
	SchemaClip              = "Clip"
	SchemaGap               = "Gap"
	SchemaTrack             = "Track"
	SchemaStack             = "Stack"
	SchemaTimeline          = "Timeline"
)

// DefaultMediaKey is the media_references key Clip.2 documents use when
// active_media_reference_key is absent.
const DefaultMediaKey = "DEFAULT_MEDIA"

type entry struct {
	name    string
	version int
	ctor    typegraph.Constructor
}

var constructors = []entry{
	{SchemaRationalTime, 1, newRationalTime},
	{SchemaTimeRange, 1, newTimeRange},
	{SchemaExternalReference, 1, newExternalReference},
	{SchemaMissingReference, 1, newMissingReference},
	{SchemaMarker, 2, newMarker},
	{SchemaClip, 1, newClip},
	{SchemaGap, 1, newGap},
	{SchemaTrack, 1, newTrack},
	{SchemaStack, 1, newStack},
	{SchemaTimeline, 1, newTimeline},
}

// Register adds every timeline schema and the Clip.2 downgrade to reg.
func Register(reg *typegraph.Registry) error {
	for _, e := range constructors {
		if err := reg.Register(e.name, e.version, e.ctor); err != nil {
			return err
		}
	}
	return reg.RegisterDowngrade(SchemaClip, 2, downgradeClip2)
}

// NewRegistry returns a registry holding only the timeline schemas.
func NewRegistry() *typegraph.Registry {
	reg := typegraph.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// Load decodes a timeline document from path. The timeline registry is used
// unless opts carry one.
func Load(path string, opts ...typegraph.DecodeOpt) (*Timeline, error) {
	var opt typegraph.DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Registry == nil {
		opt.Registry = NewRegistry()
	}
	v, err := typegraph.DecodeFile(path, opt)
	if err != nil {
		return nil, err
	}
	obj, _ := v.AsObject()
	tl, ok := obj.(*Timeline)
	if !ok {
		return nil, fmt.Errorf("timeline: %s: root is %s, not a %s", path, describe(v), SchemaTimeline)
	}
	return tl, nil
}

func describe(v typegraph.Value) string {
	if r := v.Ref(); r != nil {
		return r.Tag().String()
	}
	return v.Kind().String()
}

// downgradeClip2 collapses the media_references map of Clip.2 into the single
// media_reference of Clip.1, keeping the active entry.
func downgradeClip2(f *typegraph.Fields) (*typegraph.Fields, error) {
	key := DefaultMediaKey
	if v, ok := f.Get("active_media_reference_key"); ok && !v.IsNull() {
		s, ok := v.AsString()
		if !ok {
			return nil, fmt.Errorf("active_media_reference_key: expected string, got %s", v.Kind())
		}
		key = s
	}
	media := typegraph.Null()
	if v, ok := f.Get("media_references"); ok && !v.IsNull() {
		refs, ok := v.AsFields()
		if !ok {
			return nil, fmt.Errorf("media_references: expected mapping, got %s", v.Kind())
		}
		if m, ok := refs.Get(key); ok {
			media = m
		}
	}
	f.Delete("active_media_reference_key")
	f.Delete("media_references")
	f.Set("media_reference", media)
	return f, nil
}

func newRationalTime(f *typegraph.Fields) (any, error) {
	value, err := number(f, "value")
	if err != nil {
		return nil, err
	}
	rate, err := number(f, "rate")
	if err != nil {
		return nil, err
	}
	return &RationalTime{Value: value, Rate: rate}, nil
}

func newTimeRange(f *typegraph.Fields) (any, error) {
	start, err := required[*RationalTime](f, "start_time")
	if err != nil {
		return nil, err
	}
	dur, err := required[*RationalTime](f, "duration")
	if err != nil {
		return nil, err
	}
	return &TimeRange{StartTime: *start, Duration: *dur}, nil
}

func newExternalReference(f *typegraph.Fields) (any, error) {
	var r ExternalReference
	var err error
	if r.Name, err = optString(f, "name"); err != nil {
		return nil, err
	}
	if r.TargetURL, err = optString(f, "target_url"); err != nil {
		return nil, err
	}
	if r.AvailableRange, err = optional[*TimeRange](f, "available_range"); err != nil {
		return nil, err
	}
	if r.Metadata, err = metadata(f); err != nil {
		return nil, err
	}
	return &r, nil
}

func newMissingReference(f *typegraph.Fields) (any, error) {
	var r MissingReference
	var err error
	if r.Name, err = optString(f, "name"); err != nil {
		return nil, err
	}
	if r.Metadata, err = metadata(f); err != nil {
		return nil, err
	}
	return &r, nil
}

func newMarker(f *typegraph.Fields) (any, error) {
	var m Marker
	var err error
	if m.Name, err = optString(f, "name"); err != nil {
		return nil, err
	}
	rng, err := required[*TimeRange](f, "marked_range")
	if err != nil {
		return nil, err
	}
	m.MarkedRange = *rng
	if m.Color, err = optString(f, "color"); err != nil {
		return nil, err
	}
	if m.Color == "" {
		m.Color = "RED"
	}
	if m.Metadata, err = metadata(f); err != nil {
		return nil, err
	}
	return &m, nil
}

func newClip(f *typegraph.Fields) (any, error) {
	var c Clip
	var err error
	if c.Name, err = optString(f, "name"); err != nil {
		return nil, err
	}
	if c.MediaReference, err = optRef(f, "media_reference"); err != nil {
		return nil, err
	}
	if c.MediaReference == nil {
		c.MediaReference = typegraph.NewRef(&MissingReference{Metadata: typegraph.NewFields()},
			typegraph.SchemaTag{Name: SchemaMissingReference, Version: 1})
	}
	if c.SourceRange, err = optional[*TimeRange](f, "source_range"); err != nil {
		return nil, err
	}
	if c.Markers, err = objects[*Marker](f, "markers"); err != nil {
		return nil, err
	}
	if c.Metadata, err = metadata(f); err != nil {
		return nil, err
	}
	return &c, nil
}

func newGap(f *typegraph.Fields) (any, error) {
	var g Gap
	var err error
	if g.Name, err = optString(f, "name"); err != nil {
		return nil, err
	}
	if g.SourceRange, err = optional[*TimeRange](f, "source_range"); err != nil {
		return nil, err
	}
	if g.Metadata, err = metadata(f); err != nil {
		return nil, err
	}
	return &g, nil
}

func composition(f *typegraph.Fields) (Composition, error) {
	var c Composition
	var err error
	if c.Name, err = optString(f, "name"); err != nil {
		return c, err
	}
	if c.Children, err = refs(f, "children"); err != nil {
		return c, err
	}
	c.Metadata, err = metadata(f)
	return c, err
}

func newTrack(f *typegraph.Fields) (any, error) {
	c, err := composition(f)
	if err != nil {
		return nil, err
	}
	kind, err := optString(f, "kind")
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = "Video"
	}
	return &Track{Composition: c, Kind: kind}, nil
}

func newStack(f *typegraph.Fields) (any, error) {
	c, err := composition(f)
	if err != nil {
		return nil, err
	}
	return &Stack{Composition: c}, nil
}

func newTimeline(f *typegraph.Fields) (any, error) {
	var t Timeline
	var err error
	if t.Name, err = optString(f, "name"); err != nil {
		return nil, err
	}
	if t.GlobalStartTime, err = optional[*RationalTime](f, "global_start_time"); err != nil {
		return nil, err
	}
	if t.Tracks, err = required[*Stack](f, "tracks"); err != nil {
		return nil, err
	}
	if t.Metadata, err = metadata(f); err != nil {
		return nil, err
	}
	return &t, nil
}
