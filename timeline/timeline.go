// Package timeline is a small editorial domain (clips, gaps, tracks, stacks)
// registered with typegraph under OpenTimelineIO schema names. It serves as
// the default registry of the typegraph CLI and as an end-to-end exercise of
// the decoder: nested tagged objects, shared media references and the
// Clip.2 to Clip.1 downgrade.
package timeline

import (
	"fmt"
	"math"

	"github.com/reoring/typegraph"
)

// RationalTime is a point in time expressed as value/rate.
type RationalTime struct {
	Value float64
	Rate  float64
}

// Seconds returns the time in seconds; a zero rate yields 0.
func (t RationalTime) Seconds() float64 {
	if t.Rate == 0 {
		return 0
	}
	return t.Value / t.Rate
}

// RescaledTo converts t to another rate.
func (t RationalTime) RescaledTo(rate float64) RationalTime {
	if t.Rate == rate || t.Rate == 0 {
		return RationalTime{Value: t.Value, Rate: rate}
	}
	return RationalTime{Value: t.Value * rate / t.Rate, Rate: rate}
}

// Add returns t+o at the rate of t.
func (t RationalTime) Add(o RationalTime) RationalTime {
	o = o.RescaledTo(t.Rate)
	return RationalTime{Value: t.Value + o.Value, Rate: t.Rate}
}

func (t RationalTime) String() string {
	if t.Value == math.Trunc(t.Value) {
		return fmt.Sprintf("%d@%g", int64(t.Value), t.Rate)
	}
	return fmt.Sprintf("%g@%g", t.Value, t.Rate)
}

// TimeRange is a start time plus a duration.
type TimeRange struct {
	StartTime RationalTime
	Duration  RationalTime
}

// EndTimeExclusive is StartTime + Duration.
func (r TimeRange) EndTimeExclusive() RationalTime { return r.StartTime.Add(r.Duration) }

// ExternalReference points at media outside the document.
type ExternalReference struct {
	Name           string
	TargetURL      string
	AvailableRange *TimeRange
	Metadata       *typegraph.Fields
}

// MissingReference stands in for media that is not known.
type MissingReference struct {
	Name     string
	Metadata *typegraph.Fields
}

// Marker annotates a range of an item.
type Marker struct {
	Name        string
	MarkedRange TimeRange
	Color       string
	Metadata    *typegraph.Fields
}

// Clip is a segment of a media reference.
type Clip struct {
	Name string
	// MediaReference is shared between clips that reference the same
	// reference-id. It is either *ExternalReference or *MissingReference
	// once decoding finished.
	MediaReference *typegraph.Ref
	SourceRange    *TimeRange
	Markers        []*Marker
	Metadata       *typegraph.Fields
}

// Media returns the resolved media reference object.
func (c *Clip) Media() any { return c.MediaReference.Object() }

// Duration of the clip's source range, zero when unset.
func (c *Clip) Duration() RationalTime {
	if c.SourceRange == nil {
		return RationalTime{}
	}
	return c.SourceRange.Duration
}

// Gap is empty space in a track.
type Gap struct {
	Name        string
	SourceRange *TimeRange
	Metadata    *typegraph.Fields
}

func (g *Gap) Duration() RationalTime {
	if g.SourceRange == nil {
		return RationalTime{}
	}
	return g.SourceRange.Duration
}

// Composition holds child items in order. Children are handles so a child
// defined later in the document can still be referenced.
type Composition struct {
	Name     string
	Children []*typegraph.Ref
	Metadata *typegraph.Fields
}

// Items returns the constructed children.
func (c *Composition) Items() []any {
	out := make([]any, 0, len(c.Children))
	for _, r := range c.Children {
		out = append(out, r.Object())
	}
	return out
}

// Track plays its children one after another.
type Track struct {
	Composition
	Kind string // "Video" or "Audio"
}

// Duration sums the durations of clips, gaps and nested compositions.
func (t *Track) Duration() RationalTime {
	var total RationalTime
	for _, it := range t.Items() {
		d := durationOf(it)
		if total.Rate == 0 {
			total = d
			continue
		}
		total = total.Add(d)
	}
	return total
}

// Stack plays its children in parallel.
type Stack struct {
	Composition
}

// Duration is the longest child duration.
func (s *Stack) Duration() RationalTime {
	var longest RationalTime
	for _, it := range s.Items() {
		if d := durationOf(it); d.Seconds() > longest.Seconds() {
			longest = d
		}
	}
	return longest
}

func durationOf(it any) RationalTime {
	if d, ok := it.(interface{ Duration() RationalTime }); ok {
		return d.Duration()
	}
	return RationalTime{}
}

// Timeline is the document root of an editorial cut.
type Timeline struct {
	Name            string
	GlobalStartTime *RationalTime
	Tracks          *Stack
	Metadata        *typegraph.Fields
}

// Duration of the top-level stack.
func (t *Timeline) Duration() RationalTime {
	if t.Tracks == nil {
		return RationalTime{}
	}
	return t.Tracks.Duration()
}
