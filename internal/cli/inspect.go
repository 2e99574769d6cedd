package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/timeline"
)

// inspectCommand creates the "inspect" command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a document and print its object graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loggerFromContext(cmd.Context())
			v, err := typegraph.DecodeFile(args[0], c.decodeOpt(l))
			if err != nil {
				return localize(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTree(args[0], v))
			return nil
		},
	}
}

// renderTree prints v below a root node named title. Objects reached a
// second time through a shared reference are shown once and then as links.
func renderTree(title string, v typegraph.Value) string {
	tree := treeprint.NewWithRoot(title)
	w := &treeWalker{seen: map[*typegraph.Ref]bool{}}
	w.value(tree, "", v)
	return tree.String()
}

type treeWalker struct {
	seen map[*typegraph.Ref]bool
}

func joinLabel(label, text string) string {
	if label == "" {
		return text
	}
	return label + ": " + text
}

func (w *treeWalker) value(tree treeprint.Tree, label string, v typegraph.Value) {
	switch v.Kind() {
	case typegraph.KindList:
		items, _ := v.AsList()
		br := tree.AddBranch(joinLabel(label, fmt.Sprintf("[%d]", len(items))))
		for i, it := range items {
			w.value(br, strconv.Itoa(i), it)
		}
	case typegraph.KindFields:
		f, _ := v.AsFields()
		br := tree.AddBranch(joinLabel(label, fmt.Sprintf("{%d}", f.Len())))
		f.Range(func(k string, fv typegraph.Value) bool {
			w.value(br, k, fv)
			return true
		})
	case typegraph.KindObject, typegraph.KindReference:
		w.object(tree, label, v.Ref())
	case typegraph.KindString:
		s, _ := v.AsString()
		tree.AddNode(joinLabel(label, strconv.Quote(s)))
	case typegraph.KindNull:
		tree.AddNode(joinLabel(label, "null"))
	default:
		tree.AddNode(joinLabel(label, fmt.Sprint(v.Interface())))
	}
}

func refLabel(r *typegraph.Ref) string {
	s := r.Tag().String()
	if r.Downgraded() {
		s += " (from " + r.WireTag().String() + ")"
	}
	if r.ID() != "" {
		s += " #" + r.ID()
	}
	return s
}

func (w *treeWalker) object(tree treeprint.Tree, label string, r *typegraph.Ref) {
	if w.seen[r] {
		tree.AddNode(joinLabel(label, "→ #"+r.ID()))
		return
	}
	w.seen[r] = true
	br := tree.AddBranch(joinLabel(label, refLabel(r)))
	switch o := r.Object().(type) {
	case *timeline.Timeline:
		addText(br, "name", o.Name)
		if o.GlobalStartTime != nil {
			br.AddNode("global_start_time: " + o.GlobalStartTime.String())
		}
		br.AddNode("duration: " + o.Duration().String())
		if o.Tracks != nil {
			w.composition(br.AddBranch("tracks"), &o.Tracks.Composition)
		}
	case *timeline.Track:
		addText(br, "name", o.Name)
		br.AddNode("kind: " + o.Kind)
		br.AddNode("duration: " + o.Duration().String())
		w.composition(br, &o.Composition)
	case *timeline.Stack:
		addText(br, "name", o.Name)
		w.composition(br, &o.Composition)
	case *timeline.Clip:
		addText(br, "name", o.Name)
		if o.SourceRange != nil {
			br.AddNode("source_range: " + rangeString(*o.SourceRange))
		}
		w.object(br, "media", o.MediaReference)
		for i, m := range o.Markers {
			br.AddNode(fmt.Sprintf("marker %d: %s %s %s", i, strconv.Quote(m.Name), m.Color, rangeString(m.MarkedRange)))
		}
	case *timeline.Gap:
		br.AddNode("duration: " + o.Duration().String())
	case *timeline.ExternalReference:
		addText(br, "name", o.Name)
		addText(br, "target_url", o.TargetURL)
	case *timeline.MissingReference:
		addText(br, "name", o.Name)
	default:
		br.AddNode(fmt.Sprintf("%T", o))
	}
}

func (w *treeWalker) composition(tree treeprint.Tree, c *timeline.Composition) {
	for i, r := range c.Children {
		w.object(tree, strconv.Itoa(i), r)
	}
}

func addText(tree treeprint.Tree, key, s string) {
	if s != "" {
		tree.AddNode(key + ": " + strconv.Quote(s))
	}
}

func rangeString(r timeline.TimeRange) string {
	return r.StartTime.String() + "+" + r.Duration.String()
}
