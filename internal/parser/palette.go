package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/jsvensson/themelab/internal/color"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// nodeColorAttr names the own color of a palette block.
const nodeColorAttr = "color"

// Node is a palette entry: a color, a namespace of children, or both.
type Node struct {
	Hex      string
	Children map[string]*Node
}

func (n *Node) child(name string) *Node {
	if n.Children == nil {
		n.Children = map[string]*Node{}
	}
	c, ok := n.Children[name]
	if !ok {
		c = &Node{}
		n.Children[name] = c
	}
	return c
}

// Lookup resolves a dotted palette path, e.g. ["highlight", "low"].
func (n *Node) Lookup(path []string) (color.Color, error) {
	cur := n
	for i, name := range path {
		next, ok := cur.Children[name]
		if !ok {
			return color.Color{}, fmt.Errorf("palette.%s not found", strings.Join(path[:i+1], "."))
		}
		cur = next
	}
	if cur.Hex == "" {
		return color.Color{}, fmt.Errorf("palette.%s is a namespace, not a color", strings.Join(path, "."))
	}
	return color.ParseHex(cur.Hex)
}

// Flatten returns every color in the palette keyed by dotted path.
func (n *Node) Flatten() map[string]string {
	out := map[string]string{}
	n.flatten(nil, out)
	return out
}

func (n *Node) flatten(path []string, out map[string]string) {
	if n.Hex != "" && len(path) > 0 {
		out[strings.Join(path, ".")] = n.Hex
	}
	for name, c := range n.Children {
		c.flatten(append(path[:len(path):len(path)], name), out)
	}
}

func joinPath(path []string, name string) string {
	return "palette." + strings.Join(append(path[:len(path):len(path)], name), ".")
}

// nodeToCty converts a palette node for the HCL evaluation context. Leaf
// colors become strings; nodes with children become objects that carry
// their own color under "color".
func nodeToCty(n *Node) cty.Value {
	if len(n.Children) == 0 {
		return cty.StringVal(n.Hex)
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(n.Children))
	for k := range n.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := make(map[string]cty.Value, len(keys)+1)
	for _, k := range keys {
		vals[k] = nodeToCty(n.Children[k])
	}
	if n.Hex != "" {
		vals[nodeColorAttr] = cty.StringVal(n.Hex)
	}
	return cty.ObjectVal(vals)
}

// EvalContext returns the evaluation context theme documents are decoded
// with: the palette as the "palette" variable plus the color functions.
func EvalContext(palette *Node) *hcl.EvalContext {
	return buildEvalContext(palette)
}

func buildEvalContext(palette *Node) *hcl.EvalContext {
	root := cty.EmptyObjectVal
	if len(palette.Children) > 0 {
		root = nodeToCty(&Node{Children: palette.Children})
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"palette": root,
		},
		Functions: map[string]function.Function{
			"brighten": makeShadeFunc("Brightens", color.Brighten),
			"darken":   makeShadeFunc("Darkens", color.Darken),
			"alpha":    makeAlphaFunc(),
		},
	}
}

// makeShadeFunc creates an HCL function that shifts the lightness of a color.
// Usage: brighten("#hex", 0.1) or darken(palette.color, 0.1). The alpha
// channel of the input is kept.
func makeShadeFunc(verb string, shade func(color.Color, float64) color.Color) function.Function {
	return function.New(&function.Spec{
		Description: verb + " a color by the given percentage (-1.0 to 1.0)",
		Params: []function.Parameter{
			{
				Name: "color",
				Type: cty.DynamicPseudoType,
			},
			{
				Name: "percentage",
				Type: cty.Number,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			hex, err := colorFromValue(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			c, err := color.ParseHex(hex)
			if err != nil {
				return cty.NilVal, err
			}
			pct, _ := args[1].AsBigFloat().Float64()

			shaded := shade(c, pct)
			shaded.A = c.A
			if shaded.Opaque() {
				return cty.StringVal(shaded.Hex()), nil
			}
			return cty.StringVal(shaded.HexAlpha()), nil
		},
	})
}

// makeAlphaFunc creates alpha(color, percent), which replaces the alpha
// channel with a 0-100 opacity.
func makeAlphaFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Sets the opacity of a color in percent (0 to 100)",
		Params: []function.Parameter{
			{
				Name: "color",
				Type: cty.DynamicPseudoType,
			},
			{
				Name: "percent",
				Type: cty.Number,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			hex, err := colorFromValue(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			pct, _ := args[1].AsBigFloat().Float64()
			return cty.StringVal(color.MergeHexWithAlpha(hex, pct)), nil
		},
	})
}
