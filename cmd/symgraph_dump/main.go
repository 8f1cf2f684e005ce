// symgraph_dump builds the lowering of one operator over placeholder inputs
// and reports the resulting computation graph: every tensor it produced, and
// the per-element rule of each computed tensor.
//
// Example:
//
//	symgraph_dump -op=conv -input=1,3,32,32 -kernel=8,3,3,3 -stride=2 -pad=1
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/symgraph/symgraph/ir"
	"github.com/symgraph/symgraph/lowering"
)

var (
	flagOp = flag.String("op", "conv", "Operator to lower: pad, pool, conv, batch_norm, "+
		"leaky_relu or prelu.")
	flagInput  = flag.String("input", "1,3,32,32", "Comma-separated input extents.")
	flagKernel = flag.String("kernel", "", "Comma-separated kernel extents. For -op=conv these are the "+
		"full OIHW weight extents; for -op=pool, the window extents per pooled axis.")
	flagStride   = flag.Int("stride", 1, "Stride, applied to every strided axis.")
	flagPad      = flag.Int("pad", 0, "Padding margin, applied symmetrically to every padded axis.")
	flagDilation = flag.Int("dilation", 1, "Kernel dilation (-op=conv only).")
	flagMode     = flag.String("mode", "constant", "Padding mode (-op=pad only): constant, edge or reflect.")
	flagKind     = flag.String("kind", "max", "Pooling kind (-op=pool only): max or avg.")
	flagCeil     = flag.Bool("ceil", false, "Use ceiling division for pooled extents (-op=pool only).")
	flagAlpha    = flag.Float64("alpha", 0.1, "Negative-side slope (-op=leaky_relu only).")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'symgraph_dump -help'.", flag.Args())
		os.Exit(1)
	}

	g := ir.New()
	x := g.Placeholder("input", dtypes.Float32, ir.Dims(parseDims(*flagInput)...)...)
	build(g, x)
	report(g)
}

// build lowers the flag-selected operator into g and returns nothing: the
// interesting output is the set of tensors now registered on g.
func build(g *ir.Graph, x *ir.Tensor) {
	switch *flagOp {
	case "pad":
		mode := must.M1(lowering.PadModeString(*flagMode))
		margins := make([]*ir.Expr, x.Rank())
		for i := range margins {
			margins[i] = ir.ConstInt(*flagPad)
		}
		lowering.Pad(x, margins, nil, lowering.WithPadMode(mode))
	case "pool":
		kind := must.M1(lowering.PoolKindString(*flagKind))
		kernel := parseDims(*flagKernel)
		numPooled := len(kernel)
		if numPooled == 0 {
			klog.Errorf("-op=pool requires -kernel window extents.")
			os.Exit(1)
		}
		strides := make([]int, numPooled)
		paddings := make([]int, 2*numPooled)
		axes := make([]int, numPooled)
		for i := range kernel {
			strides[i] = *flagStride
			paddings[i] = *flagPad
			paddings[i+numPooled] = *flagPad
			// Pool the trailing axes, channel-first style.
			axes[i] = x.Rank() - numPooled + i
		}
		lowering.Pool(x, kernel, strides, paddings, kind, axes, *flagCeil, false, "")
	case "conv":
		kernel := parseDims(*flagKernel)
		if len(kernel) != 4 {
			klog.Errorf("-op=conv requires -kernel with 4 extents (OIHW).")
			os.Exit(1)
		}
		weights := x.Graph().Placeholder("weights", x.DType(), ir.Dims(kernel...)...)
		lowering.Conv2dNCHW(x, weights, *flagPad, *flagPad, *flagStride, *flagStride, *flagDilation, 1, "")
	case "batch_norm":
		weights := g.Placeholder("weights", x.DType(), ir.ConstInt(4), x.Dim(1))
		lowering.BatchNormNCHW(x, weights, 1e-5, "")
	case "leaky_relu":
		lowering.LeakyRelu(x, *flagAlpha, "")
	case "prelu":
		slope := g.Placeholder("slope", x.DType(), x.Dim(1))
		lowering.PRelu(x, slope, 1, "")
	default:
		klog.Errorf("Unknown -op=%q. See 'symgraph_dump -help'.", *flagOp)
		os.Exit(1)
	}
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newPlainTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == 1:
				return headerRowStyle
			case row%2 == 0:
				return oddRowStyle
			default:
				return evenRowStyle
			}
		})
}

func report(g *ir.Graph) {
	table := newPlainTable()
	table.Row("Tensor", "DType", "Shape", "Elements", "Kind")
	for _, t := range g.Tensors() {
		kind := "computed"
		if t.IsPlaceholder() {
			kind = "placeholder"
		} else if len(t.ReduceVars()) > 0 {
			kind = fmt.Sprintf("reduction (%d vars)", len(t.ReduceVars()))
		}
		table.Row(t.Name(), t.DType().String(), shapeString(t), elementsString(t), kind)
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Lowering of %q", *flagOp)))
	fmt.Println(table.Render())

	for _, t := range g.Tensors() {
		if t.IsPlaceholder() {
			continue
		}
		vars := t.AxisVars()
		index := make([]*ir.Expr, len(vars))
		names := make([]string, len(vars))
		for i, v := range vars {
			index[i] = v.Expr()
			names[i] = v.Name()
		}
		fmt.Printf("\n%s[%s] =\n\t%s\n",
			t.Name(), strings.Join(names, ", "), ir.Simplify(t.BodyAt(index)))
	}
}

func shapeString(t *ir.Tensor) string {
	parts := make([]string, t.Rank())
	for i, dim := range t.Shape() {
		parts[i] = dim.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// elementsString reports the total element count when every extent is a
// constant, "?" otherwise.
func elementsString(t *ir.Tensor) string {
	env := ir.NewEnv()
	total := int64(1)
	for _, dim := range t.Shape() {
		n, err := ir.Eval(ir.Simplify(dim), env)
		if err != nil {
			return "?"
		}
		total *= int64(n)
	}
	return humanize.Comma(total)
}

func parseDims(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	dims := make([]int, len(parts))
	for i, part := range parts {
		dims[i] = must.M1(strconv.Atoi(strings.TrimSpace(part)))
	}
	return dims
}
