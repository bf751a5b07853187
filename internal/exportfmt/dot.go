// Package exportfmt renders Cfg and Icfg values to the two external
// formats of spec.md §6: Graphviz DOT (for `mirage cfg --format dot`) and
// JSON (for the HTTP surface and `mirage cfg --format json`). Both are presentation-
// layer only — the core never reads its own export output back.
package exportfmt

import (
	"strconv"
	"strings"
	"text/template"

	"mirage/internal/cfgmodel"
	"mirage/internal/icfg"
)

var cfgDotTemplate = template.Must(template.New("cfg-dot").Parse(`digraph CFG {
  rankdir=TB;
  node [shape=box, style=rounded];
{{- range .Nodes}}
  {{.ID}} [label="{{.Label}}"{{if .Fill}}, style="rounded,filled", fillcolor={{.Fill}}{{end}}];
{{- end}}
{{- range .Edges}}
  {{.From}} -> {{.To}} [color={{.Color}}{{if .Label}}, label="{{.Label}}"{{end}}{{if .Dashed}}, style=dashed{{end}}];
{{- end}}
}
`))

type dotNode struct {
	ID    int64
	Label string
	Fill  string
}

type dotEdge struct {
	From, To int64
	Color    string
	Label    string
	Dashed   bool
}

// edgeCode returns the short DOT edge label for an EdgeType, per spec.md §6.
func edgeCode(t cfgmodel.EdgeType) string {
	switch t {
	case cfgmodel.EdgeTrueBranch:
		return "T"
	case cfgmodel.EdgeFalseBranch:
		return "F"
	case cfgmodel.EdgeLoopBack:
		return "loop"
	case cfgmodel.EdgeLoopExit:
		return "exit"
	case cfgmodel.EdgeException:
		return "unwind"
	case cfgmodel.EdgeCall:
		return "call"
	case cfgmodel.EdgeReturn:
		return "ret"
	default:
		return ""
	}
}

func terminatorDisplay(t cfgmodel.Terminator) string {
	switch t.Kind {
	case cfgmodel.TermGoto:
		return "goto"
	case cfgmodel.TermSwitchInt:
		return "switch_int"
	case cfgmodel.TermReturn:
		return "return"
	case cfgmodel.TermUnreachable:
		return "unreachable"
	case cfgmodel.TermCall:
		return "call"
	case cfgmodel.TermAbort:
		return "abort"
	default:
		return "?"
	}
}

// CfgDOT renders cfg as a Graphviz DOT digraph, per spec.md §6: node labels
// are "Block <id>\n<KIND>\n<terminator-display>", Entry filled light-green
// and Exit filled light-coral; edges colored by EdgeType with a short code
// label and Fallthrough edges dashed.
func CfgDOT(cfg *cfgmodel.Cfg) string {
	var nodes []dotNode
	var edges []dotEdge

	for _, id := range cfg.Blocks() {
		b := cfg.Block(id)
		fill := ""
		switch b.Kind {
		case cfgmodel.BlockKindEntry:
			fill = "lightgreen"
		case cfgmodel.BlockKindExit:
			fill = "lightcoral"
		}
		label := escapeLabel(
			"Block " + itoa(int64(id)) + "\\n" +
				strings.ToUpper(b.Kind.String()) + "\\n" +
				terminatorDisplay(b.Terminator))
		nodes = append(nodes, dotNode{ID: int64(id), Label: label, Fill: fill})

		for _, succ := range cfg.Successors(id) {
			et, _ := cfg.EdgeKind(id, succ)
			edges = append(edges, dotEdge{
				From:   int64(id),
				To:     int64(succ),
				Color:  et.DotColor(),
				Label:  edgeCode(et),
				Dashed: et == cfgmodel.EdgeFallthrough,
			})
		}
	}

	var buf strings.Builder
	_ = cfgDotTemplate.Execute(&buf, struct {
		Nodes []dotNode
		Edges []dotEdge
	}{nodes, edges})
	return buf.String()
}

// IcfgDOT renders g as a Graphviz DOT digraph: Call edges bold/blue, Return
// edges dashed/red, CallSite nodes dashed, per spec.md §4.5.
func IcfgDOT(g *icfg.Icfg) string {
	var buf strings.Builder
	buf.WriteString("digraph ICFG {\n  rankdir=TB;\n  node [shape=box, style=rounded];\n")
	for _, id := range g.NodeIDs() {
		n := g.Node(id)
		style := "rounded,filled"
		fill := "white"
		if n.NodeType == icfg.CallSite {
			style = "rounded,dashed"
		}
		switch n.NodeType {
		case icfg.FunctionEntry:
			fill = "lightgreen"
		case icfg.FunctionExit:
			fill = "lightcoral"
		}
		label := escapeLabel(n.FunctionName + "\\n" + n.NodeType.String() + " " + itoa(n.BlockID))
		buf.WriteString("  " + itoa(id) + " [label=\"" + label + "\", style=\"" + style + "\", fillcolor=" + fill + "];\n")
	}
	for _, e := range g.Edges() {
		color, dashed := "black", false
		switch e.Kind {
		case icfg.Call:
			color, dashed = "blue", false
		case icfg.Return:
			color, dashed = "red", true
		}
		extra := ""
		if dashed {
			extra = ", style=dashed"
		}
		penwidth := ""
		if e.Kind == icfg.Call {
			penwidth = ", penwidth=2"
		}
		buf.WriteString("  " + itoa(e.From) + " -> " + itoa(e.To) +
			" [color=" + color + ", label=\"" + e.Label + "\"" + extra + penwidth + "];\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
