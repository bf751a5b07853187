package exportfmt

import (
	"encoding/json"

	"mirage/internal/cfgmodel"
	"mirage/internal/icfg"
)

// CfgJSON is the exported shape of a Cfg, per spec.md §6:
// {function_name, entry, exits, blocks, edges}.
type CfgJSON struct {
	FunctionName string          `json:"function_name"`
	Entry        int64           `json:"entry"`
	Exits        []int64         `json:"exits"`
	Blocks       []CfgBlockJSON  `json:"blocks"`
	Edges        []CfgEdgeJSON   `json:"edges"`
}

type CfgBlockJSON struct {
	ID             int64              `json:"id"`
	Kind           string             `json:"kind"`
	Statements     []string           `json:"statements"`
	Terminator     TerminatorJSON     `json:"terminator"`
	SourceLocation *SourceLocationJSON `json:"source_location,omitempty"`
}

type TerminatorJSON struct {
	Kind    string  `json:"kind"`
	Target  *int64  `json:"target,omitempty"`
	Targets []int64 `json:"targets,omitempty"`
	Labels  []string `json:"labels,omitempty"`
	Unwind  *int64  `json:"unwind,omitempty"`
}

type SourceLocationJSON struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

type CfgEdgeJSON struct {
	From int64  `json:"from"`
	To   int64  `json:"to"`
	Kind string `json:"kind"`
}

// ToCfgJSON converts an in-memory Cfg to its exported JSON shape.
func ToCfgJSON(functionName string, cfg *cfgmodel.Cfg) CfgJSON {
	out := CfgJSON{FunctionName: functionName, Entry: int64(cfg.Entry())}
	for _, id := range cfg.Exits() {
		out.Exits = append(out.Exits, int64(id))
	}
	for _, id := range cfg.Blocks() {
		b := cfg.Block(id)
		blk := CfgBlockJSON{
			ID:         int64(id),
			Kind:       b.Kind.String(),
			Statements: b.Statements,
			Terminator: terminatorJSON(b.Terminator),
		}
		if b.SourceFile != "" || b.SourceLine != 0 {
			blk.SourceLocation = &SourceLocationJSON{File: b.SourceFile, Line: b.SourceLine}
		}
		out.Blocks = append(out.Blocks, blk)
		for _, succ := range cfg.Successors(id) {
			et, _ := cfg.EdgeKind(id, succ)
			out.Edges = append(out.Edges, CfgEdgeJSON{From: int64(id), To: int64(succ), Kind: et.String()})
		}
	}
	return out
}

func terminatorJSON(t cfgmodel.Terminator) TerminatorJSON {
	tj := TerminatorJSON{Kind: terminatorDisplay(t)}
	switch t.Kind {
	case cfgmodel.TermGoto:
		v := int64(t.GotoTarget)
		tj.Target = &v
	case cfgmodel.TermSwitchInt:
		for _, tgt := range t.Targets {
			tj.Targets = append(tj.Targets, int64(tgt.Block))
			tj.Labels = append(tj.Labels, tgt.Label)
		}
	case cfgmodel.TermCall:
		if t.CallTarget != nil {
			v := int64(*t.CallTarget)
			tj.Target = &v
		}
		if t.CallUnwind != nil {
			v := int64(*t.CallUnwind)
			tj.Unwind = &v
		}
	}
	return tj
}

// MarshalCfgJSON renders cfg as indented JSON text.
func MarshalCfgJSON(functionName string, cfg *cfgmodel.Cfg) ([]byte, error) {
	return json.MarshalIndent(ToCfgJSON(functionName, cfg), "", "  ")
}

// IcfgJSON is the exported shape of an Icfg: one record per node plus its
// edges, sufficient to reconstruct the graph without the gonum dependency.
type IcfgJSON struct {
	EntryFunction int64          `json:"entry_function"`
	Nodes         []IcfgNodeJSON `json:"nodes"`
	Edges         []IcfgEdgeJSON `json:"edges"`
}

type IcfgNodeJSON struct {
	ID           int64  `json:"id"`
	FunctionID   int64  `json:"function_id"`
	FunctionName string `json:"function_name"`
	BlockID      int64  `json:"block_id"`
	NodeType     string `json:"node_type"`
}

type IcfgEdgeJSON struct {
	From         int64  `json:"from"`
	To           int64  `json:"to"`
	Kind         string `json:"kind"`
	Label        string `json:"label"`
	FromFunction int64  `json:"from_function,omitempty"`
	ToFunction   int64  `json:"to_function,omitempty"`
}

// ToIcfgJSON converts an Icfg to its exported JSON shape.
func ToIcfgJSON(g *icfg.Icfg) IcfgJSON {
	out := IcfgJSON{EntryFunction: g.EntryFunction}
	for _, id := range g.NodeIDs() {
		n := g.Node(id)
		out.Nodes = append(out.Nodes, IcfgNodeJSON{
			ID: id, FunctionID: n.FunctionID, FunctionName: n.FunctionName,
			BlockID: n.BlockID, NodeType: n.NodeType.String(),
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, IcfgEdgeJSON{
			From: e.From, To: e.To, Kind: e.Kind.String(), Label: e.Label,
			FromFunction: e.FromFunction, ToFunction: e.ToFunction,
		})
	}
	return out
}

// MarshalIcfgJSON renders g as indented JSON text.
func MarshalIcfgJSON(g *icfg.Icfg) ([]byte, error) {
	return json.MarshalIndent(ToIcfgJSON(g), "", "  ")
}
