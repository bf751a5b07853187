package exportfmt

import (
	"fmt"
	"strings"

	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
	"mirage/internal/pathenum"
)

// SummarizePath renders a one-line natural-language summary of p, per
// spec.md §4.6: "entry -> b1(call bK) -> ... -> exit-kind (N blocks)",
// elided to "first -> ... -> last (N blocks)" past five blocks, with a
// path-kind suffix ("-> error", "-> dead end") or an "Unreachable:" prefix.
func SummarizePath(cfg *cfgmodel.Cfg, p pathenum.Path) string {
	var body string
	if len(p.Blocks) <= 5 {
		parts := make([]string, len(p.Blocks))
		for i, id := range p.Blocks {
			parts[i] = blockLabel(cfg, id)
		}
		body = strings.Join(parts, " -> ")
	} else {
		body = fmt.Sprintf("%s -> ... -> %s", blockLabel(cfg, p.Blocks[0]), blockLabel(cfg, p.Blocks[len(p.Blocks)-1]))
	}

	suffix := fmt.Sprintf(" (%d blocks)", len(p.Blocks))
	switch p.Kind {
	case pathenum.PathError:
		return body + " -> error" + suffix
	case pathenum.PathDegenerate:
		return body + " -> dead end" + suffix
	case pathenum.PathUnreachable:
		return "Unreachable: " + body + suffix
	default:
		return body + suffix
	}
}

func blockLabel(cfg *cfgmodel.Cfg, id cfgmodel.BlockID) string {
	b := cfg.Block(id)
	if b == nil {
		return fmt.Sprintf("b%d", id)
	}
	if b.Kind == cfgmodel.BlockKindEntry {
		return "entry"
	}
	if b.Terminator.Kind == cfgmodel.TermCall {
		if b.Terminator.CallTarget != nil {
			return fmt.Sprintf("b%d(call b%d)", id, *b.Terminator.CallTarget)
		}
		return fmt.Sprintf("b%d(call)", id)
	}
	return fmt.Sprintf("b%d", id)
}

// SummarizeCfg reports block count, exit count, entry id, and loop count
// for name's Cfg, per spec.md §4.6.
func SummarizeCfg(name string, cfg *cfgmodel.Cfg) string {
	domTree := cfganalysis.BuildDominatorTree(cfg)
	loops := cfganalysis.DetectNaturalLoops(cfg, domTree)
	return fmt.Sprintf("%s: %d blocks, entry=%d, %d exits, %d loops",
		name, cfg.NumBlocks(), cfg.Entry(), len(cfg.Exits()), len(loops))
}
