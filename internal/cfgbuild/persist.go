package cfgbuild

import (
	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
	"mirage/internal/storage"
)

// ToStorageBlocks converts an already-built Cfg into the storage trait's
// CfgBlockData rows, one per block, id-ordered. TerminatorTargets/Labels
// fully describe each block's outgoing edges (per storage.CfgBlockData's
// doc comment), so a round trip through GetCfgBlocks/FromStorageBlocks
// reconstructs an equivalent Cfg without a separate edge table.
func ToStorageBlocks(functionID int64, cfg *cfgmodel.Cfg) []storage.CfgBlockData {
	ids := cfg.Blocks()
	out := make([]storage.CfgBlockData, 0, len(ids))
	for _, id := range ids {
		b := cfg.Block(id)
		targets, labels := terminatorTargetsAndLabels(b.Terminator)
		out = append(out, storage.CfgBlockData{
			FunctionID:        functionID,
			BlockID:           int64(id),
			Kind:              b.Kind.String(),
			Statements:        b.Statements,
			TerminatorKind:    b.Terminator.Kind.String(),
			TerminatorTargets: targets,
			TerminatorLabels:  labels,
			SourceFile:        b.SourceFile,
			SourceLine:        b.SourceLine,
		})
	}
	return out
}

func terminatorTargetsAndLabels(t cfgmodel.Terminator) ([]int64, []string) {
	switch t.Kind {
	case cfgmodel.TermGoto:
		return []int64{int64(t.GotoTarget)}, []string{"goto"}
	case cfgmodel.TermSwitchInt:
		targets := make([]int64, len(t.Targets))
		labels := make([]string, len(t.Targets))
		for i, tgt := range t.Targets {
			targets[i] = int64(tgt.Block)
			labels[i] = tgt.Label
		}
		return targets, labels
	case cfgmodel.TermCall:
		var targets []int64
		var labels []string
		if t.CallTarget != nil {
			targets = append(targets, int64(*t.CallTarget))
			labels = append(labels, "call")
		}
		if t.CallUnwind != nil {
			targets = append(targets, int64(*t.CallUnwind))
			labels = append(labels, "unwind")
		}
		return targets, labels
	default: // Return, Unreachable, Abort
		return nil, nil
	}
}

// FromStorageBlocks reconstructs a Cfg from persisted CfgBlockData rows,
// the inverse of ToStorageBlocks, and runs the same loop-edge upgrade pass
// cfgbuild.Build does, so a Cfg read back from storage is indistinguishable
// from one just produced by a live producer.
func FromStorageBlocks(functionID string, rows []storage.CfgBlockData) *cfgmodel.Cfg {
	list := make(cfgmodel.BlockList, 0, len(rows))
	for _, r := range rows {
		list = append(list, cfgmodel.BlockListEntry{
			ID:         cfgmodel.BlockID(r.BlockID),
			Statements: r.Statements,
			Terminator: terminatorFromStorage(r),
			SourceFile: r.SourceFile,
			SourceLine: r.SourceLine,
		})
	}
	cfg := cfgmodel.FromBlockList(functionID, list)
	if cfg.NumBlocks() == 0 {
		return cfg
	}
	domTree := cfganalysis.BuildDominatorTree(cfg)
	loops := cfganalysis.DetectNaturalLoops(cfg, domTree)
	cfganalysis.UpgradeLoopEdges(cfg, loops)
	return cfg
}

func terminatorFromStorage(r storage.CfgBlockData) cfgmodel.Terminator {
	switch r.TerminatorKind {
	case "goto":
		if len(r.TerminatorTargets) == 1 {
			return cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: cfgmodel.BlockID(r.TerminatorTargets[0])}
		}
	case "switch_int":
		targets := make([]cfgmodel.SwitchTarget, len(r.TerminatorTargets))
		for i, t := range r.TerminatorTargets {
			label := "otherwise"
			if i < len(r.TerminatorLabels) {
				label = r.TerminatorLabels[i]
			}
			targets[i] = cfgmodel.SwitchTarget{Label: label, Block: cfgmodel.BlockID(t)}
		}
		return cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: targets}
	case "call":
		t := cfgmodel.Terminator{Kind: cfgmodel.TermCall}
		for i, tgt := range r.TerminatorTargets {
			label := ""
			if i < len(r.TerminatorLabels) {
				label = r.TerminatorLabels[i]
			}
			v := cfgmodel.BlockID(tgt)
			switch label {
			case "call":
				t.CallTarget = &v
			case "unwind":
				t.CallUnwind = &v
			}
		}
		return t
	case "return":
		return cfgmodel.Terminator{Kind: cfgmodel.TermReturn}
	case "abort":
		return cfgmodel.Terminator{Kind: cfgmodel.TermAbort}
	}
	return cfgmodel.Terminator{Kind: cfgmodel.TermUnreachable}
}
