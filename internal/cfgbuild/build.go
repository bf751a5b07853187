package cfgbuild

import (
	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
)

// Build wires a producer's BlockList into a fully classified Cfg: it drops
// dangling terminator references (cfgmodel.FromBlockList), then runs
// dominator-tree and natural-loop analysis once to upgrade each loop's
// back-edge and body-exit edges from their producer-assigned EdgeType to
// LoopBack/LoopExit, per the data model's documented second-pass edge
// reclassification. Both FromSSA and FromAST output feed this before a Cfg
// is stored or exported.
func Build(functionID string, list cfgmodel.BlockList) *cfgmodel.Cfg {
	cfg := cfgmodel.FromBlockList(functionID, list)
	if cfg.NumBlocks() == 0 {
		return cfg
	}
	domTree := cfganalysis.BuildDominatorTree(cfg)
	loops := cfganalysis.DetectNaturalLoops(cfg, domTree)
	cfganalysis.UpgradeLoopEdges(cfg, loops)
	return cfg
}
