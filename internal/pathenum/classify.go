package pathenum

import "mirage/internal/cfgmodel"

// Classify assigns a PathKind to a completed path, per spec.md §4.3's
// priority order (highest priority wins when more than one condition
// holds):
//  1. Unreachable — any block on the path is statically unreachable from
//     entry (can only happen for paths seeded from a non-entry block, e.g.
//     a cached path being revalidated after a CFG edit).
//  2. Error — any block's terminator is Abort, or a Call with an unwind
//     successor (a panic-style exit somewhere on the path).
//  3. Degenerate — any block's terminator is Unreachable, or the path
//     fails static feasibility.
//  4. Normal — everything else.
func Classify(ctx *EnumerationContext, p Path) PathKind {
	for _, b := range p.Blocks {
		if ctx.Unreachable[b] {
			return PathUnreachable
		}
	}
	for _, id := range p.Blocks {
		b := ctx.Cfg.Block(id)
		if b == nil {
			continue
		}
		if b.Terminator.Kind == cfgmodel.TermAbort || (b.Terminator.Kind == cfgmodel.TermCall && b.Terminator.CallUnwind != nil) {
			return PathError
		}
	}
	for _, id := range p.Blocks {
		if b := ctx.Cfg.Block(id); b != nil && b.Terminator.Kind == cfgmodel.TermUnreachable {
			return PathDegenerate
		}
	}
	if !IsFeasiblePath(ctx.Cfg, p.Blocks) {
		return PathDegenerate
	}
	return PathNormal
}
