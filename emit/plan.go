package emit

import (
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/registry"
	"github.com/youyuanwu/bnd/winmd"
)

// plannedType is one local struct, enum, or typedef that will receive
// its own TypeDef row, recorded in the exact partition-then-
// declaration order Emit later calls AddTypeDef in — so a type's
// position in this slice (offset by the TypeDef rows emitted ahead of
// it) predicts the RID the Builder will actually assign it.
type plannedType struct {
	namespace string
	name      string
}

// buildPlan walks every partition's owned structs, enums, and typedefs
// in partition-then-declaration order. "Owned" guards against
// registry.Deduplicate's gap for enums — it filters Structs and
// Typedefs but never Enums (see DESIGN.md) — so a same-named enum
// declared by two partitions is still only planned once, under
// whichever partition registry.Build's first-writer-wins fold
// actually kept; the loser is silently skipped here rather than
// emitted as a duplicate TypeDef.
func buildPlan(reg *model.TypeRegistry, partitions []*model.Partition, overrides map[string]string) []plannedType {
	var plan []plannedType
	for _, p := range partitions {
		for _, s := range p.Structs {
			if owns(reg, overrides, s.Name, p.Namespace) {
				plan = append(plan, plannedType{emitNamespace(overrides, s.Name, p.Namespace), s.Name})
			}
		}
		for _, e := range p.Enums {
			if owns(reg, overrides, e.Name, p.Namespace) {
				plan = append(plan, plannedType{emitNamespace(overrides, e.Name, p.Namespace), e.Name})
			}
		}
		for _, t := range p.Typedefs {
			if owns(reg, overrides, t.Name, p.Namespace) {
				plan = append(plan, plannedType{emitNamespace(overrides, t.Name, p.Namespace), t.Name})
			}
		}
	}
	return plan
}

// emitNamespace is registry.EffectiveNamespace under emit's own name,
// used everywhere emit decides which namespace string a TypeDef is
// actually written under.
func emitNamespace(overrides map[string]string, name, fallback string) string {
	return registry.EffectiveNamespace(overrides, name, fallback)
}

func owns(reg *model.TypeRegistry, overrides map[string]string, name, namespace string) bool {
	owner, ok := reg.OwnerOf(name)
	return !ok || owner == emitNamespace(overrides, name, namespace)
}

// resolver serves TypeDefOrRef coded tokens for every Named reference
// emit's signatures make. Local tokens are precomputed from the plan
// before a single AddTypeDef call happens, so forward references
// (including self-references inside a type's own fields) resolve just
// as well as backward ones. External tokens are minted lazily via
// TypeRefInAssembly and cached, since which externals are actually
// referenced is only known as signatures are built.
type resolver struct {
	builder       *winmd.Builder
	reg           *model.TypeRegistry
	local         map[string]uint32
	externalCache map[string]uint32
}

// newResolver predicts a TypeDef token for every entry in plan,
// starting at firstRID (the RID the first planned type will receive —
// 1 plus however many TypeDefs, such as the native-typedef attribute
// type, were already reserved ahead of the plan).
func newResolver(b *winmd.Builder, reg *model.TypeRegistry, plan []plannedType, firstRID uint32) *resolver {
	r := &resolver{
		builder:       b,
		reg:           reg,
		local:         make(map[string]uint32, len(plan)),
		externalCache: make(map[string]uint32),
	}
	rid := firstRID
	for _, pt := range plan {
		r.local[pt.name] = winmd.PredictTypeDefToken(rid)
		rid++
	}
	return r
}

// resolve implements winmd.TokenResolver.
func (r *resolver) resolve(name string) (uint32, bool) {
	if tok, ok := r.local[name]; ok {
		return tok, true
	}
	if tok, ok := r.externalCache[name]; ok {
		return tok, true
	}
	namespace, ok := r.reg.OwnerOf(name)
	if !ok {
		return 0, false
	}
	asm, ok := r.reg.ExternalAssembly(name)
	if !ok {
		// Registered but not planned and not external: validate.Validate
		// should have already rejected this before emit ever runs.
		return 0, false
	}
	tok := r.builder.TypeRefInAssembly(asm, namespace, name)
	r.externalCache[name] = tok
	return tok, true
}
