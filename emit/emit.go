// Package emit turns an extracted, deduplicated set of partitions into a
// single .winmd byte stream: one TypeDef per struct, enum, and typedef,
// plus one "Apis" class per partition carrying its P/Invoke methods and
// #define constants (spec.md §4.5).
package emit

import (
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmd"
)

// Emit writes every partition's owned types and functions into a fresh
// assembly named assemblyName, returning the finished .winmd bytes.
// overrides is bnd.yaml's `namespace_overrides` map, relocating a named
// type to a configured namespace instead of its declaring partition's
// own (spec.md §4.3); pass nil when there are none.
//
// TypeDef RIDs are assigned by the Builder strictly in AddTypeDef call
// order, and a TypeDef's FieldList/MethodList range is fixed the moment
// it is created — there is no way to come back later and add a field a
// forward reference needed. So emission runs in two passes: buildPlan
// walks every owned struct/enum/typedef first, in the exact order they
// will be emitted, and newResolver predicts each one's eventual TypeDef
// token from its position in that plan. Only then does the emit pass
// below call AddTypeDef, by which point every Named reference --
// forward, backward, or self -- already resolves.
func Emit(assemblyName string, reg *model.TypeRegistry, partitions []*model.Partition, overrides map[string]string) []byte {
	b := winmd.NewBuilder(assemblyName)

	wk, firstRID := bindWellKnown(b)
	plan := buildPlan(reg, partitions, overrides)
	resolve := newResolver(b, reg, plan, firstRID).resolve

	for _, p := range partitions {
		for _, s := range p.Structs {
			if !owns(reg, overrides, s.Name, p.Namespace) {
				continue
			}
			emitStruct(b, wk, resolve, emitNamespace(overrides, s.Name, p.Namespace), s)
		}
		for _, e := range p.Enums {
			if !owns(reg, overrides, e.Name, p.Namespace) {
				continue
			}
			emitEnum(b, wk, resolve, emitNamespace(overrides, e.Name, p.Namespace), e)
		}
		for _, t := range p.Typedefs {
			if !owns(reg, overrides, t.Name, p.Namespace) {
				continue
			}
			emitTypedef(b, wk, resolve, emitNamespace(overrides, t.Name, p.Namespace), t)
		}
	}

	for _, p := range partitions {
		emitApis(b, wk, resolve, p)
	}

	return b.Bytes()
}
