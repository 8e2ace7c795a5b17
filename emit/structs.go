package emit

import (
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmd"
)

// emitStruct writes one TypeDef inheriting System.ValueType: sequential
// layout for a plain struct, explicit layout (every field at offset 0)
// for a union, with a ClassLayout record carrying the front end's
// reported size and alignment exactly (spec.md §4.5, P3). Anonymous
// nested records are not special-cased here: extract already promoted
// them into their own StructDef, declaration-adjacent, in the
// partition's Structs slice.
func emitStruct(b *winmd.Builder, wk wellKnown, resolve winmd.TokenResolver, namespace string, s *model.StructDef) {
	flags := uint32(winmd.TypeAttrPublic | winmd.TypeAttrSealed)
	if s.IsUnion {
		flags |= winmd.TypeAttrLayoutExplit
	} else {
		flags |= winmd.TypeAttrLayoutSeq
	}

	fields := make([]winmd.FieldSpec, len(s.Fields))
	for i, f := range s.Fields {
		spec := winmd.FieldSpec{
			Name:      f.Name,
			Signature: winmd.EncodeFieldSignature(f.Type, resolve),
		}
		if s.IsUnion {
			zero := uint32(0)
			spec.Offset = &zero
		}
		fields[i] = spec
	}

	coded := b.AddTypeDef(namespace, s.Name, flags, wk.valueType, fields, nil)
	rid := winmd.TypeDefRIDFromToken(coded)
	b.AddClassLayout(rid, uint16(s.Align), s.Size)
}
