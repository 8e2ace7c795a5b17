package emit

import (
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmd"
)

// emitEnum writes one TypeDef inheriting System.Enum, a "value__"
// storage field of the underlying integer type, and one static literal
// field per variant holding its constant value at the underlying
// type's exact width (spec.md §4.5, P4).
func emitEnum(b *winmd.Builder, wk wellKnown, resolve winmd.TokenResolver, namespace string, e *model.EnumDef) {
	underlying, ok := e.UnderlyingType.(model.Primitive)
	if !ok {
		underlying = model.I32
	}

	fields := make([]winmd.FieldSpec, 0, len(e.Variants)+1)
	fields = append(fields, winmd.FieldSpec{
		Name:      "value__",
		Signature: winmd.EncodeFieldSignature(underlying, resolve),
		Flags:     winmd.FieldAttrPublic | winmd.FieldAttrSpecialName | winmd.FieldAttrRTSpecialName,
	})
	selfType := model.Named{Name: e.Name}
	literalFlags := uint16(winmd.FieldAttrPublic | winmd.FieldAttrStatic | winmd.FieldAttrLiteral | winmd.FieldAttrHasDefault)
	for _, v := range e.Variants {
		fields = append(fields, winmd.FieldSpec{
			Name:      v.Name,
			Signature: winmd.EncodeFieldSignature(selfType, resolve),
			Flags:     literalFlags,
		})
	}

	coded := b.AddTypeDef(namespace, e.Name, winmd.TypeAttrPublic|winmd.TypeAttrSealed, wk.enumType, fields, nil)
	rid := winmd.TypeDefRIDFromToken(coded)

	elemType := winmd.ConstantElementType(underlying)
	width := primitiveWidth(underlying)
	signed := isSignedPrimitive(underlying)
	for i, v := range e.Variants {
		value := v.UnsignedValue
		if signed {
			value = uint64(v.SignedValue)
		}
		fieldRID := b.FieldRID(rid, i+1) // index 0 is value__
		b.AddConstant(b.HasConstantField(fieldRID), elemType, encodeIntConstant(width, value))
	}
}

func isSignedPrimitive(p model.Primitive) bool {
	switch p {
	case model.I8, model.I16, model.I32, model.I64, model.ISize:
		return true
	default:
		return false
	}
}

func primitiveWidth(p model.Primitive) int {
	switch p {
	case model.Bool, model.I8, model.U8:
		return 1
	case model.I16, model.U16:
		return 2
	case model.I64, model.U64:
		return 8
	default:
		return 4
	}
}

func encodeIntConstant(width int, value uint64) []byte {
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = byte(value >> (8 * i))
	}
	return buf
}
