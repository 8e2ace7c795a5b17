package winmd

import "github.com/youyuanwu/bnd/model"

// ECMA-335 §II.23.1.16 element types, the subset this writer needs.
const (
	elemVoid      = 0x01
	elemBoolean   = 0x02
	elemI1        = 0x04
	elemU1        = 0x05
	elemI2        = 0x06
	elemU2        = 0x07
	elemI4        = 0x08
	elemU4        = 0x09
	elemI8        = 0x0a
	elemU8        = 0x0b
	elemR4        = 0x0c
	elemR8        = 0x0d
	elemPtr       = 0x0f
	elemValueType = 0x11
	elemI         = 0x18
	elemU         = 0x19
	elemArray     = 0x14
)

// ECMA-335 §II.23.2 signature prefixes.
const (
	sigField   = 0x06
	sigDefault = 0x00
	sigHasThis = 0x20
)

// TokenResolver resolves a Named reference's type name to its already
// tag-encoded TypeDefOrRef coded index value — a local TypeDef row for
// a type the emitter just wrote, or an imported TypeRef row for a type
// that came from a type_import entry (spec.md §4.5, §6).
type TokenResolver func(name string) (coded uint32, ok bool)

// EncodeType appends ty's signature encoding to buf (ECMA-335
// §II.23.2.12). A fixed-size C array is encoded as ELEMENT_TYPE_ARRAY
// with an ArrayShape (§II.23.2.13) carrying the element's true rank-1
// size, matching the reference generator's Type::ArrayFixed rather
// than discarding the length into a bare SZArray vector.
//
// A function-pointer type — bare, or one level behind a pointer — is
// always collapsed to a pointer-sized integer here, the one shared
// path every field, parameter, return, and typedef-wrapped position
// routes through: the delegate TypeDef carrying the real signature is
// a separate type (spec.md §4.5), so nothing outside emitDelegate's
// own construction of Invoke's signature ever needs — or is able to
// parse — a raw FNPTR blob (windows-bindgen does not parse one).
func EncodeType(buf []byte, ty model.CType, resolve TokenResolver) []byte {
	switch t := ty.(type) {
	case model.Primitive:
		return append(buf, primitiveElem(t))
	case model.Ptr:
		if _, ok := t.Pointee.(model.FnPtr); ok {
			buf = append(buf, elemPtr)
			return append(buf, elemI)
		}
		buf = append(buf, elemPtr)
		return EncodeType(buf, t.Pointee, resolve)
	case model.Array:
		buf = append(buf, elemArray)
		buf = EncodeType(buf, t.Element, resolve)
		buf = append(buf, encodeCompressedUint(1)...) // rank
		buf = append(buf, encodeCompressedUint(1)...) // numSizes
		buf = append(buf, encodeCompressedUint(uint32(t.Len))...)
		buf = append(buf, encodeCompressedUint(0)...) // numLoBounds
		return buf
	case model.Named:
		coded, ok := resolve(t.Name)
		if !ok {
			if t.Resolved != nil {
				return EncodeType(buf, t.Resolved, resolve)
			}
			coded = 0
		}
		// Always VALUETYPE, even when t.Name resolves to a delegate TypeDef
		// (reference types are conventionally ELEMENT_TYPE_CLASS). Telling
		// the two apart here needs knowing the referenced TypeDef's own
		// kind, which TokenResolver doesn't carry; windows-bindgen has been
		// observed to tolerate a delegate referenced as VALUETYPE, so this
		// is left as a known imprecision rather than threading a type-kind
		// lookup through every call site.
		buf = append(buf, elemValueType)
		return append(buf, encodeCompressedUint(coded)...)
	case model.FnPtr:
		return append(buf, elemI)
	default:
		return append(buf, elemVoid)
	}
}

func primitiveElem(p model.Primitive) byte {
	switch p {
	case model.Void:
		return elemVoid
	case model.Bool:
		return elemBoolean
	case model.I8:
		return elemI1
	case model.U8:
		return elemU1
	case model.I16:
		return elemI2
	case model.U16:
		return elemU2
	case model.I32:
		return elemI4
	case model.U32:
		return elemU4
	case model.I64:
		return elemI8
	case model.U64:
		return elemU8
	case model.F32:
		return elemR4
	case model.F64:
		return elemR8
	case model.ISize:
		return elemI
	case model.USize:
		return elemU
	default:
		return elemVoid
	}
}

// ConstantElementType returns the ECMA-335 §II.22.9 Constant table's
// Type byte for a scalar CType, for AddConstant's elementType
// parameter (enum literals and #define constants both resolve to a
// Primitive before reaching AddConstant).
func ConstantElementType(p model.Primitive) byte {
	return primitiveElem(p)
}

// EncodeFieldSignature builds a FieldSig blob (ECMA-335 §II.23.2.4).
func EncodeFieldSignature(ty model.CType, resolve TokenResolver) []byte {
	return EncodeType([]byte{sigField}, ty, resolve)
}

// EncodeMethodSignature builds a MethodDefSig blob (ECMA-335
// §II.23.2.1). P/Invoke methods and delegate Invoke methods are both
// non-generic and non-vararg; hasThis distinguishes the delegate
// Invoke instance method from the static P/Invoke stub.
func EncodeMethodSignature(ret model.CType, params []model.CType, hasThis bool, resolve TokenResolver) []byte {
	callconv := byte(sigDefault)
	if hasThis {
		callconv = sigHasThis
	}
	buf := []byte{callconv}
	buf = append(buf, encodeCompressedUint(uint32(len(params)))...)
	buf = EncodeType(buf, ret, resolve)
	for _, p := range params {
		buf = EncodeType(buf, p, resolve)
	}
	return buf
}
