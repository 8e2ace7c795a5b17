package emit

import (
	"math"

	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmd"
)

// emitApis writes the partition's single static "Apis" class carrying
// one P/Invoke method per function and one static literal field per
// #define constant (spec.md §4.5). Skipped entirely when the partition
// has neither, so a header-only partition doesn't grow a pointless
// empty class. Variadic functions never reach here: extract already
// dropped them and logged a warning (spec.md P8).
func emitApis(b *winmd.Builder, wk wellKnown, resolve winmd.TokenResolver, p *model.Partition) {
	if len(p.Functions) == 0 && len(p.Constants) == 0 {
		return
	}

	fields := make([]winmd.FieldSpec, len(p.Constants))
	for i, c := range p.Constants {
		ty, _ := constantTypeAndBytes(c.Value)
		fields[i] = winmd.FieldSpec{
			Name:      c.Name,
			Signature: winmd.EncodeFieldSignature(ty, resolve),
			Flags:     winmd.FieldAttrPublic | winmd.FieldAttrStatic | winmd.FieldAttrLiteral | winmd.FieldAttrHasDefault,
		}
	}

	methods := make([]winmd.MethodSpec, len(p.Functions))
	for i, fn := range p.Functions {
		methods[i] = functionMethodSpec(resolve, fn, p.Library)
	}

	coded := b.AddTypeDef(p.Namespace, "Apis",
		winmd.TypeAttrPublic|winmd.TypeAttrAbstract|winmd.TypeAttrSealed,
		wk.object, fields, methods)
	rid := winmd.TypeDefRIDFromToken(coded)

	for i, c := range p.Constants {
		_, value := constantTypeAndBytes(c.Value)
		elemType, bytes := value.elemType, value.bytes
		fieldRID := b.FieldRID(rid, i)
		b.AddConstant(b.HasConstantField(fieldRID), elemType, bytes)
	}
}

// functionMethodSpec builds the P/Invoke MethodSpec for one function:
// static, public, linked to library's entry point by name, with the
// calling convention mapped per spec.md §4.5/§4.5.3 and each
// parameter's output flag set per the pointer-mutability protocol (P2).
func functionMethodSpec(resolve winmd.TokenResolver, fn *model.FunctionDef, library string) winmd.MethodSpec {
	params := make([]model.CType, len(fn.Params))
	names := make([]string, len(fn.Params))
	flags := make([]uint16, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
		names[i] = p.Name
		if model.IsOuterPtrMut(p.Type) {
			flags[i] = winmd.ParamAttrOut
		}
	}
	return winmd.MethodSpec{
		Name:       fn.Name,
		Flags:      winmd.MethodAttrPublic | winmd.MethodAttrStatic | winmd.MethodAttrHideBySig | winmd.MethodAttrPinvokeImpl,
		ImplFlags:  winmd.MethodImplPreserveSig,
		Signature:  winmd.EncodeMethodSignature(fn.ReturnType, params, false, resolve),
		ParamNames: names,
		ParamFlags: flags,
		PInvoke: &winmd.PInvokeSpec{
			EntryPoint: fn.Name,
			ModuleName: library,
			Flags:      mapCallConv(fn.CallingConvention),
		},
	}
}

// mapCallConv maps a C calling convention to the single PInvoke flag
// the metadata container exposes: cdecl keeps its own flag, stdcall
// and fastcall (and anything else the front end might someday report)
// both collapse to the generic "platform API" flag — bnd-winmd's own
// emit.rs draws this same line, not a richer per-convention flag set.
func mapCallConv(cc model.CallConv) uint16 {
	if cc == model.CallConvCdecl {
		return winmd.PInvokeCallConvCdecl
	}
	return winmd.PInvokeCallConvPlatformApi
}

// constantBytes is the element-type byte plus its encoded value for a
// #define constant's Constant table row.
type constantBytes struct {
	elemType byte
	bytes    []byte
}

// constantTypeAndBytes chooses the Constant table's metadata type by
// value (spec.md §4.5): a signed literal is always 32-bit signed, an
// unsigned one is 32-bit unsigned if it fits or 64-bit unsigned
// otherwise, and a float literal is always 64-bit float.
func constantTypeAndBytes(v model.ConstantValue) (model.Primitive, constantBytes) {
	switch val := v.(type) {
	case model.Signed:
		return model.I32, constantBytes{winmd.ConstantElementType(model.I32), encodeIntConstant(4, uint64(uint32(int32(val))))}
	case model.Unsigned:
		if uint64(val) <= math.MaxUint32 {
			return model.U32, constantBytes{winmd.ConstantElementType(model.U32), encodeIntConstant(4, uint64(val))}
		}
		return model.U64, constantBytes{winmd.ConstantElementType(model.U64), encodeIntConstant(8, uint64(val))}
	case model.Float:
		bits := math.Float64bits(float64(val))
		return model.F64, constantBytes{winmd.ConstantElementType(model.F64), encodeIntConstant(8, bits)}
	default:
		return model.I32, constantBytes{winmd.ConstantElementType(model.I32), encodeIntConstant(4, 0)}
	}
}
