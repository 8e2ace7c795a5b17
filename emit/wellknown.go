package emit

import (
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmd"
)

// mscorlibAssembly is the assembly every CLR base-library type
// (System.ValueType, System.Enum, System.MulticastDelegate,
// System.Attribute, System.Object) is declared in.
const mscorlibAssembly = "mscorlib"

// attributeNamespace and attributeName are where bnd's own
// "this typedef resolved to an opaque wrapper struct, not a real
// value type" marker lives (spec.md §4.5's "native-typedef custom
// attribute"). bnd mints this type itself rather than assuming a
// consumer-supplied metadata library defines one, since nothing in a
// type_import entry is guaranteed to carry it.
const (
	attributeNamespace = "Bnd.Metadata"
	attributeName       = "NativeTypedefAttribute"
)

// wellKnown bundles the small set of CLR base types and the
// native-typedef marker attribute that every emitted struct, enum, and
// wrapper-struct typedef needs a reference to.
type wellKnown struct {
	object            uint32 // TypeRef coded token: System.Object
	valueType         uint32 // TypeRef coded token: System.ValueType
	enumType          uint32 // TypeRef coded token: System.Enum
	multicastDelegate uint32 // TypeRef coded token: System.MulticastDelegate
	nativeTypedefCtor uint32 // CustomAttributeType coded token for NativeTypedefAttribute's .ctor
}

// bindWellKnown interns the mscorlib TypeRefs every emitted type
// extends or references, and emits the native-typedef marker attribute
// as a TypeDef row — returning the RID the next TypeDef (the first
// entry of the emission plan) will receive, for newResolver.
func bindWellKnown(b *winmd.Builder) (wellKnown, uint32) {
	wk := wellKnown{
		object:            b.TypeRefInAssembly(mscorlibAssembly, "System", "Object"),
		valueType:         b.TypeRefInAssembly(mscorlibAssembly, "System", "ValueType"),
		enumType:          b.TypeRefInAssembly(mscorlibAssembly, "System", "Enum"),
		multicastDelegate: b.TypeRefInAssembly(mscorlibAssembly, "System", "MulticastDelegate"),
	}

	attribute := b.TypeRefInAssembly(mscorlibAssembly, "System", "Attribute")
	coded := b.AddTypeDef(attributeNamespace, attributeName,
		winmd.TypeAttrPublic|winmd.TypeAttrSealed|winmd.TypeAttrAnsiClass,
		attribute, nil,
		[]winmd.MethodSpec{{
			Name:      ".ctor",
			Flags:     winmd.MethodAttrPublic | winmd.MethodAttrHideBySig | winmd.MethodAttrSpecialName | winmd.MethodAttrRTSpecial,
			ImplFlags: winmd.MethodImplIL,
			Signature: winmd.EncodeMethodSignature(model.Void, nil, true, nil),
		}})
	rid := winmd.TypeDefRIDFromToken(coded)
	wk.nativeTypedefCtor = b.CustomAttributeTypeMethodDef(b.MethodDefRID(rid, 0))
	return wk, rid + 1
}

// stampNativeTypedef attaches the NativeTypedefAttribute marker to the
// TypeDef with the given RID — every wrapper-struct typedef gets one,
// distinguishing "this is a bnd-synthesized opaque wrapper" from a
// genuine C struct (spec.md §4.5).
func stampNativeTypedef(b *winmd.Builder, wk wellKnown, typeDefRID uint32) {
	b.AddCustomAttribute(b.HasCustomAttributeTypeDef(typeDefRID), wk.nativeTypedefCtor, []byte{0x01, 0x00, 0x00, 0x00})
}
