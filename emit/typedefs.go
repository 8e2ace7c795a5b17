package emit

import (
	"fmt"

	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmd"
)

// emitTypedef writes one TypeDef for t: a delegate if the underlying
// type is a function prototype (or a single-level pointer to one), a
// wrapper struct otherwise (spec.md §4.5).
func emitTypedef(b *winmd.Builder, wk wellKnown, resolve winmd.TokenResolver, namespace string, t *model.TypedefDef) {
	if fn, ok := delegatePrototype(t.UnderlyingType); ok {
		emitDelegate(b, wk, resolve, namespace, t.Name, fn)
		return
	}
	emitWrapperStruct(b, wk, resolve, namespace, t.Name, t.UnderlyingType)
}

// delegatePrototype reports whether ty is, or points one level to, a
// function-pointer type, returning that prototype.
func delegatePrototype(ty model.CType) (model.FnPtr, bool) {
	switch t := ty.(type) {
	case model.FnPtr:
		return t, true
	case model.Ptr:
		if fn, ok := t.Pointee.(model.FnPtr); ok {
			return fn, true
		}
	}
	return model.FnPtr{}, false
}

// emitDelegate writes a TypeDef inheriting System.MulticastDelegate
// with one Invoke method whose signature matches fn bit-for-bit
// (spec.md P5). The winmd file never carries method bodies — like the
// rest of this writer's output it is metadata-only — so, matching the
// reference generator, no constructor is emitted either; a downstream
// bindings generator only ever reads Invoke's signature.
func emitDelegate(b *winmd.Builder, wk wellKnown, resolve winmd.TokenResolver, namespace, name string, fn model.FnPtr) {
	invokeSig := winmd.EncodeMethodSignature(fn.ReturnType, fn.Params, true, resolve)
	methods := []winmd.MethodSpec{
		{
			Name:       "Invoke",
			Flags:      winmd.MethodAttrPublic | winmd.MethodAttrHideBySig | winmd.MethodAttrNewSlot | winmd.MethodAttrVirtual,
			ImplFlags:  winmd.MethodImplIL,
			Signature:  invokeSig,
			ParamNames: syntheticParamNames(len(fn.Params)),
		},
	}
	b.AddTypeDef(namespace, name,
		winmd.TypeAttrPublic|winmd.TypeAttrSealed|winmd.TypeAttrAnsiClass,
		wk.multicastDelegate, nil, methods)
}

func syntheticParamNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("param%d", i)
	}
	return names
}

// emitWrapperStruct writes a one-field wrapper TypeDef for a typedef
// whose underlying type isn't a function prototype: a "Value" field of
// the mapped underlying type, or a pointer-sized integer (an opaque
// handle) when the underlying type is void — e.g. `typedef void *DIR;`
// where the pointee `__dirstream` is never itself defined. Every
// wrapper struct is stamped with the native-typedef marker attribute
// so a downstream consumer can tell it apart from a genuine C struct
// (spec.md §4.5).
func emitWrapperStruct(b *winmd.Builder, wk wellKnown, resolve winmd.TokenResolver, namespace, name string, underlying model.CType) {
	valueType := underlying
	switch u := underlying.(type) {
	case model.Primitive:
		if u == model.Void {
			valueType = model.ISize
		}
	case model.Ptr:
		if pointee, ok := u.Pointee.(model.Primitive); ok && pointee == model.Void {
			valueType = model.ISize
		}
	}

	sig := winmd.EncodeFieldSignature(valueType, resolve)
	coded := b.AddTypeDef(namespace, name,
		winmd.TypeAttrPublic|winmd.TypeAttrSealed|winmd.TypeAttrLayoutSeq,
		wk.valueType, []winmd.FieldSpec{{Name: "Value", Signature: sig}}, nil)
	rid := winmd.TypeDefRIDFromToken(coded)
	stampNativeTypedef(b, wk, rid)
}
