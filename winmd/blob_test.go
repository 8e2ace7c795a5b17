package winmd

import (
	"testing"

	"github.com/youyuanwu/bnd/model"
)

func noResolve(string) (uint32, bool) { return 0, false }

func TestEncodeFieldSignaturePrimitive(t *testing.T) {
	sig := EncodeFieldSignature(model.I32, noResolve)
	want := []byte{sigField, elemI4}
	if string(sig) != string(want) {
		t.Fatalf("got %x, want %x", sig, want)
	}
}

func TestEncodeTypePointerWrapsPointee(t *testing.T) {
	ty := model.Ptr{Pointee: model.U8}
	got := EncodeType(nil, ty, noResolve)
	want := []byte{elemPtr, elemU1}
	if string(got) != string(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeTypeArrayCarriesItsFixedLengthInAnArrayShape(t *testing.T) {
	ty := model.Array{Element: model.I32, Len: 4}
	got := EncodeType(nil, ty, noResolve)
	want := []byte{elemArray, elemI4, 1 /* rank */, 1 /* numSizes */, 4 /* size */, 0 /* numLoBounds */}
	if string(got) != string(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeTypeBareFnPtrCollapsesToPointerSizedInt(t *testing.T) {
	ty := model.FnPtr{ReturnType: model.Void}
	got := EncodeType(nil, ty, noResolve)
	want := []byte{elemI}
	if string(got) != string(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeTypePointerToFnPtrCollapsesToPointerToPointerSizedInt(t *testing.T) {
	ty := model.Ptr{Pointee: model.FnPtr{ReturnType: model.Void}}
	got := EncodeType(nil, ty, noResolve)
	want := []byte{elemPtr, elemI}
	if string(got) != string(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeTypeNamedFallsBackToResolvedWhenUnresolvable(t *testing.T) {
	ty := model.Named{Name: "size_t", Resolved: model.USize}
	got := EncodeType(nil, ty, noResolve)
	want := []byte{elemU}
	if string(got) != string(want) {
		t.Fatalf("expected fallback to Resolved primitive, got %x want %x", got, want)
	}
}

func TestEncodeTypeNamedUsesResolverWhenAvailable(t *testing.T) {
	resolve := func(name string) (uint32, bool) {
		if name == "Point" {
			return codedTypeDefOrRef.encode(tblTypeDef, 3), true
		}
		return 0, false
	}
	ty := model.Named{Name: "Point"}
	got := EncodeType(nil, ty, resolve)
	if got[0] != elemValueType {
		t.Fatalf("expected VALUETYPE element, got %x", got[0])
	}
}

func TestEncodeMethodSignatureHasThisFlag(t *testing.T) {
	static := EncodeMethodSignature(model.Void, nil, false, noResolve)
	instance := EncodeMethodSignature(model.Void, nil, true, noResolve)
	if static[0] != sigDefault {
		t.Fatalf("expected static callconv byte %x, got %x", sigDefault, static[0])
	}
	if instance[0] != sigHasThis {
		t.Fatalf("expected HASTHIS callconv byte %x, got %x", sigHasThis, instance[0])
	}
}
