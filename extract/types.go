package extract

import (
	"fmt"

	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// LongWidth selects the target-ABI width of C `long`/`unsigned long`
// (spec.md §4.2): WindowsLong treats them as 32-bit, LinuxLP64 as
// 64-bit. The choice is global to a generation run.
type LongWidth int

const (
	WindowsLong LongWidth = iota
	LinuxLP64
)

// compiler built-ins with no portable representation (spec.md §4.2).
var builtinVaList = map[string]bool{
	"va_list":          true,
	"__builtin_va_list": true,
	"__gnuc_va_list":    true,
	"__va_list_tag":     true,
}

// mapper holds the per-run configuration the type mapper needs.
type mapper struct {
	longWidth LongWidth
}

// mapType converts a cfront.Type into a model.CType, per the table in
// spec.md §4.2.
func (m *mapper) mapType(ty cfront.Type) (model.CType, error) {
	switch ty.Kind() {
	case cfront.TypeVoid:
		return model.Void, nil
	case cfront.TypeBool:
		return model.Bool, nil
	case cfront.TypeCharS, cfront.TypeSChar:
		return model.I8, nil
	case cfront.TypeCharU, cfront.TypeUChar:
		return model.U8, nil
	case cfront.TypeShort:
		return model.I16, nil
	case cfront.TypeUShort:
		return model.U16, nil
	case cfront.TypeInt:
		return model.I32, nil
	case cfront.TypeUInt:
		return model.U32, nil
	case cfront.TypeLong:
		if m.longWidth == LinuxLP64 {
			return model.I64, nil
		}
		return model.I32, nil
	case cfront.TypeULong:
		if m.longWidth == LinuxLP64 {
			return model.U64, nil
		}
		return model.U32, nil
	case cfront.TypeLongLong:
		return model.I64, nil
	case cfront.TypeULongLong:
		return model.U64, nil
	case cfront.TypeFloat:
		return model.F32, nil
	case cfront.TypeDouble:
		return model.F64, nil

	case cfront.TypePointer:
		pointee, ok := ty.PointeeType()
		if !ok {
			return nil, fmt.Errorf("pointer has no pointee type")
		}
		inner, err := m.mapType(pointee)
		if err != nil {
			return nil, err
		}
		return model.Ptr{Pointee: inner, IsConst: pointee.IsConstQualified()}, nil

	case cfront.TypeConstantArray:
		elem, ok := ty.ElementType()
		if !ok {
			return nil, fmt.Errorf("array has no element type")
		}
		length, _ := ty.ArrayLen()
		inner, err := m.mapType(elem)
		if err != nil {
			return nil, err
		}
		return model.Array{Element: inner, Len: length}, nil

	case cfront.TypeIncompleteArray:
		elem, ok := ty.ElementType()
		if !ok {
			return nil, fmt.Errorf("incomplete array has no element type")
		}
		inner, err := m.mapType(elem)
		if err != nil {
			return nil, err
		}
		return model.Ptr{Pointee: inner, IsConst: false}, nil

	case cfront.TypeElaborated:
		inner, ok := ty.ElaboratedType()
		if !ok {
			return nil, fmt.Errorf("elaborated type has no inner type")
		}
		return m.mapType(inner)

	case cfront.TypeTypedef:
		decl, ok := ty.Declaration()
		if ok && decl.Name() != "" {
			name := decl.Name()
			if builtinVaList[name] {
				return model.Ptr{Pointee: model.Void, IsConst: false}, nil
			}
			if isPrimitiveTypedefName(name) {
				return m.mapType(ty.CanonicalType())
			}
			named := model.Named{Name: name}
			if underlying, ok := decl.TypedefUnderlyingType(); ok {
				named.Resolved = m.mapTypedefResolved(underlying)
			}
			return named, nil
		}
		return m.mapType(ty.CanonicalType())

	case cfront.TypeRecord:
		decl, ok := ty.Declaration()
		if !ok || decl.Name() == "" {
			return nil, fmt.Errorf("anonymous record type without name")
		}
		if _, hasSize := ty.SizeOf(); hasSize {
			return model.Named{Name: decl.Name()}, nil
		}
		// Opaque/incomplete record: a downstream Ptr{pointee: Void} is
		// exactly a void handle (spec.md §4.2).
		return model.Void, nil

	case cfront.TypeEnum:
		decl, ok := ty.Declaration()
		if !ok || decl.Name() == "" {
			return nil, fmt.Errorf("anonymous enum type without name")
		}
		return model.Named{Name: decl.Name()}, nil

	case cfront.TypeFunctionPrototype:
		ret, ok := ty.ResultType()
		if !ok {
			return nil, fmt.Errorf("function prototype has no return type")
		}
		retCtype, err := m.mapType(ret)
		if err != nil {
			return nil, err
		}
		var params []model.CType
		for _, a := range ty.ArgumentTypes() {
			p, err := m.mapType(a)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
		return model.FnPtr{
			ReturnType:        retCtype,
			Params:            params,
			CallingConvention: mapCallingConvention(ty.CallingConvention()),
		}, nil

	case cfront.TypeFunctionNoPrototype:
		return model.FnPtr{ReturnType: model.Void, Params: nil, CallingConvention: model.CallConvCdecl}, nil

	default:
		return nil, fmt.Errorf("unsupported front-end type kind: %v", ty.Kind())
	}
}

// mapTypedefResolved maps a typedef's underlying type the same way
// mapType does, but for building the Named.Resolved fallback field: a
// typedef's own Named reference always carries the canonical primitive
// alongside the name (spec.md §3: CType::Named.resolved).
func (m *mapper) mapTypedefResolved(ty cfront.Type) model.CType {
	ct, err := m.mapType(ty)
	if err != nil {
		return model.Void
	}
	return ct
}

// isPrimitiveTypedefName reports whether name is one of the standard
// fixed-width/size typedefs whose own definition a partition should
// never re-emit: collectTypedefs skips them and mapType resolves
// through to their canonical primitive directly, so two headers that
// both pull in <stdint.h> don't race to define "uint32_t" first.
func isPrimitiveTypedefName(name string) bool {
	switch name {
	case "size_t", "ssize_t", "ptrdiff_t", "intptr_t", "uintptr_t",
		"int8_t", "uint8_t", "int16_t", "uint16_t",
		"int32_t", "uint32_t", "int64_t", "uint64_t", "wchar_t":
		return true
	default:
		return false
	}
}

func mapCallingConvention(cc cfront.CallingConvention) model.CallConv {
	switch cc {
	case cfront.CCCdecl:
		return model.CallConvCdecl
	case cfront.CCStdcall:
		return model.CallConvStdcall
	case cfront.CCFastcall:
		return model.CallConvFastcall
	default:
		return model.CallConvCdecl
	}
}
