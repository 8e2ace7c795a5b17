package extract

import (
	"fmt"

	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// collectFunctions walks root's direct children for function
// declarations in scope. A variadic prototype has no representable
// metadata signature and is dropped with a warning (spec.md P8); a
// name already emitted once (e.g. a header re-declares a function
// after a `#define`-based redirect) is skipped rather than duplicated.
func (b *builder) collectFunctions(root cfront.Entity) ([]*model.FunctionDef, error) {
	var out []*model.FunctionDef
	seen := make(map[string]bool)

	for _, child := range root.Children() {
		if child.Kind() != cfront.EntityFunctionDecl {
			continue
		}
		if loc, ok := child.Location(); ok && !b.scope.inScope(loc.File) {
			continue
		}
		name := child.Name()
		if name == "" || seen[name] {
			continue
		}
		fnType, ok := child.Type()
		if !ok {
			continue
		}
		if fnType.IsVariadic() {
			b.log.Warnf("dropping variadic function %q: cannot be represented in metadata", name)
			continue
		}

		def, err := functionFromType(name, fnType, b.mapper)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		seen[name] = true
		out = append(out, def)
	}
	return out, nil
}

// functionFromType builds a FunctionDef from a resolved function
// type. cfront exposes parameter types but not parameter entities, so
// parameters are named positionally ("arg1", "arg2", ...) — the same
// thing a C header that forward-declares "int foo(int, char*);" would
// force on any binding generator.
func functionFromType(name string, fnType cfront.Type, m *mapper) (*model.FunctionDef, error) {
	ret, ok := fnType.ResultType()
	if !ok {
		return nil, fmt.Errorf("no return type")
	}
	retCtype, err := m.mapType(ret)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}

	var params []*model.ParamDef
	for i, argTy := range fnType.ArgumentTypes() {
		ct, err := m.mapType(argTy)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		params = append(params, &model.ParamDef{
			Name: fmt.Sprintf("arg%d", i+1),
			Type: ct,
		})
	}

	return &model.FunctionDef{
		Name:              name,
		ReturnType:        retCtype,
		Params:            params,
		CallingConvention: mapCallingConvention(fnType.CallingConvention()),
	}, nil
}
