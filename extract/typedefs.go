package extract

import (
	"fmt"

	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// collectTypedefs walks root's direct children for typedef
// declarations in scope, skipping three kinds that should never
// become a standalone TypedefDef: one already consumed by
// collectStructs as an anonymous record's borrowed name, a passthrough
// alias that just restates a record's own tag ("typedef struct Foo
// Foo;"), and a fixed-width/size typedef mapType already resolves
// through directly (spec.md §4.1, §4.2).
func (b *builder) collectTypedefs(root cfront.Entity) ([]*model.TypedefDef, error) {
	var out []*model.TypedefDef

	for _, child := range root.Children() {
		if child.Kind() != cfront.EntityTypedefDecl {
			continue
		}
		if b.consumedTypedefs[child] {
			continue
		}
		if loc, ok := child.Location(); ok && !b.scope.inScope(loc.File) {
			continue
		}
		name := child.Name()
		if name == "" || isPrimitiveTypedefName(name) {
			continue
		}

		underlying, ok := child.TypedefUnderlyingType()
		if !ok {
			continue
		}
		if underlying.Kind() == cfront.TypeRecord || underlying.Kind() == cfront.TypeEnum {
			if decl, ok := underlying.Declaration(); ok && decl.Name() == name {
				continue
			}
		}

		ct, err := b.mapper.mapType(underlying)
		if err != nil {
			return nil, fmt.Errorf("typedef %s: %w", name, err)
		}
		out = append(out, &model.TypedefDef{Name: name, UnderlyingType: ct})
	}
	return out, nil
}
