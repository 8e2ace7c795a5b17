package extract

import (
	"fmt"

	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// collectEnums walks root's direct children for enum definitions in
// scope. A named enum becomes a model.EnumDef; an anonymous enum
// ("enum { A, B };", used only to declare a block of related
// constants) has no representable type of its own, so its variants
// are flattened into plain constants instead and returned separately
// for the caller to append after the partition's explicit #define
// constants, keeping output order stable across runs.
func (b *builder) collectEnums(root cfront.Entity) ([]*model.EnumDef, []*model.ConstantDef, error) {
	var enums []*model.EnumDef
	var anonConstants []*model.ConstantDef

	for _, child := range root.Children() {
		if child.Kind() != cfront.EntityEnumDecl {
			continue
		}
		if !child.IsDefinition() {
			continue
		}
		if loc, ok := child.Location(); ok && !b.scope.inScope(loc.File) {
			continue
		}

		variants, err := enumVariants(child)
		if err != nil {
			return nil, nil, err
		}

		if child.Name() == "" {
			for _, v := range variants {
				anonConstants = append(anonConstants, &model.ConstantDef{
					Name:  v.Name,
					Value: model.Signed(v.SignedValue),
				})
			}
			continue
		}

		def := &model.EnumDef{Name: child.Name(), Variants: variants, UnderlyingType: model.I32}
		if underlying, ok := child.EnumUnderlyingType(); ok {
			ct, err := b.mapper.mapType(underlying)
			if err != nil {
				return nil, nil, fmt.Errorf("enum %s underlying type: %w", child.Name(), err)
			}
			def.UnderlyingType = ct
		}
		enums = append(enums, def)
	}
	return enums, anonConstants, nil
}

func enumVariants(ent cfront.Entity) ([]*model.EnumVariant, error) {
	var out []*model.EnumVariant
	for _, c := range ent.Children() {
		if c.Kind() != cfront.EntityEnumConstantDecl {
			continue
		}
		signed, unsigned, ok := c.EnumConstantValue()
		if !ok {
			return nil, fmt.Errorf("enum constant %s has no value", c.Name())
		}
		out = append(out, &model.EnumVariant{
			Name:          c.Name(),
			SignedValue:   signed,
			UnsignedValue: unsigned,
		})
	}
	return out, nil
}
