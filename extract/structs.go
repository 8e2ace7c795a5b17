package extract

import (
	"fmt"

	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// collectStructs walks root's direct children for struct/union
// definitions in scope. An anonymous record borrows its name from an
// owning typedef the same way the reference scraper's sonar helper
// does ("typedef struct { ... } Foo;"); a record with no owning
// typedef and no name of its own cannot be emitted and is skipped.
func (b *builder) collectStructs(root cfront.Entity) ([]*model.StructDef, error) {
	var out []*model.StructDef
	children := root.Children()

	for _, child := range children {
		if child.Kind() != cfront.EntityStructDecl && child.Kind() != cfront.EntityUnionDecl {
			continue
		}
		if !child.IsDefinition() {
			continue
		}
		if loc, ok := child.Location(); ok && !b.scope.inScope(loc.File) {
			continue
		}

		name := child.Name()
		if name == "" {
			name = b.resolveAnonymousRecordName(child, children)
			if name == "" {
				continue
			}
		}

		def, err := b.structFromEntity(name, child)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", name, err)
		}
		out = append(out, def)
		out = append(out, b.synthesized...)
		b.synthesized = nil
	}
	return out, nil
}

// resolveAnonymousRecordName finds a TypedefDecl sibling whose
// underlying type resolves to exactly this record entity, marks it
// consumed so collectTypedefs doesn't also emit it as a separate
// alias, and returns the name it lends the record.
func (b *builder) resolveAnonymousRecordName(record cfront.Entity, siblings []cfront.Entity) string {
	for _, s := range siblings {
		if s.Kind() != cfront.EntityTypedefDecl {
			continue
		}
		if b.consumedTypedefs[s] {
			continue
		}
		underlying, ok := s.TypedefUnderlyingType()
		if !ok {
			continue
		}
		decl, ok := underlying.Declaration()
		if !ok || decl != record {
			continue
		}
		b.consumedTypedefs[s] = true
		return s.Name()
	}
	return ""
}

func (b *builder) structFromEntity(name string, ent cfront.Entity) (*model.StructDef, error) {
	def := &model.StructDef{
		Name:    name,
		IsUnion: ent.Kind() == cfront.EntityUnionDecl,
	}
	if ty, ok := ent.Type(); ok {
		if sz, ok := ty.SizeOf(); ok {
			def.Size = uint32(sz)
		}
		if al, ok := ty.AlignOf(); ok {
			def.Align = uint32(al)
		}
	}

	for _, field := range ent.Children() {
		if field.Kind() != cfront.EntityFieldDecl {
			continue
		}
		fieldType, ok := field.Type()
		if !ok {
			return nil, fmt.Errorf("field %s has no type", field.Name())
		}
		ct, err := b.fieldType(name, field.Name(), fieldType)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name(), err)
		}
		fd := &model.FieldDef{Name: field.Name(), Type: ct}
		if field.IsBitField() {
			width, _ := field.BitFieldWidth()
			offset, _ := field.BitFieldOffset()
			fd.BitfieldWidth = &width
			fd.BitfieldOffset = &offset
		}
		def.Fields = append(def.Fields, fd)
	}
	return def, nil
}

// fieldType maps a field's type, promoting an inline anonymous nested
// record ("struct { int x; } nested;") to a synthetic sibling type
// named parentName_fieldName instead of representing it inline — the
// metadata table format has no notion of an anonymous nested type
// (spec.md §4.1).
func (b *builder) fieldType(parentName, fieldName string, ty cfront.Type) (model.CType, error) {
	if ty.Kind() == cfront.TypeRecord {
		if decl, ok := ty.Declaration(); ok && decl.Name() == "" && decl.IsDefinition() {
			syntheticName := parentName + "_" + fieldName
			nested, err := b.structFromEntity(syntheticName, decl)
			if err != nil {
				return nil, err
			}
			b.synthesized = append(b.synthesized, nested)
			return model.Named{Name: syntheticName}, nil
		}
	}
	return b.mapper.mapType(ty)
}
