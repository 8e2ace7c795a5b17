package winmd

import "fmt"

// FieldSpec describes one field to attach to a TypeDef via AddTypeDef.
type FieldSpec struct {
	Name      string
	Signature []byte
	// Flags are the FieldAttributes bits for this row. Zero means
	// "public instance field" (FieldAttrPublic) — the common case for
	// struct/union/wrapper-struct members; enum literals and constants
	// pass FieldAttrStatic|FieldAttrLiteral|FieldAttrHasDefault
	// explicitly.
	Flags uint16
	// Offset is set for an explicit-layout type (a union): every field
	// gets its own FieldLayout row alongside the type's ClassLayout
	// record, per ECMA-335 §II.22.16.
	Offset *uint32
}

// MethodSpec describes one method to attach to a TypeDef.
type MethodSpec struct {
	Name      string
	Flags     uint16
	ImplFlags uint16
	Signature []byte
	ParamNames []string
	ParamFlags []uint16
	// PInvoke, when non-nil, turns the method into a P/Invoke stub and
	// adds the matching ImplMap row.
	PInvoke *PInvokeSpec
}

// PInvokeSpec is the unmanaged-side binding for one MethodSpec.
type PInvokeSpec struct {
	EntryPoint string
	ModuleName string
	Flags      uint16
}

// Builder accumulates metadata table rows and heap entries across an
// entire generation run (every partition shares one Builder, so types
// from different namespaces can reference one another directly by
// TypeDef token without needing a TypeRef — spec.md §4.5) and produces
// the final .winmd bytes.
type Builder struct {
	AssemblyName string

	strings *stringHeap
	blobs   *blobHeap
	guids   *guidHeap

	module      moduleRow
	assembly    assemblyRow
	typeDefs    []typeDefRow
	typeRefs    []typeRefRow
	fields      []fieldRow
	methods     []methodDefRow
	params      []paramRow
	memberRefs  []memberRefRow
	constants   []constantRow
	layouts     []classLayoutRow
	fieldLayouts []fieldLayoutRow
	customAttributes []customAttributeRow
	implMaps    []implMapRow
	moduleRefs  []moduleRefRow
	assemblyRefs []assemblyRefRow

	typeDefTokens   map[string]uint32 // qualified name -> coded TypeDefOrRef index
	moduleRefByName map[string]uint32
	assemblyRefByName map[string]uint32
	typeRefByKey    map[string]uint32 // "scope|ns|name" -> coded TypeDefOrRef index
}

// NewBuilder starts a fresh metadata build for one output assembly.
func NewBuilder(assemblyName string) *Builder {
	b := &Builder{
		AssemblyName:      assemblyName,
		strings:           newStringHeap(),
		blobs:             newBlobHeap(),
		guids:             newGUIDHeap(),
		typeDefTokens:     make(map[string]uint32),
		moduleRefByName:   make(map[string]uint32),
		assemblyRefByName: make(map[string]uint32),
		typeRefByKey:      make(map[string]uint32),
	}
	b.module = moduleRow{
		Name: b.strings.Add(assemblyName + ".winmd"),
		Mvid: b.guids.Add([16]byte{}),
	}
	b.assembly = assemblyRow{
		Name:    b.strings.Add(assemblyName),
		Culture: b.strings.Add(""),
	}
	return b
}

// TypeDefOrRefToken looks up a previously-added TypeDef or TypeRef by
// its fully-qualified name ("Namespace.Name"), for use as a
// TokenResolver passed to EncodeType.
func (b *Builder) TypeDefOrRefToken(qualifiedName string) (uint32, bool) {
	tok, ok := b.typeDefTokens[qualifiedName]
	return tok, ok
}

// AddTypeDef appends a value-type or class TypeDef row, its fields,
// and its own methods (if any — delegates carry one Invoke method
// directly on the type), returning the coded TypeDefOrRef index other
// signatures reference it by.
func (b *Builder) AddTypeDef(namespace, name string, flags uint32, extends uint32, fields []FieldSpec, methods []MethodSpec) uint32 {
	fieldList := uint32(len(b.fields) + 1)
	methodList := uint32(len(b.methods) + 1)

	row := typeDefRow{
		Flags:         flags,
		TypeName:      b.strings.Add(name),
		TypeNamespace: b.strings.Add(namespace),
		Extends:       extends,
		FieldList:     fieldList,
		MethodList:    methodList,
	}
	b.typeDefs = append(b.typeDefs, row)
	rid := uint32(len(b.typeDefs))

	for _, f := range fields {
		flags := f.Flags
		if flags == 0 {
			flags = FieldAttrPublic
		}
		b.fields = append(b.fields, fieldRow{
			Flags:     flags,
			Name:      b.strings.Add(f.Name),
			Signature: b.blobs.Add(f.Signature),
		})
		fieldRID := uint32(len(b.fields))
		if f.Offset != nil {
			b.fieldLayouts = append(b.fieldLayouts, fieldLayoutRow{
				Offset: *f.Offset,
				Field:  fieldRID,
			})
		}
	}

	for _, m := range methods {
		b.addMethod(rid, m)
	}

	coded := codedTypeDefOrRef.encode(tblTypeDef, rid)
	qualified := namespace + "." + name
	b.typeDefTokens[qualified] = coded
	return coded
}

func (b *Builder) addMethod(ownerTypeDefRID uint32, m MethodSpec) {
	paramList := uint32(len(b.params) + 1)
	b.methods = append(b.methods, methodDefRow{
		ImplFlags: m.ImplFlags,
		Flags:     m.Flags,
		Name:      b.strings.Add(m.Name),
		Signature: b.blobs.Add(m.Signature),
		ParamList: paramList,
	})
	methodRID := uint32(len(b.methods))

	for i, pname := range m.ParamNames {
		flags := uint16(0)
		if i < len(m.ParamFlags) {
			flags = m.ParamFlags[i]
		}
		b.params = append(b.params, paramRow{
			Flags:    flags,
			Sequence: uint16(i + 1),
			Name:     b.strings.Add(pname),
		})
	}

	if m.PInvoke != nil {
		moduleRef := b.AddModuleRef(m.PInvoke.ModuleName)
		b.implMaps = append(b.implMaps, implMapRow{
			MappingFlags:    m.PInvoke.Flags,
			MemberForwarded: codedMemberForwarded.encode(tblMethodDef, methodRID),
			ImportName:      b.strings.Add(m.PInvoke.EntryPoint),
			ImportScope:     moduleRef,
		})
	}
}

// AddConstant adds a literal default-value record for a field or
// parameter (ECMA-335 §II.22.9), identified by its HasConstant-coded
// parent index.
func (b *Builder) AddConstant(parentCoded uint32, elementType byte, value []byte) {
	b.constants = append(b.constants, constantRow{
		Type:   elementType,
		parent: parentCoded,
		Value:  b.blobs.Add(value),
	})
}

// AddClassLayout records the explicit size/packing of a TypeDef (used
// for every struct and union so the loader lays it out exactly the
// way the C compiler did — spec.md P3).
func (b *Builder) AddClassLayout(typeDefRID uint32, packingSize uint16, classSize uint32) {
	b.layouts = append(b.layouts, classLayoutRow{
		PackingSize: packingSize,
		ClassSize:   classSize,
		Parent:      typeDefRID,
	})
}

// AddMemberRef records a reference to a method (or field) defined in
// another assembly — class must be a coded MemberRefParent index,
// normally a TypeRef token from AddTypeRef. Used for both P/Invoke-
// style external calls and, more commonly here, referencing a
// dependency's attribute constructor from AddCustomAttribute.
func (b *Builder) AddMemberRef(class uint32, name string, signature []byte) uint32 {
	b.memberRefs = append(b.memberRefs, memberRefRow{
		Class:     class,
		Name:      b.strings.Add(name),
		Signature: b.blobs.Add(signature),
	})
	return uint32(len(b.memberRefs))
}

// AddCustomAttribute attaches a custom attribute instance to any
// HasCustomAttribute-coded parent (typically a TypeDef, via
// HasCustomAttributeTypeDef), referencing a .ctor method by its
// CustomAttributeType-coded index (typically a MemberRef, via
// codedCustomAttributeType.encode(tblMemberRef, ...)) and carrying a
// pre-encoded fixed-argument blob (often just the 1-0-1 "no
// arguments" prolog).
func (b *Builder) AddCustomAttribute(parentCoded, ctorCoded uint32, value []byte) {
	b.customAttributes = append(b.customAttributes, customAttributeRow{
		Parent: parentCoded,
		Type:   ctorCoded,
		Value:  b.blobs.Add(value),
	})
}

// HasCustomAttributeTypeDef returns the HasCustomAttribute coded index
// for a TypeDef row, to pass as AddCustomAttribute's parent.
func (b *Builder) HasCustomAttributeTypeDef(typeDefRID uint32) uint32 {
	return codedHasCustomAttribute.encode(tblTypeDef, typeDefRID)
}

// CustomAttributeTypeMemberRef returns the CustomAttributeType coded
// index for a MemberRef row (the shape a .ctor token from an external
// assembly takes), to pass as AddCustomAttribute's ctorCoded.
func (b *Builder) CustomAttributeTypeMemberRef(memberRefRID uint32) uint32 {
	return codedCustomAttributeType.encode(tblMemberRef, memberRefRID)
}

// CustomAttributeTypeMethodDef returns the CustomAttributeType coded
// index for a MethodDef row (a .ctor defined locally, e.g. on a
// bnd-emitted attribute type), to pass as AddCustomAttribute's
// ctorCoded.
func (b *Builder) CustomAttributeTypeMethodDef(methodDefRID uint32) uint32 {
	return codedCustomAttributeType.encode(tblMethodDef, methodDefRID)
}

// TypeDefRIDFromToken recovers the bare TypeDef row id from a coded
// TypeDefOrRef token, valid only when the token is known to reference
// TypeDef (tblTypeDef sits at tag 0 of codedTypeDefOrRef, so the RID is
// simply the token's upper bits) — e.g. the value AddTypeDef just
// returned, before using it with AddClassLayout or AddCustomAttribute.
func TypeDefRIDFromToken(coded uint32) uint32 {
	return coded >> codedTypeDefOrRef.tagbits
}

// PredictTypeDefToken returns the coded TypeDefOrRef token a TypeDef at
// the given (not yet written) RID will have, letting a caller resolve
// Named references before the matching AddTypeDef call happens — e.g.
// emit's resolver, built once from a planned emission order before any
// type in that plan is actually written, so forward and self
// references inside the first type's own fields already resolve.
func PredictTypeDefToken(rid uint32) uint32 {
	return codedTypeDefOrRef.encode(tblTypeDef, rid)
}

// FieldRID returns the Field RID of the fieldIndex'th field (0-based,
// in the order passed to AddTypeDef) owned by the TypeDef with the
// given RID — e.g. to build a HasConstantField token for an enum
// literal or a struct's default-valued field.
func (b *Builder) FieldRID(typeDefRID uint32, fieldIndex int) uint32 {
	return b.typeDefs[typeDefRID-1].FieldList + uint32(fieldIndex)
}

// MethodDefRID returns the MethodDef RID of the methodIndex'th method
// (0-based, in the order passed to AddTypeDef) owned by the TypeDef
// with the given RID — e.g. to build a CustomAttributeTypeMethodDef
// token for a locally-defined .ctor, since addMethod itself reports no
// RID back to AddTypeDef's caller.
func (b *Builder) MethodDefRID(typeDefRID uint32, methodIndex int) uint32 {
	return b.typeDefs[typeDefRID-1].MethodList + uint32(methodIndex)
}

// TypeRefInAssembly is a convenience wrapper over AddAssemblyRef +
// AddTypeRef for the common case of referencing a well-known type from
// an external assembly by name, e.g. mscorlib's System.ValueType as a
// struct TypeDef's base class.
func (b *Builder) TypeRefInAssembly(assemblyName, namespace, name string) uint32 {
	scope := codedResolutionScope.encode(tblAssemblyRef, b.AddAssemblyRef(assemblyName))
	return b.AddTypeRef(scope, namespace, name)
}

// MemberRefFromTypeRef adds a MemberRef whose parent is a TypeRef token
// (as returned by AddTypeRef/TypeRefInAssembly) — e.g. looking up a
// .ctor on an external attribute or base type.
func (b *Builder) MemberRefFromTypeRef(typeRefCoded uint32, name string, signature []byte) uint32 {
	class := codedMemberRefParent.encode(tblTypeRef, TypeDefRIDFromToken(typeRefCoded))
	return b.AddMemberRef(class, name, signature)
}

// AddModuleRef records the unmanaged library a P/Invoke method is
// imported from, deduplicated by name.
func (b *Builder) AddModuleRef(name string) uint32 {
	if rid, ok := b.moduleRefByName[name]; ok {
		return rid
	}
	b.moduleRefs = append(b.moduleRefs, moduleRefRow{Name: b.strings.Add(name)})
	rid := uint32(len(b.moduleRefs))
	b.moduleRefByName[name] = rid
	return rid
}

// AddAssemblyRef records a reference to an external assembly (e.g. the
// one a type_import entry seeded the registry from), deduplicated by
// name.
func (b *Builder) AddAssemblyRef(name string) uint32 {
	if rid, ok := b.assemblyRefByName[name]; ok {
		return rid
	}
	b.assemblyRefs = append(b.assemblyRefs, assemblyRefRow{
		Name:    b.strings.Add(name),
		Culture: b.strings.Add(""),
	})
	rid := uint32(len(b.assemblyRefs))
	b.assemblyRefByName[name] = rid
	return rid
}

// AddTypeRef records a reference to a type defined in another
// assembly — scope must be a coded ResolutionScope index, normally
// codedResolutionScope.encode(tblAssemblyRef, AddAssemblyRef(...)) —
// deduplicated by (scope, namespace, name).
func (b *Builder) AddTypeRef(scope uint32, namespace, name string) uint32 {
	key := fmt.Sprintf("%d|%s|%s", scope, namespace, name)
	if coded, ok := b.typeRefByKey[key]; ok {
		return coded
	}
	b.typeRefs = append(b.typeRefs, typeRefRow{
		ResolutionScope: scope,
		TypeName:        b.strings.Add(name),
		TypeNamespace:   b.strings.Add(namespace),
	})
	rid := uint32(len(b.typeRefs))
	coded := codedTypeDefOrRef.encode(tblTypeRef, rid)
	b.typeRefByKey[key] = coded
	qualified := namespace + "." + name
	b.typeDefTokens[qualified] = coded
	return coded
}

// AddBlob interns blob directly, for callers (emit's constant writer)
// that build a #Blob entry without going through EncodeType.
func (b *Builder) AddBlob(blob []byte) uint32 { return b.blobs.Add(blob) }

// HasConstantField returns the HasConstant coded index for a Field
// row, to pass to AddConstant.
func (b *Builder) HasConstantField(fieldRID uint32) uint32 {
	return codedHasConstant.encode(tblField, fieldRID)
}

// Bytes serializes everything accumulated on b into a complete
// .winmd file: the #~ table stream and heaps assembled into a BSJB
// metadata root, wrapped in a single-section IL-only PE32 image.
func (b *Builder) Bytes() []byte {
	metadata := b.buildMetadataRoot()
	return b.buildImage(metadata)
}
