// Package cfront is the contract for the external C front end: a
// cursor-style AST with resolved types, sizes, alignments, calling
// conventions, and source locations.
//
// spec.md §1 lists the C front end as an external collaborator — "an
// external library exposing a cursor-style AST with type kinds, sizes,
// source locations, and typedef/declaration resolution" — specified only
// by its interface, the same way the original implementation treats the
// `clang` crate. This package is that interface boundary: extract.go is
// written entirely against it, so swapping in a real libclang binding
// (e.g. a cgo wrapper analogous to the `clang` crate) never touches
// extract.go. For tests, Fake (fake.go) builds an in-memory AST
// implementing the same interfaces without requiring libclang at all.
package cfront

// EntityKind classifies a top-level or nested AST node.
type EntityKind int

const (
	EntityUnknown EntityKind = iota
	EntityStructDecl
	EntityUnionDecl
	EntityEnumDecl
	EntityEnumConstantDecl
	EntityFunctionDecl
	EntityTypedefDecl
	EntityFieldDecl
	EntityMacroDefinition
	EntityVarDecl
)

// TypeKind classifies a resolved clang type.
type TypeKind int

const (
	TypeUnexposed TypeKind = iota
	TypeVoid
	TypeBool
	TypeCharS
	TypeSChar
	TypeCharU
	TypeUChar
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeLong
	TypeULong
	TypeLongLong
	TypeULongLong
	TypeFloat
	TypeDouble
	TypePointer
	TypeConstantArray
	TypeIncompleteArray
	TypeElaborated
	TypeTypedef
	TypeRecord
	TypeEnum
	TypeFunctionPrototype
	TypeFunctionNoPrototype
)

// CallingConvention mirrors the clang enum of the same name.
type CallingConvention int

const (
	CCDefault CallingConvention = iota
	CCCdecl
	CCStdcall
	CCFastcall
)

// SourceLocation is the file a declaration's primary location resolves to.
// Only the file path matters for the in-scope filter (spec.md §4.1).
type SourceLocation struct {
	File string
}

// Entity is one AST node: a declaration or a child of one (a field, an
// enum constant, a function parameter).
type Entity interface {
	Kind() EntityKind
	Name() string
	// Type is the entity's own type (e.g. a FunctionDecl's function type,
	// a FieldDecl's field type). Not all entities have one.
	Type() (Type, bool)
	Location() (SourceLocation, bool)
	Children() []Entity
	// IsDefinition reports whether this entity is a full definition, as
	// opposed to a forward declaration.
	IsDefinition() bool

	// Bitfield accessors, valid only for EntityFieldDecl.
	IsBitField() bool
	BitFieldWidth() (uint32, bool)
	BitFieldOffset() (uint32, bool)

	// Enum-constant accessors, valid only for EntityEnumConstantDecl.
	EnumConstantValue() (signed int64, unsigned uint64, ok bool)

	// Typedef accessor, valid only for EntityTypedefDecl.
	TypedefUnderlyingType() (Type, bool)

	// Enum accessor, valid only for EntityEnumDecl.
	EnumUnderlyingType() (Type, bool)

	// MacroDefinition accessor: raw token text following the macro name,
	// valid only for EntityMacroDefinition. Sonar-evaluated constants
	// reach extract.go through Partition.Find* instead; this is the
	// supplemental path for macros sonar could not evaluate.
	MacroTokens() []string
}

// Type is a resolved clang type.
type Type interface {
	Kind() TypeKind
	// Declaration is the entity that declared this type (for Record,
	// Enum, and Typedef kinds).
	Declaration() (Entity, bool)
	PointeeType() (Type, bool)
	ElementType() (Type, bool)
	// ArrayLen is valid for TypeConstantArray.
	ArrayLen() (uint64, bool)
	ElaboratedType() (Type, bool)
	CanonicalType() Type
	ResultType() (Type, bool)
	ArgumentTypes() []Type
	CallingConvention() CallingConvention
	// IsVariadic reports whether a FunctionPrototype type ends in `...`.
	IsVariadic() bool
	IsConstQualified() bool
	// SizeOf returns the type's size in bytes, or ok=false if the front
	// end could not compute one (e.g. an incomplete record).
	SizeOf() (uint64, bool)
	AlignOf() (uint64, bool)
	DisplayName() string
}

// TranslationUnit is the result of parsing one synthetic or real source
// file.
type TranslationUnit interface {
	Root() Entity
}

// Index is the front-end's top-level handle, scoped to one generate call
// (spec.md §5: "released before emission begins").
type Index interface {
	// Parse parses path with the given command-line arguments (include
	// paths and extra flags already merged by the caller) and detailed
	// preprocessing records enabled, as extract.go always requires macro
	// definitions to be visible as AST entities.
	Parse(path string, args []string) (TranslationUnit, error)
}
