package cfront

// FakeIndex is an in-memory Index used by tests in place of a real
// libclang binding. Each translation unit is pre-built by the test via
// FakeEntity/FakeType below and registered under the path it would have
// been parsed from.
type FakeIndex struct {
	Units map[string]*FakeEntity
}

func NewFakeIndex() *FakeIndex {
	return &FakeIndex{Units: make(map[string]*FakeEntity)}
}

func (f *FakeIndex) Parse(path string, args []string) (TranslationUnit, error) {
	root, ok := f.Units[path]
	if !ok {
		return nil, &FakeParseError{Path: path}
	}
	return &fakeTU{root: root}, nil
}

type FakeParseError struct {
	Path string
}

func (e *FakeParseError) Error() string {
	return "cfront: no fake translation unit registered for " + e.Path
}

type fakeTU struct {
	root *FakeEntity
}

func (t *fakeTU) Root() Entity { return t.root }

// FakeEntity is a builder/value type implementing Entity.
type FakeEntity struct {
	EKind              EntityKind
	EName              string
	EType              *FakeType
	ELoc               *SourceLocation
	EChildren          []Entity
	EIsDefinition      bool
	EBitField          bool
	EBitFieldWidth     *uint32
	EBitFieldOffset    *uint32
	EEnumSigned        int64
	EEnumUnsigned      uint64
	EEnumConstantValid bool
	ETypedefUnderlying *FakeType
	EEnumUnderlying    *FakeType
	EMacroTokens       []string
}

func (e *FakeEntity) Kind() EntityKind { return e.EKind }
func (e *FakeEntity) Name() string     { return e.EName }
func (e *FakeEntity) Type() (Type, bool) {
	if e.EType == nil {
		return nil, false
	}
	return e.EType, true
}
func (e *FakeEntity) Location() (SourceLocation, bool) {
	if e.ELoc == nil {
		return SourceLocation{}, false
	}
	return *e.ELoc, true
}
func (e *FakeEntity) Children() []Entity   { return e.EChildren }
func (e *FakeEntity) IsDefinition() bool   { return e.EIsDefinition }
func (e *FakeEntity) IsBitField() bool     { return e.EBitField }
func (e *FakeEntity) BitFieldWidth() (uint32, bool) {
	if e.EBitFieldWidth == nil {
		return 0, false
	}
	return *e.EBitFieldWidth, true
}
func (e *FakeEntity) BitFieldOffset() (uint32, bool) {
	if e.EBitFieldOffset == nil {
		return 0, false
	}
	return *e.EBitFieldOffset, true
}
func (e *FakeEntity) EnumConstantValue() (int64, uint64, bool) {
	return e.EEnumSigned, e.EEnumUnsigned, e.EEnumConstantValid
}
func (e *FakeEntity) TypedefUnderlyingType() (Type, bool) {
	if e.ETypedefUnderlying == nil {
		return nil, false
	}
	return e.ETypedefUnderlying, true
}
func (e *FakeEntity) EnumUnderlyingType() (Type, bool) {
	if e.EEnumUnderlying == nil {
		return nil, false
	}
	return e.EEnumUnderlying, true
}
func (e *FakeEntity) MacroTokens() []string { return e.EMacroTokens }

// FakeType is a builder/value type implementing Type.
type FakeType struct {
	TKind        TypeKind
	TDecl        *FakeEntity
	TPointee     *FakeType
	TElement     *FakeType
	TArrayLen    *uint64
	TElaborated  *FakeType
	TCanonical   *FakeType
	TResult      *FakeType
	TArgs        []Type
	TCallConv    CallingConvention
	TVariadic    bool
	TIsConst     bool
	TSize        *uint64
	TAlign       *uint64
	TDisplayName string
}

func (t *FakeType) Kind() TypeKind { return t.TKind }
func (t *FakeType) Declaration() (Entity, bool) {
	if t.TDecl == nil {
		return nil, false
	}
	return t.TDecl, true
}
func (t *FakeType) PointeeType() (Type, bool) {
	if t.TPointee == nil {
		return nil, false
	}
	return t.TPointee, true
}
func (t *FakeType) ElementType() (Type, bool) {
	if t.TElement == nil {
		return nil, false
	}
	return t.TElement, true
}
func (t *FakeType) ArrayLen() (uint64, bool) {
	if t.TArrayLen == nil {
		return 0, false
	}
	return *t.TArrayLen, true
}
func (t *FakeType) ElaboratedType() (Type, bool) {
	if t.TElaborated == nil {
		return nil, false
	}
	return t.TElaborated, true
}
func (t *FakeType) CanonicalType() Type {
	if t.TCanonical == nil {
		return t
	}
	return t.TCanonical
}
func (t *FakeType) ResultType() (Type, bool) {
	if t.TResult == nil {
		return nil, false
	}
	return t.TResult, true
}
func (t *FakeType) ArgumentTypes() []Type                 { return t.TArgs }
func (t *FakeType) CallingConvention() CallingConvention { return t.TCallConv }
func (t *FakeType) IsVariadic() bool                     { return t.TVariadic }
func (t *FakeType) IsConstQualified() bool               { return t.TIsConst }
func (t *FakeType) SizeOf() (uint64, bool) {
	if t.TSize == nil {
		return 0, false
	}
	return *t.TSize, true
}
func (t *FakeType) AlignOf() (uint64, bool) {
	if t.TAlign == nil {
		return 0, false
	}
	return *t.TAlign, true
}
func (t *FakeType) DisplayName() string { return t.TDisplayName }
