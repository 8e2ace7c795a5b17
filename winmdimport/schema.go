package winmdimport

// Table indices, identical to the writer's (winmd/tables.go) and to
// the reference reader's dotnet.go constants.
const (
	tblModule = iota
	tblTypeRef
	tblTypeDef
	tblFieldPtr
	tblField
	tblMethodPtr
	tblMethodDef
	tblParamPtr
	tblParam
	tblInterfaceImpl
	tblMemberRef
	tblConstant
	tblCustomAttribute
	tblFieldMarshal
	tblDeclSecurity
	tblClassLayout
	tblFieldLayout
	tblStandAloneSig
	tblEventMap
	tblEventPtr
	tblEvent
	tblPropertyMap
	tblPropertyPtr
	tblProperty
	tblMethodSemantics
	tblMethodImpl
	tblModuleRef
	tblTypeSpec
	tblImplMap
	tblFieldRVA
	tblENCLog
	tblENCMap
	tblAssembly
	tblAssemblyProcessor
	tblAssemblyOS
	tblAssemblyRef
	tblAssemblyRefProcessor
	tblAssemblyRefOS
	tblFile
	tblExportedType
	tblManifestResource
	tblNestedClass
	tblGenericParam
	tblMethodSpec
	tblGenericParamConstraint

	tableCount = tblGenericParamConstraint + 1
)

// colKind is one column's storage kind within a row (ECMA-335
// §II.22), used only to compute byte widths so rows of tables bnd
// doesn't care about can be skipped without being decoded.
type colKind int

const (
	colU1 colKind = iota
	colU2
	colU4
	colString
	colGUID
	colBlob
	colSimple // index into one specific table
	colCoded  // coded index into a codedSet
)

type column struct {
	kind        colKind
	simpleTable int
	coded       *codedSet
}

// codedSet mirrors winmd.codedIndex on the read side: a tag-bit count
// plus the ordered list of tables the tag selects among.
type codedSet struct {
	tagbits uint
	tables  []int
}

var (
	codedTypeDefOrRef       = &codedSet{2, []int{tblTypeDef, tblTypeRef, tblTypeSpec}}
	codedHasConstant        = &codedSet{2, []int{tblField, tblParam, tblProperty}}
	codedHasCustomAttribute = &codedSet{5, []int{
		tblMethodDef, tblField, tblTypeRef, tblTypeDef, tblParam, tblInterfaceImpl,
		tblMemberRef, tblModule, tblDeclSecurity, tblProperty, tblEvent, tblStandAloneSig,
		tblModuleRef, tblTypeSpec, tblAssembly, tblAssemblyRef, tblFile, tblExportedType,
		tblManifestResource, tblGenericParam, tblGenericParamConstraint, tblMethodSpec,
	}}
	codedHasFieldMarshal  = &codedSet{1, []int{tblField, tblParam}}
	codedHasDeclSecurity  = &codedSet{2, []int{tblTypeDef, tblMethodDef, tblAssembly}}
	codedMemberRefParent  = &codedSet{3, []int{tblTypeDef, tblTypeRef, tblModuleRef, tblMethodDef, tblTypeSpec}}
	codedHasSemantics     = &codedSet{1, []int{tblEvent, tblProperty}}
	codedMethodDefOrRef   = &codedSet{1, []int{tblMethodDef, tblMemberRef}}
	codedMemberForwarded  = &codedSet{1, []int{tblField, tblMethodDef}}
	codedImplementation   = &codedSet{2, []int{tblFile, tblAssemblyRef, tblExportedType}}
	codedResolutionScope  = &codedSet{2, []int{tblModule, tblModuleRef, tblAssemblyRef, tblTypeRef}}
	codedTypeOrMethodDef  = &codedSet{1, []int{tblTypeDef, tblMethodDef}}
)

// schema lists every table's column layout in declaration order,
// enough to compute each table's per-row byte width for any row count
// vector. Tables bnd has no use for (CustomAttribute, DeclSecurity,
// Event*, Property*, ...) are listed too: an external reference
// assembly will have rows in them, and they must be skipped at the
// right byte width even though their content is never decoded.
var schema = map[int][]column{
	tblModule:         {{kind: colU2}, {kind: colString}, {kind: colGUID}, {kind: colGUID}, {kind: colGUID}},
	tblTypeRef:        {{kind: colCoded, coded: codedResolutionScope}, {kind: colString}, {kind: colString}},
	tblTypeDef:        {{kind: colU4}, {kind: colString}, {kind: colString}, {kind: colCoded, coded: codedTypeDefOrRef}, {kind: colSimple, simpleTable: tblField}, {kind: colSimple, simpleTable: tblMethodDef}},
	tblFieldPtr:       {{kind: colSimple, simpleTable: tblField}},
	tblField:          {{kind: colU2}, {kind: colString}, {kind: colBlob}},
	tblMethodPtr:      {{kind: colSimple, simpleTable: tblMethodDef}},
	tblMethodDef:      {{kind: colU4}, {kind: colU2}, {kind: colU2}, {kind: colString}, {kind: colBlob}, {kind: colSimple, simpleTable: tblParam}},
	tblParamPtr:       {{kind: colSimple, simpleTable: tblParam}},
	tblParam:          {{kind: colU2}, {kind: colU2}, {kind: colString}},
	tblInterfaceImpl:  {{kind: colSimple, simpleTable: tblTypeDef}, {kind: colCoded, coded: codedTypeDefOrRef}},
	tblMemberRef:      {{kind: colCoded, coded: codedMemberRefParent}, {kind: colString}, {kind: colBlob}},
	tblConstant:       {{kind: colU1}, {kind: colU1}, {kind: colCoded, coded: codedHasConstant}, {kind: colBlob}},
	tblCustomAttribute: {{kind: colCoded, coded: codedHasCustomAttribute}, {kind: colCoded, coded: codedCustomAttributeType()}, {kind: colBlob}},
	tblFieldMarshal:   {{kind: colCoded, coded: codedHasFieldMarshal}, {kind: colBlob}},
	tblDeclSecurity:   {{kind: colU2}, {kind: colCoded, coded: codedHasDeclSecurity}, {kind: colBlob}},
	tblClassLayout:    {{kind: colU2}, {kind: colU4}, {kind: colSimple, simpleTable: tblTypeDef}},
	tblFieldLayout:    {{kind: colU4}, {kind: colSimple, simpleTable: tblField}},
	tblStandAloneSig:  {{kind: colBlob}},
	tblEventMap:       {{kind: colSimple, simpleTable: tblTypeDef}, {kind: colSimple, simpleTable: tblEvent}},
	tblEventPtr:       {{kind: colSimple, simpleTable: tblEvent}},
	tblEvent:          {{kind: colU2}, {kind: colString}, {kind: colCoded, coded: codedTypeDefOrRef}},
	tblPropertyMap:    {{kind: colSimple, simpleTable: tblTypeDef}, {kind: colSimple, simpleTable: tblProperty}},
	tblPropertyPtr:    {{kind: colSimple, simpleTable: tblProperty}},
	tblProperty:       {{kind: colU2}, {kind: colString}, {kind: colBlob}},
	tblMethodSemantics: {{kind: colU2}, {kind: colSimple, simpleTable: tblMethodDef}, {kind: colCoded, coded: codedHasSemantics}},
	tblMethodImpl:     {{kind: colSimple, simpleTable: tblTypeDef}, {kind: colCoded, coded: codedMethodDefOrRef}, {kind: colCoded, coded: codedMethodDefOrRef}},
	tblModuleRef:      {{kind: colString}},
	tblTypeSpec:       {{kind: colBlob}},
	tblImplMap:        {{kind: colU2}, {kind: colCoded, coded: codedMemberForwarded}, {kind: colString}, {kind: colSimple, simpleTable: tblModuleRef}},
	tblFieldRVA:       {{kind: colU4}, {kind: colSimple, simpleTable: tblField}},
	tblENCLog:         {{kind: colU4}, {kind: colU4}},
	tblENCMap:         {{kind: colU4}},
	tblAssembly:       {{kind: colU4}, {kind: colU2}, {kind: colU2}, {kind: colU2}, {kind: colU2}, {kind: colU4}, {kind: colBlob}, {kind: colString}, {kind: colString}},
	tblAssemblyProcessor: {{kind: colU4}},
	tblAssemblyOS:     {{kind: colU4}, {kind: colU4}, {kind: colU4}},
	tblAssemblyRef:    {{kind: colU2}, {kind: colU2}, {kind: colU2}, {kind: colU2}, {kind: colU4}, {kind: colBlob}, {kind: colString}, {kind: colString}, {kind: colBlob}},
	tblAssemblyRefProcessor: {{kind: colU4}, {kind: colSimple, simpleTable: tblAssemblyRef}},
	tblAssemblyRefOS:  {{kind: colU4}, {kind: colU4}, {kind: colU4}, {kind: colSimple, simpleTable: tblAssemblyRef}},
	tblFile:           {{kind: colU4}, {kind: colString}, {kind: colBlob}},
	tblExportedType:   {{kind: colU4}, {kind: colU4}, {kind: colString}, {kind: colString}, {kind: colCoded, coded: codedImplementation}},
	tblManifestResource: {{kind: colU4}, {kind: colU4}, {kind: colString}, {kind: colCoded, coded: codedImplementation}},
	tblNestedClass:    {{kind: colSimple, simpleTable: tblTypeDef}, {kind: colSimple, simpleTable: tblTypeDef}},
	tblGenericParam:   {{kind: colU2}, {kind: colU2}, {kind: colCoded, coded: codedTypeOrMethodDef}, {kind: colString}},
	tblMethodSpec:     {{kind: colCoded, coded: codedMethodDefOrRef}, {kind: colBlob}},
	tblGenericParamConstraint: {{kind: colSimple, simpleTable: tblGenericParam}, {kind: colCoded, coded: codedTypeDefOrRef}},
}

// codedCustomAttributeType is a function (not a package var) because
// its table set has unused slots (tags 0, 1, 4, per ECMA-335
// §II.24.2.6 — only MethodDef and MemberRef ever appear, at tags 2 and
// 3) that must still occupy a position for the tag math to line up;
// Go has no sparse-slice literal, so that's spelled out procedurally
// instead of inline in the schema map literal.
func codedCustomAttributeType() *codedSet {
	return &codedSet{3, []int{-1, -1, tblMethodDef, tblMemberRef, -1}}
}

// size returns the byte width a coded index must be read at, given
// each table's final row count.
func (c *codedSet) size(rowCounts [tableCount]uint32) int {
	maxSmall := uint32(1) << (16 - c.tagbits)
	var maxRows uint32
	for _, t := range c.tables {
		if t < 0 {
			continue
		}
		if rowCounts[t] > maxRows {
			maxRows = rowCounts[t]
		}
	}
	if maxRows >= maxSmall {
		return 4
	}
	return 2
}

func simpleIndexSize(rowCount uint32) int {
	if rowCount >= 1<<16 {
		return 4
	}
	return 2
}
