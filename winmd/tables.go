// Package winmd is the ECMA-335 metadata writer: it assembles a
// minimal "IL-only" PE file carrying a CLR header, a metadata root,
// the #~ table stream, and the #Strings/#Blob/#GUID/#US heaps
// (spec.md §4.5). The table layout and coded-index scheme mirror the
// reader in the reference corpus's dotnet.go/dotnet_metadata_tables.go
// — this package is that reader's write-side mirror image.
package winmd

// Metadata table indices, identical to the reader's constants
// (dotnet.go) — only the subset bnd actually emits has row types below.
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

// TypeAttributes bits actually used by emit (ECMA-335 §II.23.1.15).
const (
	TypeAttrPublic       = 0x00000001
	TypeAttrSealed       = 0x00000100
	TypeAttrLayoutAuto   = 0x00000000
	TypeAttrLayoutSeq    = 0x00000008
	TypeAttrLayoutExplit = 0x00000010
	TypeAttrClassSemMask = 0x00000020 // 0 = class, 1 = interface
	TypeAttrAbstract     = 0x00000080
	TypeAttrAnsiClass    = 0x00000000
)

// FieldAttributes bits (ECMA-335 §II.23.1.5).
const (
	FieldAttrPublic        = 0x0006
	FieldAttrStatic        = 0x0010
	FieldAttrLiteral       = 0x0040
	FieldAttrSpecialName   = 0x0200
	FieldAttrRTSpecialName = 0x0400
	FieldAttrHasDefault    = 0x8000
)

// MethodAttributes / MethodImplAttributes bits (ECMA-335 §II.23.1.10).
const (
	MethodAttrPublic      = 0x0006
	MethodAttrStatic      = 0x0010
	MethodAttrPinvokeImpl = 0x2000
	MethodAttrHideBySig   = 0x0080
	MethodAttrVirtual     = 0x0040
	MethodAttrNewSlot     = 0x0100
	MethodAttrAbstract    = 0x0400
	MethodAttrSpecialName = 0x0800
	MethodAttrRTSpecial   = 0x1000

	MethodImplRuntime     = 0x0003
	MethodImplIL          = 0x0000
	MethodImplPreserveSig = 0x0080
)

// ParamAttributes bits (ECMA-335 §II.23.1.13).
const (
	ParamAttrIn  = 0x0001
	ParamAttrOut = 0x0002
)

// PInvokeAttributes bits used for ImplMap rows (ECMA-335 §II.23.1.8).
// PlatformApi is the generic "let the OS loader pick" convention flag;
// stdcall and fastcall are both mapped to it rather than to a distinct
// per-convention bit (see emit's calling-convention mapping).
const (
	PInvokeNoMangle        = 0x0001
	PInvokeCharSetAnsi     = 0x0002
	PInvokeCallConvPlatformApi = 0x0100
	PInvokeCallConvCdecl       = 0x0200
)

// moduleRow, typeRefRow, ... are the writer-side row shapes: plain
// Go structs holding already-resolved heap/coded-index offsets, one
// field per ECMA-335 column, assembled into the #~ stream by
// (*Builder).buildTableStream.

type moduleRow struct {
	Generation uint16
	Name       uint32 // #Strings
	Mvid       uint32 // #GUID
	EncID      uint32 // #GUID
	EncBaseID  uint32 // #GUID
}

type typeRefRow struct {
	ResolutionScope uint32 // ResolutionScope coded index
	TypeName        uint32 // #Strings
	TypeNamespace   uint32 // #Strings
}

type typeDefRow struct {
	Flags         uint32
	TypeName      uint32 // #Strings
	TypeNamespace uint32 // #Strings
	Extends       uint32 // TypeDefOrRef coded index
	FieldList     uint32 // Field table RID
	MethodList    uint32 // MethodDef table RID
}

type fieldRow struct {
	Flags     uint16
	Name      uint32 // #Strings
	Signature uint32 // #Blob
}

type methodDefRow struct {
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      uint32 // #Strings
	Signature uint32 // #Blob
	ParamList uint32 // Param table RID
}

type paramRow struct {
	Flags    uint16
	Sequence uint16
	Name     uint32 // #Strings
}

type memberRefRow struct {
	Class     uint32 // MemberRefParent coded index
	Name      uint32 // #Strings
	Signature uint32 // #Blob
}

type constantRow struct {
	Type   byte
	parent uint32 // HasConstant coded index, 2-byte padded at write time
	Value  uint32 // #Blob
}

type classLayoutRow struct {
	PackingSize uint16
	ClassSize   uint32
	Parent      uint32 // TypeDef RID
}

type implMapRow struct {
	MappingFlags        uint16
	MemberForwarded      uint32 // MemberForwarded coded index
	ImportName           uint32 // #Strings
	ImportScope          uint32 // ModuleRef RID
}

type fieldLayoutRow struct {
	Offset uint32
	Field  uint32 // Field table RID
}

type customAttributeRow struct {
	Parent uint32 // HasCustomAttribute coded index
	Type   uint32 // CustomAttributeType coded index
	Value  uint32 // #Blob
}

type moduleRefRow struct {
	Name uint32 // #Strings
}

type assemblyRow struct {
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      uint32 // #Blob
	Name           uint32 // #Strings
	Culture        uint32 // #Strings
}

type assemblyRefRow struct {
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      uint32 // #Blob
	Name           uint32 // #Strings
	Culture        uint32 // #Strings
	HashValue      uint32 // #Blob
}
