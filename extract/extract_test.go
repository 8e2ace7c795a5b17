package extract

import (
	"testing"

	"github.com/youyuanwu/bnd/bndlog"
	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

const testFile = "/src/widget.h"

func parseFake(t *testing.T, root *cfront.FakeEntity) cfront.TranslationUnit {
	t.Helper()
	idx := cfront.NewFakeIndex()
	idx.Units[testFile] = root
	tu, err := idx.Parse(testFile, nil)
	if err != nil {
		t.Fatalf("parsing fake unit: %v", err)
	}
	return tu
}

func loc() *cfront.SourceLocation {
	return &cfront.SourceLocation{File: testFile}
}

func i32Type() *cfront.FakeType {
	return &cfront.FakeType{TKind: cfront.TypeInt}
}

func TestExtractPartitionStructFields(t *testing.T) {
	structEnt := &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EName:         "Point",
		EIsDefinition: true,
		ELoc:          loc(),
		EType: &cfront.FakeType{
			TKind: cfront.TypeRecord,
			TSize: uint64Ptr(8),
		},
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "x", EType: i32Type()},
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "y", EType: i32Type()},
		},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{structEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Structs) != 1 {
		t.Fatalf("want 1 struct, got %d", len(part.Structs))
	}
	s := part.Structs[0]
	if s.Name != "Point" || len(s.Fields) != 2 {
		t.Fatalf("unexpected struct: %+v", s)
	}
	if s.Fields[0].Name != "x" || s.Fields[1].Name != "y" {
		t.Fatalf("unexpected field order: %+v", s.Fields)
	}
}

func TestExtractPartitionAnonymousStructBorrowsTypedefName(t *testing.T) {
	anonStruct := &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EName:         "",
		EIsDefinition: true,
		ELoc:          loc(),
		EType:         &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(4)},
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "value", EType: i32Type()},
		},
	}
	anonStructType := &cfront.FakeType{TKind: cfront.TypeRecord, TDecl: anonStruct}
	typedefEnt := &cfront.FakeEntity{
		EKind:              cfront.EntityTypedefDecl,
		EName:              "Handle",
		ELoc:               loc(),
		ETypedefUnderlying: anonStructType,
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{anonStruct, typedefEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Structs) != 1 || part.Structs[0].Name != "Handle" {
		t.Fatalf("expected anonymous struct to borrow typedef name, got %+v", part.Structs)
	}
	if len(part.Typedefs) != 0 {
		t.Fatalf("expected consumed typedef not to be re-emitted, got %+v", part.Typedefs)
	}
}

func TestExtractPartitionNestedAnonymousRecordPromoted(t *testing.T) {
	nested := &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EIsDefinition: true,
		EType:         &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(4)},
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "inner", EType: i32Type()},
		},
	}
	nestedType := &cfront.FakeType{TKind: cfront.TypeRecord, TDecl: nested}
	outer := &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EName:         "Outer",
		EIsDefinition: true,
		ELoc:          loc(),
		EType:         &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(8)},
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "nested", EType: nestedType},
		},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{outer}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Structs) != 2 {
		t.Fatalf("want Outer + synthetic Outer_nested, got %d: %+v", len(part.Structs), part.Structs)
	}
	if part.Structs[0].Name != "Outer" || part.Structs[1].Name != "Outer_nested" {
		t.Fatalf("unexpected struct names: %s, %s", part.Structs[0].Name, part.Structs[1].Name)
	}
	named, ok := part.Structs[0].Fields[0].Type.(model.Named)
	if !ok || named.Name != "Outer_nested" {
		t.Fatalf("expected field to reference synthetic type, got %+v", part.Structs[0].Fields[0].Type)
	}
}

func TestExtractPartitionNamedEnum(t *testing.T) {
	enumEnt := &cfront.FakeEntity{
		EKind:         cfront.EntityEnumDecl,
		EName:         "Color",
		EIsDefinition: true,
		ELoc:          loc(),
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityEnumConstantDecl, EName: "Red", EEnumConstantValid: true, EEnumSigned: 0},
			&cfront.FakeEntity{EKind: cfront.EntityEnumConstantDecl, EName: "Green", EEnumConstantValid: true, EEnumSigned: 1},
		},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{enumEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Enums) != 1 || part.Enums[0].Name != "Color" || len(part.Enums[0].Variants) != 2 {
		t.Fatalf("unexpected enums: %+v", part.Enums)
	}
}

func TestExtractPartitionAnonymousEnumFlattensToConstants(t *testing.T) {
	enumEnt := &cfront.FakeEntity{
		EKind:         cfront.EntityEnumDecl,
		EName:         "",
		EIsDefinition: true,
		ELoc:          loc(),
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityEnumConstantDecl, EName: "FLAG_A", EEnumConstantValid: true, EEnumSigned: 1},
			&cfront.FakeEntity{EKind: cfront.EntityEnumConstantDecl, EName: "FLAG_B", EEnumConstantValid: true, EEnumSigned: 2},
		},
	}
	defineEnt := &cfront.FakeEntity{
		EKind:        cfront.EntityMacroDefinition,
		EName:        "MAX_COUNT",
		ELoc:         loc(),
		EMacroTokens: []string{"16"},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{enumEnt, defineEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Enums) != 0 {
		t.Fatalf("anonymous enum should not become a named EnumDef, got %+v", part.Enums)
	}
	if len(part.Constants) != 3 {
		t.Fatalf("want MAX_COUNT + 2 flattened variants, got %+v", part.Constants)
	}
	if part.Constants[0].Name != "MAX_COUNT" {
		t.Fatalf("explicit constants must precede flattened anonymous-enum constants, got %+v", part.Constants)
	}
}

func TestExtractPartitionDropsVariadicFunction(t *testing.T) {
	fnEnt := &cfront.FakeEntity{
		EKind: cfront.EntityFunctionDecl,
		EName: "open",
		ELoc:  loc(),
		EType: &cfront.FakeType{
			TKind:     cfront.TypeFunctionPrototype,
			TResult:   i32Type(),
			TArgs:     []cfront.Type{i32Type(), i32Type()},
			TVariadic: true,
		},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{fnEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Functions) != 0 {
		t.Fatalf("variadic function must be dropped, got %+v", part.Functions)
	}
}

func TestExtractPartitionFunctionParamsArePositional(t *testing.T) {
	fnEnt := &cfront.FakeEntity{
		EKind: cfront.EntityFunctionDecl,
		EName: "add",
		ELoc:  loc(),
		EType: &cfront.FakeType{
			TKind:   cfront.TypeFunctionPrototype,
			TResult: i32Type(),
			TArgs:   []cfront.Type{i32Type(), i32Type()},
		},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{fnEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Functions) != 1 {
		t.Fatalf("want 1 function, got %d", len(part.Functions))
	}
	fn := part.Functions[0]
	if len(fn.Params) != 2 || fn.Params[0].Name != "arg1" || fn.Params[1].Name != "arg2" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}
}

func TestExtractPartitionOutOfScopeDeclarationsAreSkipped(t *testing.T) {
	otherFile := "/usr/include/stdio.h"
	structEnt := &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EName:         "FILE",
		EIsDefinition: true,
		ELoc:          &cfront.SourceLocation{File: otherFile},
		EType:         &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(4)},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{structEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Structs) != 0 {
		t.Fatalf("declaration from an included-but-not-traversed header must be skipped, got %+v", part.Structs)
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }
