package extract

import (
	"testing"

	"github.com/youyuanwu/bnd/bndlog"
	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

func TestExtractPartitionPlainTypedefAliasesUnderlyingType(t *testing.T) {
	typedefEnt := &cfront.FakeEntity{
		EKind:              cfront.EntityTypedefDecl,
		EName:              "pid_t",
		ELoc:               loc(),
		ETypedefUnderlying: i32Type(),
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{typedefEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Typedefs) != 1 || part.Typedefs[0].Name != "pid_t" {
		t.Fatalf("expected a pid_t typedef, got %+v", part.Typedefs)
	}
	prim, ok := part.Typedefs[0].UnderlyingType.(model.Primitive)
	if !ok || prim != model.I32 {
		t.Fatalf("expected underlying type I32, got %+v", part.Typedefs[0].UnderlyingType)
	}
}

func TestExtractPartitionStructTagPassthroughTypedefIsSkipped(t *testing.T) {
	structEnt := &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EName:         "Foo",
		EIsDefinition: true,
		ELoc:          loc(),
		EType:         &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(4)},
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "value", EType: i32Type()},
		},
	}
	structType := &cfront.FakeType{TKind: cfront.TypeRecord, TDecl: structEnt}
	typedefEnt := &cfront.FakeEntity{
		EKind:              cfront.EntityTypedefDecl,
		EName:              "Foo",
		ELoc:               loc(),
		ETypedefUnderlying: structType,
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{structEnt, typedefEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Structs) != 1 || part.Structs[0].Name != "Foo" {
		t.Fatalf("expected the named struct Foo, got %+v", part.Structs)
	}
	if len(part.Typedefs) != 0 {
		t.Fatalf("typedef struct Foo Foo; must not re-emit as a standalone typedef, got %+v", part.Typedefs)
	}
}

func TestExtractPartitionFixedWidthTypedefIsNeverReemitted(t *testing.T) {
	typedefEnt := &cfront.FakeEntity{
		EKind:              cfront.EntityTypedefDecl,
		EName:              "uint32_t",
		ELoc:               loc(),
		ETypedefUnderlying: &cfront.FakeType{TKind: cfront.TypeUInt},
	}
	root := &cfront.FakeEntity{EChildren: []cfront.Entity{typedefEnt}}

	tu := parseFake(t, root)
	part, err := ExtractPartition(tu, "Widgets", "widget.dll", []string{testFile}, WindowsLong, bndlog.NewHelper(bndlog.Discard{}))
	if err != nil {
		t.Fatalf("ExtractPartition: %v", err)
	}
	if len(part.Typedefs) != 0 {
		t.Fatalf("uint32_t must never be re-emitted as a standalone typedef, got %+v", part.Typedefs)
	}
}
