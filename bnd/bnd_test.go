package bnd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/youyuanwu/bnd/bndlog"
	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/config"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "bnd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func i32() *cfront.FakeType { return &cfront.FakeType{TKind: cfront.TypeInt} }

func pointEntity(loc cfront.SourceLocation) *cfront.FakeEntity {
	return &cfront.FakeEntity{
		EKind:         cfront.EntityStructDecl,
		EName:         "Point",
		EIsDefinition: true,
		ELoc:          &loc,
		EType:         &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(8)},
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "x", EType: i32()},
			&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "y", EType: i32()},
		},
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }

func TestRunWritesAWinmdFileWithValidSignature(t *testing.T) {
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "gfx.h")
	if err := os.WriteFile(headerPath, []byte("struct Point { int x; int y; };\n"), 0o644); err != nil {
		t.Fatalf("writing fixture header: %v", err)
	}

	cfgPath := writeConfig(t, dir, `
output:
  name: Gfx
partition:
  - namespace: Gfx.Types
    library: gfx.dll
    headers: [gfx.h]
`)

	idx := cfront.NewFakeIndex()
	idx.Units[headerPath] = &cfront.FakeEntity{
		EChildren: []cfront.Entity{pointEntity(cfront.SourceLocation{File: headerPath})},
	}

	outPath, err := Run(cfgPath, "", Options{Index: idx, Logger: bndlog.Discard{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outPath != filepath.Join(dir, "output.winmd") {
		t.Errorf("expected the default output file name, got %s", outPath)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading generated output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{'M', 'Z'}) {
		t.Fatalf("expected output to start with the MZ DOS header signature, got %x", data[:2])
	}
}

func TestRunHonorsAnOutputOverride(t *testing.T) {
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "gfx.h")
	os.WriteFile(headerPath, []byte("struct Point { int x; int y; };\n"), 0o644)

	cfgPath := writeConfig(t, dir, `
output:
  name: Gfx
partition:
  - namespace: Gfx.Types
    library: gfx.dll
    headers: [gfx.h]
`)

	idx := cfront.NewFakeIndex()
	idx.Units[headerPath] = &cfront.FakeEntity{
		EChildren: []cfront.Entity{pointEntity(cfront.SourceLocation{File: headerPath})},
	}

	overridePath := filepath.Join(dir, "custom.winmd")
	outPath, err := Run(cfgPath, overridePath, Options{Index: idx, Logger: bndlog.Discard{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outPath != overridePath {
		t.Errorf("expected the override path to win, got %s", outPath)
	}
	if _, err := os.Stat(overridePath); err != nil {
		t.Errorf("expected a file at the override path: %v", err)
	}
}

func TestGenerateAssemblesAWrapperWhenAPartitionListsSeveralHeaders(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.h")
	bPath := filepath.Join(dir, "b.h")
	os.WriteFile(aPath, []byte("struct A { int x; };\n"), 0o644)
	os.WriteFile(bPath, []byte("struct B { int y; };\n"), 0o644)

	cfgPath := writeConfig(t, dir, `
output:
  name: Multi
partition:
  - namespace: Multi.Types
    library: multi.dll
    headers: [a.h, b.h]
`)

	wrapperPath := filepath.Join(os.TempDir(), "bnd_wrappers", "Multi_Types_wrapper.c")
	idx := cfront.NewFakeIndex()
	idx.Units[wrapperPath] = &cfront.FakeEntity{
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{
				EKind: cfront.EntityStructDecl, EName: "A", EIsDefinition: true,
				ELoc: &cfront.SourceLocation{File: aPath},
				EType: &cfront.FakeType{TKind: cfront.TypeRecord, TSize: uint64Ptr(4)},
				EChildren: []cfront.Entity{
					&cfront.FakeEntity{EKind: cfront.EntityFieldDecl, EName: "x", EType: i32()},
				},
			},
		},
	}

	out, err := Generate(cfgPath, Options{Index: idx, Logger: bndlog.Discard{}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty output")
	}

	wrapper, err := os.ReadFile(wrapperPath)
	if err != nil {
		t.Fatalf("expected a wrapper source file to have been written: %v", err)
	}
	want := "#include \"" + aPath + "\"\n#include \"" + bPath + "\"\n"
	if string(wrapper) != want {
		t.Errorf("wrapper content = %q, want %q", string(wrapper), want)
	}
}

func TestGenerateFromConfigSurfacesATranslationUnitErrorWithThePathAnnotated(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `
output:
  name: Broken
partition:
  - namespace: Broken.Types
    library: broken.dll
    headers: [missing.h]
`)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	idx := cfront.NewFakeIndex() // no units registered: Parse always fails
	_, err = GenerateFromConfig(cfg, dir, Options{Index: idx, Logger: bndlog.Discard{}})
	if err == nil {
		t.Fatalf("expected a translation-unit error")
	}
}

func TestGenerateFromConfigRelocatesAnOverriddenTypedefToItsConfiguredNamespace(t *testing.T) {
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "posix.h")
	os.WriteFile(headerPath, []byte("typedef unsigned int uid_t;\n"), 0o644)

	cfgPath := writeConfig(t, dir, `
output:
  name: Posix
partition:
  - namespace: Posix.Types
    library: posix.so
    headers: [posix.h]
namespace_overrides:
  uid_t: Posix.Shared
`)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	idx := cfront.NewFakeIndex()
	idx.Units[headerPath] = &cfront.FakeEntity{
		EChildren: []cfront.Entity{
			&cfront.FakeEntity{
				EKind: cfront.EntityTypedefDecl, EName: "uid_t",
				ELoc:               &cfront.SourceLocation{File: headerPath},
				ETypedefUnderlying: &cfront.FakeType{TKind: cfront.TypeUInt},
			},
		},
	}

	out, err := GenerateFromConfig(cfg, dir, Options{Index: idx, Logger: bndlog.Discard{}})
	if err != nil {
		t.Fatalf("GenerateFromConfig: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty output")
	}
}
