package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadFillsInTheDefaultOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bnd.yaml", `
output:
  name: MyLib
partition:
  - namespace: MyLib.Types
    library: mylib.so
    headers: [mylib/types.h]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.File != "output.winmd" {
		t.Errorf("expected the default output file name, got %q", cfg.Output.File)
	}
	if len(cfg.Partition) != 1 || cfg.Partition[0].Namespace != "MyLib.Types" {
		t.Fatalf("unexpected partitions: %+v", cfg.Partition)
	}
}

func TestLoadParsesNamespaceOverridesAndTypeImports(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bnd.yaml", `
output:
  name: MyLib
  file: MyLib.winmd
namespace_overrides:
  uid_t: MyLib.Types
type_import:
  - winmd: Windows.Win32.winmd
    namespace: Windows.Win32.Foundation
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NamespaceOverrides["uid_t"] != "MyLib.Types" {
		t.Errorf("expected uid_t override, got %+v", cfg.NamespaceOverrides)
	}
	if len(cfg.TypeImport) != 1 || cfg.TypeImport[0].Namespace != "Windows.Win32.Foundation" {
		t.Fatalf("unexpected type imports: %+v", cfg.TypeImport)
	}
}

func TestLoadReturnsAnErrorForAMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error reading a missing config file")
	}
}

func TestTraverseFilesFallsBackToHeadersWhenEmpty(t *testing.T) {
	p := Partition{Headers: []string{"a.h", "b.h"}}
	got := p.TraverseFiles()
	if len(got) != 2 || got[0] != "a.h" || got[1] != "b.h" {
		t.Errorf("expected TraverseFiles to fall back to Headers, got %v", got)
	}
}

func TestTraverseFilesUsesItsOwnListWhenSet(t *testing.T) {
	p := Partition{Headers: []string{"a.h", "b.h"}, Traverse: []string{"a.h"}}
	got := p.TraverseFiles()
	if len(got) != 1 || got[0] != "a.h" {
		t.Errorf("expected TraverseFiles to use the explicit traverse list, got %v", got)
	}
}

func TestResolveHeaderPrefersBaseDirOverIncludePaths(t *testing.T) {
	baseDir := t.TempDir()
	incDir := t.TempDir()
	writeFile(t, baseDir, "widget.h", "")
	writeFile(t, incDir, "widget.h", "")

	got := ResolveHeader("widget.h", baseDir, []string{incDir})
	if got != filepath.Join(baseDir, "widget.h") {
		t.Errorf("expected baseDir to win, got %q", got)
	}
}

func TestResolveHeaderFallsBackToIncludePathsInOrder(t *testing.T) {
	baseDir := t.TempDir()
	incA := t.TempDir()
	incB := t.TempDir()
	writeFile(t, incB, "widget.h", "")

	got := ResolveHeader("widget.h", baseDir, []string{incA, incB})
	if got != filepath.Join(incB, "widget.h") {
		t.Errorf("expected the second include path to win, got %q", got)
	}
}

func TestResolveHeaderPassesAbsolutePathsThrough(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "widget.h")
	if got := ResolveHeader(abs, "/irrelevant", nil); got != abs {
		t.Errorf("expected an absolute path to pass through unchanged, got %q", got)
	}
}

func TestTranslationUnitReturnsTheSingleHeaderDirectly(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "widget.h", "")

	p := Partition{Namespace: "Acme.Widgets", Headers: []string{"widget.h"}}
	got, err := p.TranslationUnit(baseDir, nil, t.TempDir())
	if err != nil {
		t.Fatalf("TranslationUnit: %v", err)
	}
	if got != filepath.Join(baseDir, "widget.h") {
		t.Errorf("expected the single header path, got %q", got)
	}
}

func TestTranslationUnitSynthesizesAWrapperForSeveralHeadersInOrder(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "a.h", "")
	writeFile(t, baseDir, "b.h", "")
	scratchDir := t.TempDir()

	p := Partition{Namespace: "Acme.Widgets", Headers: []string{"a.h", "b.h"}}
	got, err := p.TranslationUnit(baseDir, nil, scratchDir)
	if err != nil {
		t.Fatalf("TranslationUnit: %v", err)
	}
	want := filepath.Join(scratchDir, "Acme_Widgets_wrapper.c")
	if got != want {
		t.Fatalf("expected the namespace-derived wrapper path, got %q want %q", got, want)
	}

	content, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("reading wrapper: %v", err)
	}
	wantContent := "#include \"" + filepath.Join(baseDir, "a.h") + "\"\n" +
		"#include \"" + filepath.Join(baseDir, "b.h") + "\"\n"
	if string(content) != wantContent {
		t.Errorf("wrapper content = %q, want %q", string(content), wantContent)
	}
}
