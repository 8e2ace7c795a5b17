package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/youyuanwu/bnd/config"
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/winmdimport"
)

// ImportExternal seeds reg with every TypeDef declared in each
// type_import entry's .winmd file whose namespace begins with that
// entry's configured prefix, before any partition is registered
// (spec.md §4.3, §4.6, §6) — so Build's first-writer-wins fold always
// loses to an external definition with the same name, matching a real
// C header that forward-references a type already defined by a
// dependency. An empty Namespace imports every type in the file. The
// synthetic <Module> and Apis types are never importable; they belong
// to the assembly that defines them, not to its consumers.
//
// When two external imports both produce the same type name under
// different namespaces, the lexicographically smallest namespace wins
// — a deterministic tie-break independent of type_import order.
func ImportExternal(reg *model.TypeRegistry, imports []config.TypeImport) error {
	candidates := map[string]winmdimport.ExternalType{}

	for _, imp := range imports {
		types, err := winmdimport.ReadTypeDefs(imp.Winmd)
		if err != nil {
			return fmt.Errorf("importing %s: %w", imp.Winmd, err)
		}
		for _, t := range types {
			if t.Name == "Apis" {
				continue
			}
			if imp.Namespace != "" && !strings.HasPrefix(t.Namespace, imp.Namespace) {
				continue
			}
			if existing, ok := candidates[t.Name]; !ok || t.Namespace < existing.Namespace {
				candidates[t.Name] = t
			}
		}
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if reg.Contains(name) {
			continue
		}
		t := candidates[name]
		reg.RegisterExternal(t.Name, t.Namespace, t.AssemblyName)
	}
	return nil
}
