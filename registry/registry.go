// Package registry builds the global type-name-to-namespace mapping
// shared across partitions, deduplicates types that lost the
// first-writer race, and validates that every Named type reference
// resolves before emission begins (spec.md §4.3, §4.4).
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/youyuanwu/bnd/model"
)

// Build folds every partition's named types (structs, enums,
// typedefs) into reg, first-writer-wins: a name already present in reg
// — whether seeded by ImportExternal or registered by an earlier
// partition in the slice — is left untouched (spec.md §4.3). overrides
// relocates a name to a configured namespace instead of the
// declaring partition's own (bnd.yaml's `namespace_overrides`).
func Build(reg *model.TypeRegistry, partitions []*model.Partition, overrides map[string]string) {
	for _, p := range partitions {
		for _, s := range p.Structs {
			registerFirst(reg, s.Name, EffectiveNamespace(overrides, s.Name, p.Namespace))
		}
		for _, e := range p.Enums {
			registerFirst(reg, e.Name, EffectiveNamespace(overrides, e.Name, p.Namespace))
		}
		for _, t := range p.Typedefs {
			registerFirst(reg, t.Name, EffectiveNamespace(overrides, t.Name, p.Namespace))
		}
	}
}

// EffectiveNamespace returns the namespace a name should be registered
// and emitted under: overrides[name] if present, otherwise fallback.
// Shared between Build/Deduplicate here and emit's own ownership and
// TypeDef-namespace decisions, so both packages agree on where an
// overridden type actually lives.
func EffectiveNamespace(overrides map[string]string, name, fallback string) string {
	if ns, ok := overrides[name]; ok {
		return ns
	}
	return fallback
}

func registerFirst(reg *model.TypeRegistry, name, namespace string) {
	if reg.Contains(name) {
		return
	}
	reg.Register(name, namespace)
}

// Deduplicate removes, from each partition, any local struct or
// typedef whose registry-resolved namespace differs from the
// partition's own (after overrides) — it lost the first-writer race to
// an earlier partition or to an external import. References to the
// dropped name still resolve correctly: Named lookups always go
// through reg, never through the partition that originally declared it
// (spec.md §4.3).
func Deduplicate(reg *model.TypeRegistry, partitions []*model.Partition, overrides map[string]string) {
	for _, p := range partitions {
		p.Structs = filterOwned(reg, p.Namespace, overrides, p.Structs, func(s *model.StructDef) string { return s.Name })
		p.Typedefs = filterOwned(reg, p.Namespace, overrides, p.Typedefs, func(t *model.TypedefDef) string { return t.Name })
	}
}

func filterOwned[T any](reg *model.TypeRegistry, namespace string, overrides map[string]string, items []T, nameOf func(T) string) []T {
	var out []T
	for _, item := range items {
		name := nameOf(item)
		owner, ok := reg.OwnerOf(name)
		if ok && owner != EffectiveNamespace(overrides, name, namespace) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ValidationError reports every Named reference that could not be
// resolved against the registry, deduplicated by name with the first
// usage site retained for context (spec.md §4.4).
type ValidationError struct {
	Unresolved []UnresolvedReference
}

// UnresolvedReference is one Named type that never appeared in the
// registry, along with where it was first seen.
type UnresolvedReference struct {
	Name        string
	Partition   string
	Declaration string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d unresolved type reference(s):\n", len(e.Unresolved))
	for _, u := range e.Unresolved {
		fmt.Fprintf(&b, "  %q referenced from %s.%s is not defined anywhere and was not imported "+
			"(check the partition's traverse list, or add a type_import entry)\n",
			u.Name, u.Partition, u.Declaration)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Validate walks every CType reachable from every partition's
// structs, functions, and typedefs and collects every Named reference
// whose name is absent from reg and which carries no fallback
// Resolved type. Returns nil if every reference resolves.
func Validate(reg *model.TypeRegistry, partitions []*model.Partition) error {
	seen := make(map[string]bool)
	var unresolved []UnresolvedReference

	record := func(name, partition, decl string) {
		if seen[name] {
			return
		}
		seen[name] = true
		unresolved = append(unresolved, UnresolvedReference{Name: name, Partition: partition, Declaration: decl})
	}

	for _, p := range partitions {
		for _, s := range p.Structs {
			for _, f := range s.Fields {
				walkCType(f.Type, reg, func(name string) {
					record(name, p.Namespace, fmt.Sprintf("struct %s.%s", s.Name, f.Name))
				})
			}
		}
		for _, fn := range p.Functions {
			walkCType(fn.ReturnType, reg, func(name string) {
				record(name, p.Namespace, fmt.Sprintf("function %s (return type)", fn.Name))
			})
			for _, param := range fn.Params {
				walkCType(param.Type, reg, func(name string) {
					record(name, p.Namespace, fmt.Sprintf("function %s parameter %s", fn.Name, param.Name))
				})
			}
		}
		for _, t := range p.Typedefs {
			walkCType(t.UnderlyingType, reg, func(name string) {
				record(name, p.Namespace, fmt.Sprintf("typedef %s", t.Name))
			})
		}
	}

	if len(unresolved) == 0 {
		return nil
	}
	sort.Slice(unresolved, func(i, j int) bool { return unresolved[i].Name < unresolved[j].Name })
	return &ValidationError{Unresolved: unresolved}
}

// walkCType calls report once for every Named reference reachable
// from ty whose name is neither registered nor carries a Resolved
// fallback.
func walkCType(ty model.CType, reg *model.TypeRegistry, report func(name string)) {
	switch t := ty.(type) {
	case model.Named:
		if t.Resolved != nil {
			walkCType(t.Resolved, reg, report)
			return
		}
		if !reg.Contains(t.Name) {
			report(t.Name)
		}
	case model.Ptr:
		walkCType(t.Pointee, reg, report)
	case model.Array:
		walkCType(t.Element, reg, report)
	case model.FnPtr:
		walkCType(t.ReturnType, reg, report)
		for _, p := range t.Params {
			walkCType(p, reg, report)
		}
	case model.Primitive:
		// nothing to resolve
	}
}
