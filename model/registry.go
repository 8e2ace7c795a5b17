package model

// TypeRegistry maps a type name to the namespace that owns it. It is
// built once, after all partitions are extracted, and is immutable
// thereafter — see registry.Build and registry.Validate, which operate on
// this type from outside the model package.
type TypeRegistry struct {
	namespaces map[string]string
	externals  map[string]string // name -> owning external assembly, if imported rather than declared locally
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{namespaces: make(map[string]string), externals: make(map[string]string)}
}

// Register records that name belongs to namespace. Callers are
// responsible for first-writer-wins semantics (see registry.Build); this
// method always overwrites.
func (r *TypeRegistry) Register(name, namespace string) {
	r.namespaces[name] = namespace
}

// RegisterExternal records that name belongs to namespace but is
// defined in an external assembly rather than by any local partition,
// so emit must reference it via TypeRef/AssemblyRef instead of minting
// a local TypeDef.
func (r *TypeRegistry) RegisterExternal(name, namespace, assemblyName string) {
	r.namespaces[name] = namespace
	r.externals[name] = assemblyName
}

// ExternalAssembly returns the assembly name is imported from, and
// whether name was registered as external at all.
func (r *TypeRegistry) ExternalAssembly(name string) (string, bool) {
	asm, ok := r.externals[name]
	return asm, ok
}

// Contains reports whether name has been registered.
func (r *TypeRegistry) Contains(name string) bool {
	_, ok := r.namespaces[name]
	return ok
}

// NamespaceFor returns the namespace name is registered under, or
// defaultNamespace if name is not registered.
func (r *TypeRegistry) NamespaceFor(name, defaultNamespace string) string {
	if ns, ok := r.namespaces[name]; ok {
		return ns
	}
	return defaultNamespace
}

// OwnerOf returns the namespace name is registered under and whether it
// was found at all.
func (r *TypeRegistry) OwnerOf(name string) (string, bool) {
	ns, ok := r.namespaces[name]
	return ns, ok
}
