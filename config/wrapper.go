package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TranslationUnit returns the file to hand to the C front end for this
// partition: the single header itself when there is only one, or a
// synthesized wrapper source file #include-ing every header in order
// when there are several (spec.md §4.1). The wrapper is written into
// scratchDir under a name derived from the partition's namespace
// ("." replaced with "_"), mirroring the ecosystem reference scraper's
// convention so that per-partition scratch files don't collide across
// namespaces within one run.
func (p *Partition) TranslationUnit(baseDir string, includePaths []string, scratchDir string) (string, error) {
	if len(p.Headers) == 1 {
		return ResolveHeader(p.Headers[0], baseDir, includePaths), nil
	}

	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("creating wrapper scratch dir %s: %w", scratchDir, err)
	}

	safeName := strings.ReplaceAll(p.Namespace, ".", "_")
	wrapperPath := filepath.Join(scratchDir, safeName+"_wrapper.c")

	var b strings.Builder
	for _, h := range p.Headers {
		abs := ResolveHeader(h, baseDir, includePaths)
		fmt.Fprintf(&b, "#include \"%s\"\n", abs)
	}
	if err := os.WriteFile(wrapperPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing wrapper file %s: %w", wrapperPath, err)
	}
	return wrapperPath, nil
}
