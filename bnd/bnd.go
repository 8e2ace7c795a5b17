// Package bnd wires config, cfront, extract, registry, and emit together
// into the three programmatic entry points the CLI (and any other caller)
// drives: Run, Generate, and GenerateFromConfig (spec.md §6.2).
package bnd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/youyuanwu/bnd/bndlog"
	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/config"
	"github.com/youyuanwu/bnd/emit"
	"github.com/youyuanwu/bnd/extract"
	"github.com/youyuanwu/bnd/model"
	"github.com/youyuanwu/bnd/registry"
)

// wrapperScratchDir is the one shared directory every synthesized
// multi-header wrapper source file is written into, namespace-derived
// filename and all (config.Partition.TranslationUnit) — mirroring
// bindscrape's own single `bindscrape_wrappers` temp directory rather
// than one directory per partition.
const wrapperScratchDir = "bnd_wrappers"

// Options carries the pieces a generation run cannot construct for
// itself: the C front-end index (spec.md §1 treats it as an external
// collaborator with no in-module implementation — only cfront.FakeIndex
// exists, for tests), the long-width ABI policy (spec.md §4.2), and an
// optional logger. Mirrors the way saferwall/pe.Options injects a Logger
// into File rather than hardwiring one.
type Options struct {
	Index     cfront.Index
	LongWidth extract.LongWidth
	Logger    bndlog.Logger
}

// Run loads the config at configPath, generates the assembly, and writes
// it to outputOverride if non-empty, otherwise to the config's own
// output.file (resolved relative to the config's own directory). Returns
// the path actually written to.
func Run(configPath string, outputOverride string, opts Options) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	baseDir := filepath.Dir(configPath)

	out, err := GenerateFromConfig(cfg, baseDir, opts)
	if err != nil {
		return "", err
	}

	outPath := cfg.Output.File
	if outputOverride != "" {
		outPath = outputOverride
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(baseDir, outPath)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return "", fmt.Errorf("writing output file %s: %w", outPath, err)
	}
	return outPath, nil
}

// Generate loads the config at configPath and generates the assembly
// bytes without writing them anywhere.
func Generate(configPath string, opts Options) ([]byte, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return GenerateFromConfig(cfg, filepath.Dir(configPath), opts)
}

// GenerateFromConfig runs the full pipeline — per-partition translation
// unit assembly and extraction, external import, registry build and
// dedup, validation, emission — against an already-loaded config, for
// callers that built one some other way than reading it off disk.
func GenerateFromConfig(cfg *config.Config, baseDir string, opts Options) ([]byte, error) {
	log := bndlog.NewHelper(opts.Logger)

	reg := model.NewTypeRegistry()
	if err := registry.ImportExternal(reg, cfg.TypeImport); err != nil {
		return nil, fmt.Errorf("importing external metadata: %w", err)
	}

	partitions := make([]*model.Partition, 0, len(cfg.Partition))
	for i := range cfg.Partition {
		partition, err := extractPartition(opts.Index, cfg, baseDir, &cfg.Partition[i], opts.LongWidth, log)
		if err != nil {
			return nil, err
		}
		partitions = append(partitions, partition)
	}

	registry.Build(reg, partitions, cfg.NamespaceOverrides)
	registry.Deduplicate(reg, partitions, cfg.NamespaceOverrides)

	if err := registry.Validate(reg, partitions); err != nil {
		return nil, err
	}

	return emit.Emit(cfg.Output.Name, reg, partitions, cfg.NamespaceOverrides), nil
}

// extractPartition assembles p's translation unit (spec.md §4.1), parses
// it through idx, and extracts a model.Partition from the result.
func extractPartition(
	idx cfront.Index,
	cfg *config.Config,
	baseDir string,
	p *config.Partition,
	longWidth extract.LongWidth,
	log *bndlog.Helper,
) (*model.Partition, error) {
	scratchDir := filepath.Join(os.TempDir(), wrapperScratchDir)
	tuPath, err := p.TranslationUnit(baseDir, cfg.IncludePaths, scratchDir)
	if err != nil {
		return nil, fmt.Errorf("assembling translation unit for partition %s: %w", p.Namespace, err)
	}

	tu, err := idx.Parse(tuPath, clangArgs(cfg, p))
	if err != nil {
		return nil, fmt.Errorf("parsing translation unit %s for partition %s: %w", tuPath, p.Namespace, err)
	}

	traverse := make([]string, len(p.TraverseFiles()))
	for i, h := range p.TraverseFiles() {
		traverse[i] = config.ResolveHeader(h, baseDir, cfg.IncludePaths)
	}

	partition, err := extract.ExtractPartition(tu, p.Namespace, p.Library, traverse, longWidth, log)
	if err != nil {
		return nil, fmt.Errorf("extracting partition %s: %w", p.Namespace, err)
	}
	return partition, nil
}

func clangArgs(cfg *config.Config, p *config.Partition) []string {
	var args []string
	for _, inc := range cfg.IncludePaths {
		args = append(args, "-I"+inc)
	}
	args = append(args, cfg.ClangArgs...)
	args = append(args, p.ClangArgs...)
	return args
}
