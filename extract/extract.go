// Package extract walks a parsed translation unit (via the cfront
// contract) and builds a model.Partition: structs, enums, functions,
// typedefs, and constants, applying the scope filter and the C-type
// mapping table along the way (spec.md §4.1, §4.2).
package extract

import (
	"fmt"

	"github.com/youyuanwu/bnd/bndlog"
	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// builder carries the per-partition state threaded through the
// collect* helpers in this package: the scope filter, the type
// mapper, the logger, and bookkeeping for anonymous-record/typedef
// association.
type builder struct {
	scope            *scopeFilter
	mapper           *mapper
	log              *bndlog.Helper
	consumedTypedefs map[cfront.Entity]bool
	synthesized      []*model.StructDef
}

// ExtractPartition walks tu's root entity and builds the partition's
// model.Partition. Structs are collected first so that anonymous
// records consumed by a typedef are recorded before collectTypedefs
// runs (spec.md §4.1).
func ExtractPartition(
	tu cfront.TranslationUnit,
	namespace, library string,
	traverseFiles []string,
	longWidth LongWidth,
	logger *bndlog.Helper,
) (*model.Partition, error) {
	b := &builder{
		scope:            newScopeFilter(traverseFiles),
		mapper:           &mapper{longWidth: longWidth},
		log:              logger,
		consumedTypedefs: make(map[cfront.Entity]bool),
	}

	root := tu.Root()

	structs, err := b.collectStructs(root)
	if err != nil {
		return nil, fmt.Errorf("extracting structs: %w", err)
	}
	enums, anonConstants, err := b.collectEnums(root)
	if err != nil {
		return nil, fmt.Errorf("extracting enums: %w", err)
	}
	functions, err := b.collectFunctions(root)
	if err != nil {
		return nil, fmt.Errorf("extracting functions: %w", err)
	}
	typedefs, err := b.collectTypedefs(root)
	if err != nil {
		return nil, fmt.Errorf("extracting typedefs: %w", err)
	}
	constants := b.collectConstants(root)
	constants = append(constants, anonConstants...)

	return &model.Partition{
		Namespace: namespace,
		Library:   library,
		Structs:   structs,
		Enums:     enums,
		Functions: functions,
		Typedefs:  typedefs,
		Constants: constants,
	}, nil
}
