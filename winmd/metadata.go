package winmd

import (
	"bytes"
	"encoding/binary"
)

// tableStream returns, for every table index in declaration order,
// its row count and a writer that serializes one row. Only tables
// bnd actually populates are included; every other table contributes
// a zero row count and is absent from MaskValid (ECMA-335 §II.24.2.6).
type tableEntry struct {
	index int
	count uint32
	write func(buf *bytes.Buffer, widths widths)
}

// widths carries every heap/coded-index byte width the table stream
// needs, computed once the writer knows final row counts for every
// table (ECMA-335 §II.24.2.6: "the width ... depends on the number of
// rows in the tables it can point into").
type widths struct {
	str, guid, blob int
	typeDefOrRef    int
	resolutionScope int
	memberRefParent int
	hasConstant     int
	memberForwarded int
	hasCustomAttribute  int
	customAttributeType int
	field           int
	param           int
	methodDef       int
	moduleRef       int
}

func (b *Builder) computeWidths() widths {
	var rowCounts [tableCount]uint32
	rowCounts[tblModule] = 1
	rowCounts[tblTypeRef] = uint32(len(b.typeRefs))
	rowCounts[tblTypeDef] = uint32(len(b.typeDefs))
	rowCounts[tblField] = uint32(len(b.fields))
	rowCounts[tblMethodDef] = uint32(len(b.methods))
	rowCounts[tblParam] = uint32(len(b.params))
	rowCounts[tblMemberRef] = uint32(len(b.memberRefs))
	rowCounts[tblConstant] = uint32(len(b.constants))
	rowCounts[tblCustomAttribute] = uint32(len(b.customAttributes))
	rowCounts[tblClassLayout] = uint32(len(b.layouts))
	rowCounts[tblFieldLayout] = uint32(len(b.fieldLayouts))
	rowCounts[tblModuleRef] = uint32(len(b.moduleRefs))
	rowCounts[tblImplMap] = uint32(len(b.implMaps))
	rowCounts[tblAssembly] = 1
	rowCounts[tblAssemblyRef] = uint32(len(b.assemblyRefs))

	heapSize := func(n int) int {
		if n >= 1<<16 {
			return 4
		}
		return 2
	}

	return widths{
		str:             heapSize(len(b.strings.buf)),
		guid:            heapSize(len(b.guids.guids) * 16),
		blob:            heapSize(len(b.blobs.buf)),
		typeDefOrRef:    codedTypeDefOrRef.size(rowCounts),
		resolutionScope: codedResolutionScope.size(rowCounts),
		memberRefParent: codedMemberRefParent.size(rowCounts),
		hasConstant:     codedHasConstant.size(rowCounts),
		memberForwarded: codedMemberForwarded.size(rowCounts),
		hasCustomAttribute:  codedHasCustomAttribute.size(rowCounts),
		customAttributeType: codedCustomAttributeType.size(rowCounts),
		field:           simpleIndexSize(rowCounts[tblField]),
		param:           simpleIndexSize(rowCounts[tblParam]),
		methodDef:       simpleIndexSize(rowCounts[tblMethodDef]),
		moduleRef:       simpleIndexSize(rowCounts[tblModuleRef]),
	}
}

func putIndex(buf *bytes.Buffer, width int, v uint32) {
	if width == 2 {
		binary.Write(buf, binary.LittleEndian, uint16(v))
	} else {
		binary.Write(buf, binary.LittleEndian, v)
	}
}

// buildTableStream serializes the populated tables into the #~
// stream body, per ECMA-335 §II.24.2.6: a fixed header, a run of
// per-present-table row counts, then the rows themselves in table
// index order.
func (b *Builder) buildTableStream() []byte {
	w := b.computeWidths()

	entries := []tableEntry{
		{tblModule, 1, func(buf *bytes.Buffer, w widths) {
			binary.Write(buf, binary.LittleEndian, b.module.Generation)
			putIndex(buf, w.str, b.module.Name)
			putIndex(buf, w.guid, b.module.Mvid)
			putIndex(buf, w.guid, b.module.EncID)
			putIndex(buf, w.guid, b.module.EncBaseID)
		}},
		{tblTypeRef, uint32(len(b.typeRefs)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.typeRefs {
				putIndex(buf, w.resolutionScope, r.ResolutionScope)
				putIndex(buf, w.str, r.TypeName)
				putIndex(buf, w.str, r.TypeNamespace)
			}
		}},
		{tblTypeDef, uint32(len(b.typeDefs)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.typeDefs {
				binary.Write(buf, binary.LittleEndian, r.Flags)
				putIndex(buf, w.str, r.TypeName)
				putIndex(buf, w.str, r.TypeNamespace)
				putIndex(buf, w.typeDefOrRef, r.Extends)
				putIndex(buf, w.field, r.FieldList)
				putIndex(buf, w.methodDef, r.MethodList)
			}
		}},
		{tblField, uint32(len(b.fields)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.fields {
				binary.Write(buf, binary.LittleEndian, r.Flags)
				putIndex(buf, w.str, r.Name)
				putIndex(buf, w.blob, r.Signature)
			}
		}},
		{tblMethodDef, uint32(len(b.methods)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.methods {
				binary.Write(buf, binary.LittleEndian, r.RVA)
				binary.Write(buf, binary.LittleEndian, r.ImplFlags)
				binary.Write(buf, binary.LittleEndian, r.Flags)
				putIndex(buf, w.str, r.Name)
				putIndex(buf, w.blob, r.Signature)
				putIndex(buf, w.param, r.ParamList)
			}
		}},
		{tblParam, uint32(len(b.params)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.params {
				binary.Write(buf, binary.LittleEndian, r.Flags)
				binary.Write(buf, binary.LittleEndian, r.Sequence)
				putIndex(buf, w.str, r.Name)
			}
		}},
		{tblMemberRef, uint32(len(b.memberRefs)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.memberRefs {
				putIndex(buf, w.memberRefParent, r.Class)
				putIndex(buf, w.str, r.Name)
				putIndex(buf, w.blob, r.Signature)
			}
		}},
		{tblConstant, uint32(len(b.constants)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.constants {
				buf.WriteByte(r.Type)
				buf.WriteByte(0) // padding byte, ECMA-335 §II.22.9
				putIndex(buf, w.hasConstant, r.parent)
				putIndex(buf, w.blob, r.Value)
			}
		}},
		{tblCustomAttribute, uint32(len(b.customAttributes)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.customAttributes {
				putIndex(buf, w.hasCustomAttribute, r.Parent)
				putIndex(buf, w.customAttributeType, r.Type)
				putIndex(buf, w.blob, r.Value)
			}
		}},
		{tblClassLayout, uint32(len(b.layouts)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.layouts {
				binary.Write(buf, binary.LittleEndian, r.PackingSize)
				binary.Write(buf, binary.LittleEndian, r.ClassSize)
				putIndex(buf, simpleIndexSize(uint32(len(b.typeDefs))), r.Parent)
			}
		}},
		{tblFieldLayout, uint32(len(b.fieldLayouts)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.fieldLayouts {
				binary.Write(buf, binary.LittleEndian, r.Offset)
				putIndex(buf, w.field, r.Field)
			}
		}},
		{tblModuleRef, uint32(len(b.moduleRefs)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.moduleRefs {
				putIndex(buf, w.str, r.Name)
			}
		}},
		{tblImplMap, uint32(len(b.implMaps)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.implMaps {
				binary.Write(buf, binary.LittleEndian, r.MappingFlags)
				putIndex(buf, w.memberForwarded, r.MemberForwarded)
				putIndex(buf, w.str, r.ImportName)
				putIndex(buf, w.moduleRef, r.ImportScope)
			}
		}},
		{tblAssembly, 1, func(buf *bytes.Buffer, w widths) {
			binary.Write(buf, binary.LittleEndian, b.assembly.HashAlgID)
			binary.Write(buf, binary.LittleEndian, b.assembly.MajorVersion)
			binary.Write(buf, binary.LittleEndian, b.assembly.MinorVersion)
			binary.Write(buf, binary.LittleEndian, b.assembly.BuildNumber)
			binary.Write(buf, binary.LittleEndian, b.assembly.RevisionNumber)
			binary.Write(buf, binary.LittleEndian, b.assembly.Flags)
			putIndex(buf, w.blob, b.assembly.PublicKey)
			putIndex(buf, w.str, b.assembly.Name)
			putIndex(buf, w.str, b.assembly.Culture)
		}},
		{tblAssemblyRef, uint32(len(b.assemblyRefs)), func(buf *bytes.Buffer, w widths) {
			for _, r := range b.assemblyRefs {
				binary.Write(buf, binary.LittleEndian, r.MajorVersion)
				binary.Write(buf, binary.LittleEndian, r.MinorVersion)
				binary.Write(buf, binary.LittleEndian, r.BuildNumber)
				binary.Write(buf, binary.LittleEndian, r.RevisionNumber)
				binary.Write(buf, binary.LittleEndian, r.Flags)
				putIndex(buf, w.blob, r.PublicKey)
				putIndex(buf, w.str, r.Name)
				putIndex(buf, w.str, r.Culture)
				putIndex(buf, w.blob, r.HashValue)
			}
		}},
	}

	var maskValid uint64
	var rowCountList bytes.Buffer
	var rows bytes.Buffer
	for _, e := range entries {
		if e.count == 0 {
			continue
		}
		maskValid |= 1 << uint(e.index)
		binary.Write(&rowCountList, binary.LittleEndian, e.count)
		e.write(&rows, w)
	}

	heapSizesFlag := byte(0)
	if w.str == 4 {
		heapSizesFlag |= 0x01
	}
	if w.guid == 4 {
		heapSizesFlag |= 0x02
	}
	if w.blob == 4 {
		heapSizesFlag |= 0x04
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(0))     // Reserved
	out.WriteByte(2)                                        // MajorVersion
	out.WriteByte(0)                                        // MinorVersion
	out.WriteByte(heapSizesFlag)                             // HeapSizes
	out.WriteByte(1)                                        // Reserved (must be 1)
	binary.Write(&out, binary.LittleEndian, maskValid)      // Valid
	binary.Write(&out, binary.LittleEndian, maskValid)      // Sorted (treat as all-sorted)
	out.Write(rowCountList.Bytes())
	out.Write(rows.Bytes())
	return pad4(out.Bytes())
}

// stream is one named heap/table stream within the metadata root.
type stream struct {
	name string
	data []byte
}

// buildMetadataRoot assembles the BSJB metadata root: signature,
// version string, and the stream directory followed by each stream's
// bytes (ECMA-335 §II.24.2.1).
func (b *Builder) buildMetadataRoot() []byte {
	streams := []stream{
		{"#~", b.buildTableStream()},
		{"#Strings", b.strings.Bytes()},
		{"#US", userStringHeap{}.Bytes()},
		{"#GUID", b.guids.Bytes()},
		{"#Blob", b.blobs.Bytes()},
	}

	const version = "v4.0.30319"
	versionPadded := pad4([]byte(version + "\x00"))

	var header bytes.Buffer
	binary.Write(&header, binary.LittleEndian, uint32(0x424A5342)) // BSJB
	binary.Write(&header, binary.LittleEndian, uint16(1))          // MajorVersion
	binary.Write(&header, binary.LittleEndian, uint16(1))          // MinorVersion
	binary.Write(&header, binary.LittleEndian, uint32(0))          // ExtraData
	binary.Write(&header, binary.LittleEndian, uint32(len(versionPadded)))
	header.Write(versionPadded)
	header.WriteByte(0) // Flags
	header.WriteByte(0) // padding
	binary.Write(&header, binary.LittleEndian, uint16(len(streams)))

	// Stream directory: offsets are relative to the start of the
	// metadata root and depend on the directory's own size, which
	// depends on each stream name's padded length — compute names
	// first, then patch offsets in a second pass.
	type dirEntry struct {
		nameBytes []byte
	}
	dirs := make([]dirEntry, len(streams))
	dirSize := 0
	for i, s := range streams {
		padded := pad4([]byte(s.name + "\x00"))
		dirs[i] = dirEntry{nameBytes: padded}
		dirSize += 8 + len(padded)
	}

	offset := uint32(header.Len() + dirSize)
	var dirBuf bytes.Buffer
	for i, s := range streams {
		binary.Write(&dirBuf, binary.LittleEndian, offset)
		binary.Write(&dirBuf, binary.LittleEndian, uint32(len(s.data)))
		dirBuf.Write(dirs[i].nameBytes)
		offset += uint32(len(s.data))
	}

	var out bytes.Buffer
	out.Write(header.Bytes())
	out.Write(dirBuf.Bytes())
	for _, s := range streams {
		out.Write(s.data)
	}
	return out.Bytes()
}
