// Package winmdimport reads the TypeDef table out of an external
// .winmd reference assembly, so bnd can seed its type registry with
// names that already exist in a dependency (spec.md §4.5, §6 — the
// type_import config entries). It only walks as far as it needs to:
// DOS header -> NT headers -> section table -> IMAGE_COR20_HEADER ->
// metadata root -> #~ stream -> TypeDef rows. This mirrors, in
// reverse, the reference reader's dosheader.go/ntheader.go/section.go/
// dotnet.go/dotnet_metadata_tables.go/dotnet_helper.go.
package winmdimport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ExternalType is one TypeDef row read out of a dependency assembly:
// enough to let registry.ImportExternal record that "Namespace.Name"
// is already defined elsewhere, and to build a TypeRef against it.
type ExternalType struct {
	Namespace string
	Name      string
	AssemblyName string
}

// ReadTypeDefs mmaps path and returns every public TypeDef it
// declares, tagged with the assembly's own name (read off its
// Assembly table row) for use as an AssemblyRef target.
func ReadTypeDefs(path string) ([]ExternalType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("winmdimport: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("winmdimport: mmap %s: %w", path, err)
	}
	defer data.Unmap()

	return ParseBytes([]byte(data))
}

// ParseBytes runs the same walk as ReadTypeDefs directly over an
// in-memory image, for callers (and tests) that already have the
// bytes without a file on disk.
func ParseBytes(data []byte) ([]ExternalType, error) {
	if len(data) < 0x40 || data[0] != 'M' || data[1] != 'Z' {
		return nil, fmt.Errorf("winmdimport: missing MZ signature")
	}
	lfanew := binary.LittleEndian.Uint32(data[0x3c:])
	if int(lfanew)+24 > len(data) {
		return nil, fmt.Errorf("winmdimport: e_lfanew out of range")
	}
	if !bytes.Equal(data[lfanew:lfanew+4], []byte("PE\x00\x00")) {
		return nil, fmt.Errorf("winmdimport: missing PE signature")
	}

	coffOff := lfanew + 4
	numberOfSections := binary.LittleEndian.Uint16(data[coffOff+2:])
	sizeOfOptionalHeader := binary.LittleEndian.Uint16(data[coffOff+16:])
	optOff := coffOff + 20

	if int(optOff)+2 > len(data) {
		return nil, fmt.Errorf("winmdimport: optional header out of range")
	}
	magic := binary.LittleEndian.Uint16(data[optOff:])

	var standardSize uint32
	switch magic {
	case 0x10b: // PE32
		standardSize = 96
	case 0x20b: // PE32+
		standardSize = 112
	default:
		return nil, fmt.Errorf("winmdimport: unrecognized optional header magic %#x", magic)
	}

	comDirOff := optOff + standardSize + 14*8
	if int(comDirOff)+8 > len(data) {
		return nil, fmt.Errorf("winmdimport: no COM descriptor directory entry")
	}
	cor20RVA := binary.LittleEndian.Uint32(data[comDirOff:])
	if cor20RVA == 0 {
		return nil, fmt.Errorf("winmdimport: not a managed assembly (no CLR header)")
	}

	sectionTableOff := optOff + uint32(sizeOfOptionalHeader)
	sections, err := readSections(data, sectionTableOff, numberOfSections)
	if err != nil {
		return nil, err
	}

	cor20Off, err := rvaToOffset(sections, cor20RVA)
	if err != nil {
		return nil, fmt.Errorf("winmdimport: CLR header: %w", err)
	}
	if int(cor20Off)+72 > len(data) {
		return nil, fmt.Errorf("winmdimport: CLR header out of range")
	}
	metadataRVA := binary.LittleEndian.Uint32(data[cor20Off+8:])
	metadataOff, err := rvaToOffset(sections, metadataRVA)
	if err != nil {
		return nil, fmt.Errorf("winmdimport: metadata root: %w", err)
	}

	return parseMetadataRoot(data, metadataOff)
}

type section struct {
	virtualAddress uint32
	virtualSize    uint32
	rawOffset      uint32
}

func readSections(data []byte, off uint32, count uint16) ([]section, error) {
	sections := make([]section, 0, count)
	for i := uint16(0); i < count; i++ {
		rowOff := off + uint32(i)*40
		if int(rowOff)+40 > len(data) {
			return nil, fmt.Errorf("section table out of range")
		}
		sections = append(sections, section{
			virtualAddress: binary.LittleEndian.Uint32(data[rowOff+12:]),
			virtualSize:    binary.LittleEndian.Uint32(data[rowOff+8:]),
			rawOffset:      binary.LittleEndian.Uint32(data[rowOff+20:]),
		})
	}
	return sections, nil
}

func rvaToOffset(sections []section, rva uint32) (uint32, error) {
	for _, s := range sections {
		if rva >= s.virtualAddress && rva < s.virtualAddress+s.virtualSize {
			return s.rawOffset + (rva - s.virtualAddress), nil
		}
	}
	return 0, fmt.Errorf("RVA %#x not contained in any section", rva)
}

// parseMetadataRoot reads the BSJB header, locates the #~ (or #-) and
// #Strings streams, and hands off to parseTableStream.
func parseMetadataRoot(data []byte, off uint32) ([]ExternalType, error) {
	if int(off)+16 > len(data) || binary.LittleEndian.Uint32(data[off:]) != 0x424A5342 {
		return nil, fmt.Errorf("winmdimport: missing BSJB signature")
	}
	versionLen := binary.LittleEndian.Uint32(data[off+12:])
	cursor := off + 16 + versionLen
	if cursor%4 != 0 {
		cursor += 4 - cursor%4
	}
	cursor += 2 // Flags + padding byte
	streamCount := binary.LittleEndian.Uint16(data[cursor:])
	cursor += 2

	var tildeOff, tildeSize, stringsOff uint32
	for i := uint16(0); i < streamCount; i++ {
		streamOff := binary.LittleEndian.Uint32(data[cursor:])
		streamSize := binary.LittleEndian.Uint32(data[cursor+4:])
		cursor += 8
		nameStart := cursor
		end := nameStart
		for data[end] != 0 {
			end++
		}
		name := string(data[nameStart:end])
		cursor = end + 1
		if cursor%4 != 0 {
			cursor += 4 - cursor%4
		}
		switch name {
		case "#~", "#-":
			tildeOff, tildeSize = off+streamOff, streamSize
		case "#Strings":
			stringsOff = off + streamOff
		}
	}
	if tildeOff == 0 {
		return nil, fmt.Errorf("winmdimport: no #~ stream")
	}

	return parseTableStream(data, tildeOff, tildeSize, stringsOff)
}

func readString(data []byte, heapOff, idx uint32) string {
	start := heapOff + idx
	end := start
	for int(end) < len(data) && data[end] != 0 {
		end++
	}
	return string(data[start:end])
}

func parseTableStream(data []byte, off, size, stringsOff uint32) ([]ExternalType, error) {
	heapSizes := data[off+6]
	strWidth, guidWidth, blobWidth := 2, 2, 2
	if heapSizes&0x01 != 0 {
		strWidth = 4
	}
	if heapSizes&0x02 != 0 {
		guidWidth = 4
	}
	if heapSizes&0x04 != 0 {
		blobWidth = 4
	}

	maskValid := binary.LittleEndian.Uint64(data[off+8:])
	cursor := off + 24

	var rowCounts [tableCount]uint32
	present := make([]int, 0, tableCount)
	for i := 0; i < tableCount; i++ {
		if maskValid&(1<<uint(i)) == 0 {
			continue
		}
		rowCounts[i] = binary.LittleEndian.Uint32(data[cursor:])
		cursor += 4
		present = append(present, i)
	}

	widthOf := func(c column) int {
		switch c.kind {
		case colU1:
			return 1
		case colU2:
			return 2
		case colU4:
			return 4
		case colString:
			return strWidth
		case colGUID:
			return guidWidth
		case colBlob:
			return blobWidth
		case colSimple:
			return simpleIndexSize(rowCounts[c.simpleTable])
		case colCoded:
			return c.coded.size(rowCounts)
		default:
			return 0
		}
	}

	rowWidth := func(tbl int) int {
		w := 0
		for _, c := range schema[tbl] {
			w += widthOf(c)
		}
		return w
	}

	var results []ExternalType
	var assemblyName string

	for _, tbl := range present {
		n := rowCounts[tbl]
		switch tbl {
		case tblTypeDef:
			cols := schema[tblTypeDef]
			strW := widthOf(cols[1])
			nameColOff := widthOf(cols[0])
			nsColOff := nameColOff + strW
			stride := rowWidth(tblTypeDef)
			for r := uint32(0); r < n; r++ {
				rowOff := cursor + r*uint32(stride)
				nameIdx := readIndex(data, rowOff+uint32(nameColOff), strW)
				nsIdx := readIndex(data, rowOff+uint32(nsColOff), widthOf(cols[2]))
				name := readString(data, stringsOff, nameIdx)
				ns := readString(data, stringsOff, nsIdx)
				if name == "<Module>" {
					continue
				}
				results = append(results, ExternalType{Namespace: ns, Name: name})
			}
		case tblAssembly:
			cols := schema[tblAssembly]
			nameColOff := 0
			for _, c := range cols[:7] {
				nameColOff += widthOf(c)
			}
			nameIdx := readIndex(data, cursor+uint32(nameColOff), widthOf(cols[7]))
			assemblyName = readString(data, stringsOff, nameIdx)
		}
		cursor += n * uint32(rowWidth(tbl))
	}

	for i := range results {
		results[i].AssemblyName = assemblyName
	}
	return results, nil
}

func readIndex(data []byte, off uint32, width int) uint32 {
	if width == 2 {
		return uint32(binary.LittleEndian.Uint16(data[off:]))
	}
	return binary.LittleEndian.Uint32(data[off:])
}
