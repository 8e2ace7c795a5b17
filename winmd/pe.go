package winmd

import (
	"bytes"
	"encoding/binary"
)

// Minimal PE32/COFF constants this writer needs. A .winmd file is
// never executed by the native loader — tools load it purely for its
// metadata — so the container only has to be well-formed enough for
// a CLI-aware reader (or this package's own winmdimport) to walk the
// COR20 header down to the metadata root; there is no code section
// and no import table (spec.md §4.5).
const (
	peFileAlignment    = 0x200
	peSectionAlignment = 0x2000
	peImageBase32      = 0x00400000

	machineI386 = 0x014c

	characteristicsExecutableImage = 0x0002
	characteristics32BitMachine    = 0x0100
	characteristicsDLL             = 0x2000

	optionalMagicPE32 = 0x10b

	subsystemWindowsCUI = 3

	comImageFlagILOnly = 0x00000001
)

// dosStub is the conventional "This program cannot be run in DOS
// mode" stub every PE linker emits ahead of the NT headers.
var dosStub = []byte{
	0x0e, 0x1f, 0xba, 0x0e, 0x00, 0xb4, 0x09, 0xcd,
	0x21, 0xb8, 0x01, 0x4c, 0xcd, 0x21,
	'T', 'h', 'i', 's', ' ', 'p', 'r', 'o', 'g', 'r', 'a', 'm', ' ',
	'c', 'a', 'n', 'n', 'o', 't', ' ', 'b', 'e', ' ', 'r', 'u', 'n', ' ',
	'i', 'n', ' ', 'D', 'O', 'S', ' ', 'm', 'o', 'd', 'e', '.', '\r', '\n', '$', 0,
}

func align(v, to uint32) uint32 {
	if r := v % to; r != 0 {
		return v + (to - r)
	}
	return v
}

// buildImage wraps the metadata root in a single-section IL-only PE32
// image, following the DOS-header/NT-header/section-table/COR20
// layout the reference reader parses in dosheader.go/ntheader.go,
// mirrored here on the write side.
func (b *Builder) buildImage(metadata []byte) []byte {
	const (
		dosHeaderSize = 0x40
		peHeaderAt    = dosHeaderSize + 0 // stub follows the 64-byte header in our layout... see below
	)

	// Lay out the DOS header (64 bytes) immediately followed by the
	// stub, then e_lfanew points past it to the PE signature.
	lfanew := uint32(dosHeaderSize + len(dosStub))
	lfanew = align(lfanew, 8)

	const (
		coffHeaderSize     = 20
		optionalHeaderSize = 96 + 16*8 // standard32 fields + 16 data directories
		sectionHeaderSize  = 40
		numberOfSections   = 1
	)

	headersEnd := lfanew + 4 /*PE sig*/ + coffHeaderSize + optionalHeaderSize + numberOfSections*sectionHeaderSize
	sizeOfHeaders := align(headersEnd, peFileAlignment)

	const cor20HeaderSize = 72
	sectionRawSize := align(uint32(cor20HeaderSize+len(metadata)), peFileAlignment)
	sectionVirtualSize := uint32(cor20HeaderSize + len(metadata))

	sectionRVA := peSectionAlignment
	sectionFileOffset := sizeOfHeaders

	cor20RVA := uint32(sectionRVA)
	metadataRVA := cor20RVA + cor20HeaderSize

	var out bytes.Buffer

	// DOS header: only Signature and e_lfanew are meaningful.
	dos := make([]byte, dosHeaderSize)
	binary.LittleEndian.PutUint16(dos[0:], 0x5A4D) // "MZ"
	binary.LittleEndian.PutUint32(dos[0x3c:], lfanew)
	out.Write(dos)
	out.Write(dosStub)
	for uint32(out.Len()) < lfanew {
		out.WriteByte(0)
	}

	// PE signature + COFF file header.
	out.WriteString("PE\x00\x00")
	binary.Write(&out, binary.LittleEndian, uint16(machineI386))
	binary.Write(&out, binary.LittleEndian, uint16(numberOfSections))
	binary.Write(&out, binary.LittleEndian, uint32(0)) // TimeDateStamp
	binary.Write(&out, binary.LittleEndian, uint32(0)) // PointerToSymbolTable
	binary.Write(&out, binary.LittleEndian, uint32(0)) // NumberOfSymbols
	binary.Write(&out, binary.LittleEndian, uint16(optionalHeaderSize))
	binary.Write(&out, binary.LittleEndian, uint16(characteristicsExecutableImage|characteristics32BitMachine|characteristicsDLL))

	// Optional header (PE32).
	binary.Write(&out, binary.LittleEndian, uint16(optionalMagicPE32))
	out.WriteByte(8) // MajorLinkerVersion
	out.WriteByte(0) // MinorLinkerVersion
	binary.Write(&out, binary.LittleEndian, uint32(0))                 // SizeOfCode
	binary.Write(&out, binary.LittleEndian, sectionRawSize)            // SizeOfInitializedData
	binary.Write(&out, binary.LittleEndian, uint32(0))                 // SizeOfUninitializedData
	binary.Write(&out, binary.LittleEndian, uint32(0))                 // AddressOfEntryPoint (none — metadata only)
	binary.Write(&out, binary.LittleEndian, uint32(sectionRVA))        // BaseOfCode
	binary.Write(&out, binary.LittleEndian, uint32(sectionRVA))        // BaseOfData
	binary.Write(&out, binary.LittleEndian, uint32(peImageBase32))     // ImageBase
	binary.Write(&out, binary.LittleEndian, uint32(peSectionAlignment))
	binary.Write(&out, binary.LittleEndian, uint32(peFileAlignment))
	binary.Write(&out, binary.LittleEndian, uint16(4)) // MajorOSVersion
	binary.Write(&out, binary.LittleEndian, uint16(0))
	binary.Write(&out, binary.LittleEndian, uint16(0)) // MajorImageVersion
	binary.Write(&out, binary.LittleEndian, uint16(0))
	binary.Write(&out, binary.LittleEndian, uint16(4)) // MajorSubsystemVersion
	binary.Write(&out, binary.LittleEndian, uint16(0))
	binary.Write(&out, binary.LittleEndian, uint32(0)) // Win32VersionValue
	sizeOfImage := align(uint32(sectionRVA)+sectionVirtualSize, peSectionAlignment)
	binary.Write(&out, binary.LittleEndian, sizeOfImage)
	binary.Write(&out, binary.LittleEndian, sizeOfHeaders)
	binary.Write(&out, binary.LittleEndian, uint32(0)) // CheckSum
	binary.Write(&out, binary.LittleEndian, uint16(subsystemWindowsCUI))
	binary.Write(&out, binary.LittleEndian, uint16(0)) // DllCharacteristics
	binary.Write(&out, binary.LittleEndian, uint32(0x100000)) // SizeOfStackReserve
	binary.Write(&out, binary.LittleEndian, uint32(0x1000))   // SizeOfStackCommit
	binary.Write(&out, binary.LittleEndian, uint32(0x100000)) // SizeOfHeapReserve
	binary.Write(&out, binary.LittleEndian, uint32(0x1000))   // SizeOfHeapCommit
	binary.Write(&out, binary.LittleEndian, uint32(0))        // LoaderFlags
	binary.Write(&out, binary.LittleEndian, uint32(16))       // NumberOfRvaAndSizes

	// Data directories: only index 14 (COM descriptor / CLR header) is set.
	for i := 0; i < 16; i++ {
		if i == 14 {
			binary.Write(&out, binary.LittleEndian, cor20RVA)
			binary.Write(&out, binary.LittleEndian, uint32(cor20HeaderSize))
		} else {
			binary.Write(&out, binary.LittleEndian, uint32(0))
			binary.Write(&out, binary.LittleEndian, uint32(0))
		}
	}

	// Section header for ".text".
	name := make([]byte, 8)
	copy(name, ".text")
	out.Write(name)
	binary.Write(&out, binary.LittleEndian, sectionVirtualSize)
	binary.Write(&out, binary.LittleEndian, uint32(sectionRVA))
	binary.Write(&out, binary.LittleEndian, sectionRawSize)
	binary.Write(&out, binary.LittleEndian, sectionFileOffset)
	binary.Write(&out, binary.LittleEndian, uint32(0)) // PointerToRelocations
	binary.Write(&out, binary.LittleEndian, uint32(0)) // PointerToLinenumbers
	binary.Write(&out, binary.LittleEndian, uint16(0)) // NumberOfRelocations
	binary.Write(&out, binary.LittleEndian, uint16(0)) // NumberOfLinenumbers
	const sectionCharCode = 0x60000020                 // CNT_CODE|MEM_EXECUTE|MEM_READ, reused for the metadata-only section
	binary.Write(&out, binary.LittleEndian, uint32(sectionCharCode))

	for uint32(out.Len()) < sectionFileOffset {
		out.WriteByte(0)
	}

	// Section contents: the CLR (COR20) header followed by the metadata root.
	binary.Write(&out, binary.LittleEndian, uint32(cor20HeaderSize))
	binary.Write(&out, binary.LittleEndian, uint16(2)) // MajorRuntimeVersion
	binary.Write(&out, binary.LittleEndian, uint16(5)) // MinorRuntimeVersion
	binary.Write(&out, binary.LittleEndian, metadataRVA)
	binary.Write(&out, binary.LittleEndian, uint32(len(metadata)))
	binary.Write(&out, binary.LittleEndian, uint32(comImageFlagILOnly))
	binary.Write(&out, binary.LittleEndian, uint32(0)) // EntryPointToken
	binary.Write(&out, binary.LittleEndian, uint32(0)) // Resources RVA
	binary.Write(&out, binary.LittleEndian, uint32(0)) // Resources Size
	binary.Write(&out, binary.LittleEndian, uint32(0)) // StrongNameSignature RVA
	binary.Write(&out, binary.LittleEndian, uint32(0)) // StrongNameSignature Size
	binary.Write(&out, binary.LittleEndian, uint32(0)) // CodeManagerTable RVA
	binary.Write(&out, binary.LittleEndian, uint32(0)) // CodeManagerTable Size
	binary.Write(&out, binary.LittleEndian, uint32(0)) // VTableFixups RVA
	binary.Write(&out, binary.LittleEndian, uint32(0)) // VTableFixups Size
	binary.Write(&out, binary.LittleEndian, uint32(0)) // ExportAddressTableJumps RVA
	binary.Write(&out, binary.LittleEndian, uint32(0)) // ExportAddressTableJumps Size
	binary.Write(&out, binary.LittleEndian, uint32(0)) // ManagedNativeHeader RVA
	binary.Write(&out, binary.LittleEndian, uint32(0)) // ManagedNativeHeader Size

	out.Write(metadata)

	for uint32(out.Len()) < sectionFileOffset+sectionRawSize {
		out.WriteByte(0)
	}

	return out.Bytes()
}
