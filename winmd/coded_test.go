package winmd

import "testing"

func TestCodedIndexEncodeTagsByTablePosition(t *testing.T) {
	defRID := codedTypeDefOrRef.encode(tblTypeDef, 5)
	refRID := codedTypeDefOrRef.encode(tblTypeRef, 5)
	if defRID == refRID {
		t.Fatalf("expected TypeDef and TypeRef tags to differ for the same row id")
	}
	if defRID>>2 != 5 || refRID>>2 != 5 {
		t.Fatalf("expected row id preserved in the upper bits: got %d, %d", defRID>>2, refRID>>2)
	}
}

func TestCodedIndexSizeWidensWhenAnyParticipantOverflows(t *testing.T) {
	var small [tableCount]uint32
	small[tblTypeDef] = 10
	small[tblTypeRef] = 10
	if got := codedTypeDefOrRef.size(small); got != 2 {
		t.Fatalf("expected 2-byte coded index for small tables, got %d", got)
	}

	var big [tableCount]uint32
	big[tblTypeDef] = 1 << 15 // at 2 tag bits, max small is 1<<14
	if got := codedTypeDefOrRef.size(big); got != 4 {
		t.Fatalf("expected 4-byte coded index once a participant table overflows, got %d", got)
	}
}

func TestSimpleIndexSize(t *testing.T) {
	if simpleIndexSize(100) != 2 {
		t.Fatalf("expected 2-byte simple index for small row count")
	}
	if simpleIndexSize(1 << 16) != 4 {
		t.Fatalf("expected 4-byte simple index once row count reaches 2^16")
	}
}
