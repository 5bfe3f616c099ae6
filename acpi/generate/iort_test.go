package generate_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/generate"
	"github.com/tpilar/acpiview/acpi/inspect"
	"github.com/tpilar/acpiview/acpi/repo"
	"github.com/tpilar/acpiview/acpi/sink"
)

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)

	return b
}

// buildItsGroupWithRootComplex constructs the exact platform-object
// repository spec §8 scenario 6 describes: one ITS Group node with
// identifiers {1, 2} and one Root Complex node with a single ID mapping
// referencing it.
func buildItsGroupWithRootComplex(t *testing.T) (*repo.InMemory, repo.Token) {
	t.Helper()

	const (
		itsGroupToken   repo.Token = 1
		itsIdsToken     repo.Token = 2
		rcMappingsToken repo.Token = 3
	)

	r := repo.NewInMemory()

	if err := r.AddObjects(repo.ObjGicItsIdentifierArray, itsIdsToken, []repo.Object{
		{Data: encodeUint32(1)},
		{Data: encodeUint32(2)},
	}); err != nil {
		t.Fatalf("AddObjects(ItsIdentifierArray): %v", err)
	}

	if err := r.AddObject(repo.ObjItsGroupNode, repo.NullToken, repo.Object{
		Token: itsGroupToken,
		Data:  generate.ItsGroupInfo{ItsIdentifierArrayToken: itsIdsToken}.Encode(),
	}); err != nil {
		t.Fatalf("AddObject(ItsGroupNode): %v", err)
	}

	if err := r.AddObject(repo.ObjIdMappingArray, rcMappingsToken, repo.Object{
		Data: generate.IdMapping{NumberOfIDs: 2, OutputReferenceToken: itsGroupToken}.Encode(),
	}); err != nil {
		t.Fatalf("AddObject(IdMappingArray): %v", err)
	}

	if err := r.AddObject(repo.ObjRootComplexNode, repo.NullToken, repo.Object{
		Data: generate.RootComplexInfo{IdMappingToken: rcMappingsToken}.Encode(),
	}); err != nil {
		t.Fatalf("AddObject(RootComplexNode): %v", err)
	}

	return r, itsGroupToken
}

// TestBuildIortOneItsGroupOneRootComplex is spec §8 scenario 6: table
// length = header + ITS-group-header + 2*4 + RC-header + 1*id-mapping;
// the Root Complex's ID Mapping OutputReference equals the ITS Group
// node's offset; the table's byte-sum mod 256 is zero.
func TestBuildIortOneItsGroupOneRootComplex(t *testing.T) {
	t.Parallel()

	r, _ := buildItsGroupWithRootComplex(t)

	buf, err := generate.BuildIort(r, "ACPIVW", "TESTIORT")
	if err != nil {
		t.Fatalf("BuildIort: %v", err)
	}

	const (
		headerSize        = 48 // common header(36) + node count(4) + array offset(4) + reserved(4).
		itsGroupNodeSize  = 16 + 4 + 2*4
		rootComplexSize   = 16 + 20 + 20
	)

	wantLen := headerSize + itsGroupNodeSize + rootComplexSize
	if len(buf) != wantLen {
		t.Fatalf("table length: got %d, want %d", len(buf), wantLen)
	}

	if !acpi.VerifyChecksum(buf) {
		var sum byte
		for _, b := range buf {
			sum += b
		}

		t.Fatalf("table byte-sum mod 256 = %d, want 0", sum)
	}

	// The ITS Group node is the first (and only) node in the region, so
	// its final offset is exactly headerSize.
	itsGroupOffset := uint32(headerSize)

	rootComplexOffset := headerSize + itsGroupNodeSize
	idMappingOffset := rootComplexOffset + 16 + 20 // node header + Root Complex body.
	outputReferenceOffset := idMappingOffset + 12  // InputBase, NumberOfIDs, OutputBase precede it.

	gotRef := binary.LittleEndian.Uint32(buf[outputReferenceOffset : outputReferenceOffset+4])
	if gotRef != itsGroupOffset {
		t.Fatalf("RC id-mapping OutputReference: got %d, want %d (the ITS Group node's offset)", gotRef, itsGroupOffset)
	}
}

// TestBuildIortRoundTripsThroughTheInspector is spec §8's round-trip
// invariant: any set of platform objects the generator accepts produces
// a table that parses under the inspector with zero errors in
// consistency mode.
func TestBuildIortRoundTripsThroughTheInspector(t *testing.T) {
	r, _ := buildItsGroupWithRootComplex(t)

	buf, err := generate.BuildIort(r, "ACPIVW", "TESTIORT")
	if err != nil {
		t.Fatalf("BuildIort: %v", err)
	}

	prevArch := acpi.BuildArch
	acpi.BuildArch = acpi.ArchARM | acpi.ArchAARCH64

	t.Cleanup(func() { acpi.BuildArch = prevArch })

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParseIort(s, true, buf)

	if s.Errors != 0 {
		t.Fatalf("expected zero errors parsing the generated IORT, got %d:\n%s", s.Errors, out.String())
	}
}

// TestNodeIndexerResolve exercises the token-to-offset lookup every
// generator builder relies on to resolve cross-node references.
func TestNodeIndexerResolve(t *testing.T) {
	t.Parallel()

	var idx generate.NodeIndexer

	if off, err := idx.Resolve(repo.NullToken); err != nil || off != 0 {
		t.Fatalf("Resolve(NullToken): got (%d, %v), want (0, nil)", off, err)
	}

	idx.Add(repo.Token(5), repo.Object{}, 128)

	off, err := idx.Resolve(repo.Token(5))
	if err != nil {
		t.Fatalf("Resolve(5): unexpected error %v", err)
	}

	if off != 128 {
		t.Fatalf("Resolve(5): got %d, want 128", off)
	}

	if _, err := idx.Resolve(repo.Token(99)); err == nil {
		t.Fatal("Resolve(99): expected ErrNotFound, got nil")
	}
}

// TestBuildMadtChecksumInvariant is spec §8's quantified invariant for
// every generated table: the byte-sum of the buffer, taken after the
// checksum field is written, is zero mod 256.
func TestBuildMadtChecksumInvariant(t *testing.T) {
	r := repo.NewInMemory()

	if err := r.AddObject(repo.ObjGicCInfo, repo.NullToken, repo.Object{
		Data: generate.GicCInfo{AcpiProcessorUID: 1}.Encode(),
	}); err != nil {
		t.Fatalf("AddObject(GicCInfo): %v", err)
	}

	if err := r.AddObject(repo.ObjGicDInfo, repo.NullToken, repo.Object{
		Data: generate.GicDInfo{GicID: 0}.Encode(),
	}); err != nil {
		t.Fatalf("AddObject(GicDInfo): %v", err)
	}

	buf, err := generate.BuildMadt(r, "ACPIVW", "TESTMADT", 0xE0000000, 0)
	if err != nil {
		t.Fatalf("BuildMadt: %v", err)
	}

	if !acpi.VerifyChecksum(buf) {
		t.Fatal("expected the generated MADT's byte-sum to be zero mod 256")
	}

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	prevArch := acpi.BuildArch
	acpi.BuildArch = acpi.ArchARM | acpi.ArchAARCH64

	t.Cleanup(func() { acpi.BuildArch = prevArch })

	inspect.ParseMadt(s, true, buf)

	if s.Errors != 0 {
		t.Fatalf("expected zero errors parsing the generated MADT, got %d:\n%s", s.Errors, out.String())
	}
}

// TestBuildMadtDuplicateAcpiProcessorUIDsRejected confirms BuildMadt
// itself rejects duplicate ACPI Processor UIDs: the generator-side
// uniqueness check runs independent of the inspector's own
// cross-validator.
func TestBuildMadtDuplicateAcpiProcessorUIDsRejected(t *testing.T) {
	t.Parallel()

	r := repo.NewInMemory()

	for i := 0; i < 2; i++ {
		if err := r.AddObject(repo.ObjGicCInfo, repo.NullToken, repo.Object{
			Data: generate.GicCInfo{AcpiProcessorUID: 7}.Encode(),
		}); err != nil {
			t.Fatalf("AddObject(GicCInfo): %v", err)
		}
	}

	if _, err := generate.BuildMadt(r, "ACPIVW", "TESTMADT", 0, 0); err == nil {
		t.Fatal("expected BuildMadt to reject duplicate ACPI Processor UIDs")
	}
}
