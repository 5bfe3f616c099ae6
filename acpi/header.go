package acpi

// Header is the standard ACPI table descriptor header shared by every
// table this engine inspects or generates (ACPI 6.3 §5.2.6).
type Header struct {
	Signature  [4]byte
	Length     uint32
	Rev        uint8
	Checksum   uint8
	OEMId      [6]byte
	OEMTableID [8]byte
	OEMRev     uint32
	CreatorID  [4]byte
	CreatorRev uint32
}

// HeaderSize is sizeof(Header) in the packed little-endian wire format.
const HeaderSize = 36

func padID(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}

	return b
}

func convertOEMID(oemID string) [6]byte {
	var id [6]byte
	copy(id[:], padID(oemID, 6))

	return id
}

func convertOEMTableID(oemTableID string) [8]byte {
	var id [8]byte
	copy(id[:], padID(oemTableID, 8))

	return id
}

func convertCreatorID(creatorID string) [4]byte {
	var id [4]byte
	copy(id[:], padID(creatorID, 4))

	return id
}

// NewHeader builds a Header for a table with the given signature, total
// table length, revision and OEM identifiers. Checksum is left at zero;
// callers compute it over the final serialized bytes with ComputeChecksum.
func NewHeader(sig Signature, length uint32, rev uint8, oemID, oemTableID string) Header {
	const creatorID = "GACT" // Generated ACPI Tables.

	return Header{
		Signature:  sig.ToBytes(),
		Length:     length,
		Rev:        rev,
		OEMId:      convertOEMID(oemID),
		OEMTableID: convertOEMTableID(oemTableID),
		CreatorID:  convertCreatorID(creatorID),
		CreatorRev: 1,
	}
}

// ComputeChecksum returns the byte that, written into buf's checksum
// position, makes the ACPI-mandated invariant hold: the sum of every byte
// in the table, taken modulo 256, is zero. buf must already contain the
// checksum byte (conventionally zero) at checksumOffset; it is excluded
// from the running sum and the returned value is what should replace it.
func ComputeChecksum(buf []byte, checksumOffset int) byte {
	var sum byte

	for i, b := range buf {
		if i == checksumOffset {
			continue
		}

		sum += b
	}

	return byte(0 - sum)
}

// VerifyChecksum reports whether buf's byte-sum, taken over its full
// length, is zero mod 256 -- the ACPI 6.3 checksum invariant.
func VerifyChecksum(buf []byte) bool {
	var sum byte

	for _, b := range buf {
		sum += b
	}

	return sum == 0
}
