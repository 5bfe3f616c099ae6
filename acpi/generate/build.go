package generate

import (
	"bytes"
	"encoding/binary"

	"github.com/tpilar/acpiview/acpi"
)

// finalizeTable prepends an ACPI table header to body, patches the
// header's Length field to the true total, and computes the checksum byte
// so the result passes acpi.VerifyChecksum. Grounded on the common
// "write header, append region bytes, checksum last" shape shared by every
// EDK2 ...Generator.c driver (e.g. IortGenerator.c's BuildIortTable
// finishing with AcpiTableChecksum).
func finalizeTable(sig acpi.Signature, rev uint8, oemID, oemTableID string, body []byte) ([]byte, error) {
	h := acpi.NewHeader(sig, uint32(acpi.HeaderSize+len(body)), rev, oemID, oemTableID)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}

	buf.Write(body)

	out := buf.Bytes()
	out[9] = acpi.ComputeChecksum(out, 9)

	return out, nil
}

// pad4 returns n rounded up to the next multiple of 4, matching spec
// §4.5's "pad to 4-byte alignment" rule for inline name strings.
func pad4(n int) int {
	return (n + 3) &^ 3
}
