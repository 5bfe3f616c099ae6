package generate

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/repo"
)

// PciConfigSpaceInfo is the repo.Object encoding for one
// repo.ObjPciConfigSpaceInfo platform object: a PCI segment's enhanced
// configuration space allocation. Grounded byte-for-byte on
// acpi/inspect/mcfg.go's mcfgEntryDescriptors, which is in turn grounded
// on McfgGenerator.c's MCFG_CFG_SPACE_ADDR.
type PciConfigSpaceInfo struct {
	BaseAddress           uint64
	PciSegmentGroupNumber uint16
	StartBusNumber        uint8
	EndBusNumber          uint8
	Reserved              uint32
}

func (p PciConfigSpaceInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, p)

	return buf.Bytes()
}

func decodePciConfigSpaceInfo(data []byte) (PciConfigSpaceInfo, error) {
	var p PciConfigSpaceInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &p); err != nil {
		return PciConfigSpaceInfo{}, fmt.Errorf("%w: malformed PciConfigSpaceInfo object: %v", ErrInvalidParameter, err)
	}

	return p, nil
}

const mcfgEntrySize = 16

// BuildMcfg assembles a complete MCFG: the 8-byte reserved header field
// ACPI 6.3 mandates after the common table header, followed by one
// 16-byte allocation structure per repo.ObjPciConfigSpaceInfo object, in
// repository insertion order. Grounded on McfgGenerator.c's
// AcpiMcfgGenerator.
func BuildMcfg(r repo.Repository, oemID, oemTableID string) ([]byte, error) {
	objs, err := r.GetObjects(repo.ObjPciConfigSpaceInfo, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching PCI config space objects: %w", err)
	}

	body := make([]byte, 8+len(objs)*mcfgEntrySize)
	off := 8

	for _, o := range objs {
		p, err := decodePciConfigSpaceInfo(o.Data)
		if err != nil {
			return nil, err
		}

		var entry bytes.Buffer
		_ = binary.Write(&entry, binary.LittleEndian, p)
		copy(body[off:off+mcfgEntrySize], entry.Bytes())
		off += mcfgEntrySize
	}

	return finalizeTable(acpi.SigMCFG, 1, oemID, oemTableID, body)
}
