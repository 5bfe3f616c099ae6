package generate

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/repo"
)

const (
	sratGICC   = 3
	sratGICITS = 4
	sratMemory = 1
)

// GicCAffinityInfo is the repo.Object encoding for one
// repo.ObjGicCAffinityInfo object, grounded byte-for-byte on
// acpi/inspect/srat.go's gicCAffinityDescriptors, which is in turn
// grounded on SratGenerator.c's AddGICCAffinity.
type GicCAffinityInfo struct {
	ProximityDomain  uint32
	AcpiProcessorUID uint32
	Flags            uint32
	ClockDomain      uint32
}

func (g GicCAffinityInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, g)

	return buf.Bytes()
}

func decodeGicCAffinityInfo(data []byte) (GicCAffinityInfo, error) {
	var g GicCAffinityInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &g); err != nil {
		return GicCAffinityInfo{}, fmt.Errorf("%w: malformed GicCAffinityInfo object: %v", ErrInvalidParameter, err)
	}

	return g, nil
}

func sizeGicCAffinityStruct() int {
	return 2 + binary.Size(GicCAffinityInfo{})
}

func writeGicCAffinity(buf []byte, g GicCAffinityInfo) {
	buf[0] = sratGICC
	buf[1] = byte(sizeGicCAffinityStruct())

	var body bytes.Buffer
	_ = binary.Write(&body, binary.LittleEndian, g)
	copy(buf[2:], body.Bytes())
}

// MemoryAffinityInfo is the repo.Object encoding for one
// repo.ObjMemoryAffinityInfo object, grounded on
// acpi/inspect/srat.go's memoryAffinityDescriptors / SratGenerator.c's
// AddMemoryAffinity.
type MemoryAffinityInfo struct {
	ProximityDomain uint32
	Reserved1       uint16
	BaseAddressLow  uint32
	BaseAddressHigh uint32
	LengthLow       uint32
	LengthHigh      uint32
	Reserved2       uint32
	Flags           uint32
	Reserved3       uint64
}

func (m MemoryAffinityInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, m)

	return buf.Bytes()
}

func decodeMemoryAffinityInfo(data []byte) (MemoryAffinityInfo, error) {
	var m MemoryAffinityInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &m); err != nil {
		return MemoryAffinityInfo{}, fmt.Errorf("%w: malformed MemoryAffinityInfo object: %v", ErrInvalidParameter, err)
	}

	return m, nil
}

func sizeMemoryAffinityStruct() int {
	return 2 + binary.Size(MemoryAffinityInfo{})
}

func writeMemoryAffinity(buf []byte, m MemoryAffinityInfo) {
	buf[0] = sratMemory
	buf[1] = byte(sizeMemoryAffinityStruct())

	var body bytes.Buffer
	_ = binary.Write(&body, binary.LittleEndian, m)
	copy(buf[2:], body.Bytes())
}

// GicItsAffinityInfo is the repo.Object encoding for one
// repo.ObjGicItsAffinityInfo object, grounded on
// acpi/inspect/srat.go's gicITSAffinityDescriptors / SratGenerator.c's
// AddGICItsAffinity.
type GicItsAffinityInfo struct {
	ProximityDomain uint32
	Reserved        uint16
	ItsID           uint32
}

func (g GicItsAffinityInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, g)

	return buf.Bytes()
}

func decodeGicItsAffinityInfo(data []byte) (GicItsAffinityInfo, error) {
	var g GicItsAffinityInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &g); err != nil {
		return GicItsAffinityInfo{}, fmt.Errorf("%w: malformed GicItsAffinityInfo object: %v", ErrInvalidParameter, err)
	}

	return g, nil
}

func sizeGicItsAffinityStruct() int {
	return 2 + binary.Size(GicItsAffinityInfo{})
}

func writeGicItsAffinity(buf []byte, g GicItsAffinityInfo) {
	buf[0] = sratGICITS
	buf[1] = byte(sizeGicItsAffinityStruct())

	var body bytes.Buffer
	_ = binary.Write(&body, binary.LittleEndian, g)
	copy(buf[2:], body.Bytes())
}

// BuildSrat assembles a complete SRAT: the 12-byte reserved fields ACPI
// 6.3 mandates after the common table header, then one Affinity
// Structure per repo.ObjMemoryAffinityInfo, repo.ObjGicCAffinityInfo and
// repo.ObjGicItsAffinityInfo object, in that kind order, each kind in
// repository insertion order. Grounded on SratGenerator.c's
// AcpiSratGenerator.
func BuildSrat(r repo.Repository, oemID, oemTableID string) ([]byte, error) {
	memObjs, err := r.GetObjects(repo.ObjMemoryAffinityInfo, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching memory affinity objects: %w", err)
	}

	giccObjs, err := r.GetObjects(repo.ObjGicCAffinityInfo, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching GICC affinity objects: %w", err)
	}

	itsObjs, err := r.GetObjects(repo.ObjGicItsAffinityInfo, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching GIC ITS affinity objects: %w", err)
	}

	bodyLen := 12 + len(memObjs)*sizeMemoryAffinityStruct() +
		len(giccObjs)*sizeGicCAffinityStruct() + len(itsObjs)*sizeGicItsAffinityStruct()

	body := make([]byte, bodyLen)
	off := 12

	for _, o := range memObjs {
		m, err := decodeMemoryAffinityInfo(o.Data)
		if err != nil {
			return nil, err
		}

		writeMemoryAffinity(body[off:off+sizeMemoryAffinityStruct()], m)
		off += sizeMemoryAffinityStruct()
	}

	for _, o := range giccObjs {
		g, err := decodeGicCAffinityInfo(o.Data)
		if err != nil {
			return nil, err
		}

		writeGicCAffinity(body[off:off+sizeGicCAffinityStruct()], g)
		off += sizeGicCAffinityStruct()
	}

	for _, o := range itsObjs {
		g, err := decodeGicItsAffinityInfo(o.Data)
		if err != nil {
			return nil, err
		}

		writeGicItsAffinity(body[off:off+sizeGicItsAffinityStruct()], g)
		off += sizeGicItsAffinityStruct()
	}

	return finalizeTable(acpi.SigSRAT, 3, oemID, oemTableID, body)
}
