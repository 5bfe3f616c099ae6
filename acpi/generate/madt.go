package generate

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/repo"
)

// MADT Interrupt Controller Structure type tags this generator emits,
// mirrored from acpi/inspect/madt.go's madtGICC/madtGICD.
const (
	madtGICC = 11
	madtGICD = 12
)

const madtHeaderSize = 44 // common 36-byte header + Local Interrupt Controller Address + Flags.

// GicCInfo is this engine's repo.Object encoding for one EArmObjGicCInfo
// platform object: every GICC field but the ACPI-assigned Type/Length/
// Reserved header, which the generator fills in itself. Field order and
// widths are grounded byte-for-byte on acpi/inspect/madt.go's
// gicCDescriptors, which is in turn grounded on MadtParser.c.
type GicCInfo struct {
	CPUInterfaceNumber            uint32
	AcpiProcessorUID              uint32
	Flags                         uint32
	ParkingProtocolVersion        uint32
	PerformanceInterruptGSIV      uint32
	ParkedAddress                 uint64
	PhysicalBaseAddress           uint64
	GICV                          uint64
	GICH                          uint64
	VGICMaintenanceInterrupt      uint32
	GICRBaseAddress               uint64
	MPIDR                         uint64
	ProcessorPowerEfficiencyClass uint8
	Reserved                      uint8
	SpeOverflowInterrupt          uint16
}

// Encode renders g as the repo.Object.Data a caller files under
// repo.ObjGicCInfo.
func (g GicCInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, g)

	return buf.Bytes()
}

func decodeGicCInfo(data []byte) (GicCInfo, error) {
	var g GicCInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &g); err != nil {
		return GicCInfo{}, fmt.Errorf("%w: malformed GicCInfo object: %v", ErrInvalidParameter, err)
	}

	return g, nil
}

func sizeGicCStruct() int {
	return 4 + binary.Size(GicCInfo{})
}

// GicDInfo is the repo.Object encoding for the single EArmObjGicDInfo
// object a platform carries, grounded on acpi/inspect/madt.go's
// gicDDescriptors.
type GicDInfo struct {
	GicID               uint32
	PhysicalBaseAddress uint64
	SystemVectorBase    uint32
	GicVersion          uint8
	Reserved            [3]uint8
}

func (g GicDInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, g)

	return buf.Bytes()
}

func decodeGicDInfo(data []byte) (GicDInfo, error) {
	var g GicDInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &g); err != nil {
		return GicDInfo{}, fmt.Errorf("%w: malformed GicDInfo object: %v", ErrInvalidParameter, err)
	}

	return g, nil
}

func sizeGicDStruct() int {
	return 4 + binary.Size(GicDInfo{})
}

// checkUniqueAcpiProcessorUIDs fails the build if any two GICC objects
// carry the same ACPI Processor UID. Grounded on MadtGenerator.c's
// AddGICCList calling IsAcpiUidEqual/FindDuplicateValue over the GICC
// object array before emitting a single byte -- the generator-side twin
// of the inspector's scenario-4 AllUnique check, kept as its own small
// O(n^2) scan here rather than reusing acpi/validate (which expects
// already-placed validate.Entry values with table offsets the sizing pass
// has not computed yet).
func checkUniqueAcpiProcessorUIDs(giccs []GicCInfo) error {
	for i := 0; i < len(giccs); i++ {
		for j := i + 1; j < len(giccs); j++ {
			if giccs[i].AcpiProcessorUID == giccs[j].AcpiProcessorUID {
				return fmt.Errorf("%w: duplicate ACPI Processor UID 0x%x at GICC objects %d and %d",
					ErrInvalidParameter, giccs[i].AcpiProcessorUID, i, j)
			}
		}
	}

	return nil
}

func writeGicC(buf []byte, g GicCInfo) {
	buf[0] = madtGICC
	buf[1] = byte(sizeGicCStruct())
	binary.LittleEndian.PutUint16(buf[2:], 0)

	var body bytes.Buffer
	_ = binary.Write(&body, binary.LittleEndian, g)
	copy(buf[4:], body.Bytes())
}

func writeGicD(buf []byte, g GicDInfo) {
	buf[0] = madtGICD
	buf[1] = byte(sizeGicDStruct())
	binary.LittleEndian.PutUint16(buf[2:], 0)

	var body bytes.Buffer
	_ = binary.Write(&body, binary.LittleEndian, g)
	copy(buf[4:], body.Bytes())
}

// BuildMadt assembles a complete MADT: a GICC structure per
// repo.ObjGicCInfo object (sorted by nothing -- repository insertion
// order, matching AddGICCList's single forward pass), then at most one
// GICD structure. Grounded on MadtGenerator.c's AcpiMadtGenerator,
// AddGICCList and AddGICD.
//
// AddGICD's source bug (spec §9(c)) is not reproduced: gicdObjs' fetch
// error is checked before gicdObjs is indexed at all, so there is no
// window in which a not-yet-fetched or failed-fetch value is touched.
func BuildMadt(r repo.Repository, oemID, oemTableID string, localIntCtrlAddr, flags uint32) ([]byte, error) {
	giccObjs, err := r.GetObjects(repo.ObjGicCInfo, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching GICC objects: %w", err)
	}

	giccs := make([]GicCInfo, 0, len(giccObjs))

	for _, o := range giccObjs {
		g, err := decodeGicCInfo(o.Data)
		if err != nil {
			return nil, err
		}

		giccs = append(giccs, g)
	}

	if err := checkUniqueAcpiProcessorUIDs(giccs); err != nil {
		return nil, err
	}

	gicdObjs, err := r.GetObjects(repo.ObjGicDInfo, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching GICD object: %w", err)
	}

	bodyLen := len(giccs) * sizeGicCStruct()
	if len(gicdObjs) > 0 {
		bodyLen += sizeGicDStruct()
	}

	body := make([]byte, bodyLen)
	off := 0

	for _, g := range giccs {
		writeGicC(body[off:off+sizeGicCStruct()], g)
		off += sizeGicCStruct()
	}

	if len(gicdObjs) > 0 {
		gicd, err := decodeGicDInfo(gicdObjs[0].Data)
		if err != nil {
			return nil, err
		}

		writeGicD(body[off:off+sizeGicDStruct()], gicd)
		off += sizeGicDStruct()
	}

	var head bytes.Buffer
	_ = binary.Write(&head, binary.LittleEndian, localIntCtrlAddr)
	_ = binary.Write(&head, binary.LittleEndian, flags)

	full := append(head.Bytes(), body...)

	return finalizeTable(acpi.SigAPIC, 5, oemID, oemTableID, full)
}
