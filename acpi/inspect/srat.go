package inspect

import (
	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// SRAT Affinity Structure type tags, ACPI 6.3 §5.2.16.
const (
	sratProcessorLocalAPIC      = 0
	sratMemory                  = 1
	sratProcessorLocalX2APIC    = 2
	sratGICC                    = 3
	sratGICITS                  = 4
	sratGenericInitiator        = 5
)

// gicCAffinityDescriptors is the 18-byte GICC Affinity Structure. Grounded
// on SratGenerator.c's AddGICCAffinity (Type/Length/ProximityDomain/
// AcpiProcessorUid/Flags/ClockDomain), the only SRAT structure this
// retrieval pack's generator side actually populates field-by-field.
func gicCAffinityDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "0x%02x"},
		{Name: "Length", Length: 1, Offset: 1, Format: "%d"},
		{Name: "Proximity Domain", Length: 4, Offset: 2, Format: "0x%08x"},
		{Name: "ACPI Processor UID", Length: 4, Offset: 6, Format: "0x%08x"},
		{Name: "Flags", Length: 4, Offset: 10, Format: "0x%08x"},
		{Name: "Clock Domain", Length: 4, Offset: 14, Format: "0x%08x"},
	}
}

// gicITSAffinityDescriptors is the 12-byte GIC ITS Affinity Structure,
// grounded on ACPI 6.3 §5.2.16.5 and SratGenerator.c's AddGICItsAffinity
// (GicItsAff->ItsId = Cursor->GicItsId).
func gicITSAffinityDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "0x%02x"},
		{Name: "Length", Length: 1, Offset: 1, Format: "%d"},
		{Name: "Proximity Domain", Length: 4, Offset: 2, Format: "0x%08x"},
		{Name: "Reserved", Length: 2, Offset: 6},
		{Name: "ITS ID", Length: 4, Offset: 8, Format: "0x%08x"},
	}
}

// memoryAffinityDescriptors is the 40-byte Memory Affinity Structure,
// grounded on SratGenerator.c's AddMemoryAffinity and ACPI 6.3 §5.2.16.2.
func memoryAffinityDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "0x%02x"},
		{Name: "Length", Length: 1, Offset: 1, Format: "%d"},
		{Name: "Proximity Domain", Length: 4, Offset: 2, Format: "0x%08x"},
		{Name: "Reserved", Length: 2, Offset: 6},
		{Name: "Base Address Low", Length: 4, Offset: 8, Format: "0x%08x"},
		{Name: "Base Address High", Length: 4, Offset: 12, Format: "0x%08x"},
		{Name: "Length Low", Length: 4, Offset: 16, Format: "0x%08x"},
		{Name: "Length High", Length: 4, Offset: 20, Format: "0x%08x"},
		{Name: "Reserved", Length: 4, Offset: 24},
		{Name: "Flags", Length: 4, Offset: 28, Format: "0x%08x"},
		{Name: "Reserved", Length: 8, Offset: 32},
	}
}

func sratUnimplementedX86(name string, typ uint8) StructInfo {
	return StructInfo{Name: name, Type: typ, CompatArch: acpi.ArchIA32 | acpi.ArchX64, Handler: UnimplementedHandler()}
}

var sratStructs = &StructDatabase{
	Name: "Affinity Structure",
	Entries: []StructInfo{
		sratUnimplementedX86("Processor Local APIC/SAPIC Affinity", sratProcessorLocalAPIC),
		{Name: "Memory Affinity", Type: sratMemory, CompatArch: acpi.ArchAll, Handler: FieldTableHandler(memoryAffinityDescriptors())},
		sratUnimplementedX86("Processor Local x2APIC Affinity", sratProcessorLocalX2APIC),
		{Name: "GICC Affinity", Type: sratGICC, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicCAffinityDescriptors())},
		{Name: "GIC ITS Affinity", Type: sratGICITS, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicITSAffinityDescriptors())},
		{Name: "Generic Initiator Affinity", Type: sratGenericInitiator, CompatArch: acpi.ArchAll, Handler: UnimplementedHandler()},
	},
}

func init() {
	sratStructs.Validate()
}

func sratMinHeaderSize(_ uint8) int {
	return 2
}

// ParseSrat parses the SRAT header (36 bytes of header plus a reserved
// DWORD and a reserved QWORD per ACPI 6.3 §5.2.16.1) then walks its
// Affinity Structures via the shared WalkSubStructures loop.
func ParseSrat(s *sink.Sink, trace bool, buf []byte) {
	if !trace {
		return
	}

	hi := &HeaderInfo{}
	Parse(s, trace, buf, append(headerDescriptors(hi),
		field.Descriptor{Name: "Reserved", Length: 4, Offset: 36},
		field.Descriptor{Name: "Reserved", Length: 8, Offset: 40},
	))

	WalkSubStructures(s, trace, buf, 48, 1, sratMinHeaderSize, sratStructs)
}
