package inspect

import (
	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
	"github.com/tpilar/acpiview/acpi/validate"
)

// MADT Interrupt Controller Structure type tags, ACPI 6.3 Table 5-41.
const (
	madtProcessorLocalAPIC         = 0
	madtIOAPIC                     = 1
	madtInterruptSourceOverride    = 2
	madtNMISource                  = 3
	madtLocalAPICNMI               = 4
	madtLocalAPICAddressOverride   = 5
	madtIOSAPIC                    = 6
	madtLocalSAPIC                 = 7
	madtPlatformInterruptSources   = 8
	madtProcessorLocalX2APIC       = 9
	madtLocalX2APICNMI             = 10
	madtGICC                       = 11
	madtGICD                       = 12
	madtGICMSIFrame                = 13
	madtGICR                       = 14
	madtGICITS                     = 15
)

const armPPIIDMin, armPPIIDMax = 16, 31
const armPPIIDExtendedMin, armPPIIDExtendedMax = 1056, 1119
const armPPIIDPMBIRQ = 21

// validateSpeOverflowInterrupt checks the GICC SPE overflow interrupt is
// either absent (0, SPE unsupported) or a valid PPI/extended-PPI INTID, and
// warns if it deviates from the SBSA-recommended PMBIRQ. Grounded on
// ValidateSpeOverflowInterrupt.
func validateSpeOverflowInterrupt(w field.Writer, raw []byte, _ any) bool {
	v := field.ReadUint16LE(raw, 0)
	if v == 0 {
		return true
	}

	ok := v >= armPPIIDMin &&
		(v <= armPPIIDMax || v >= armPPIIDExtendedMin) &&
		v <= armPPIIDExtendedMax

	if !ok {
		w.Printf("SPE overflow Interrupt: 0x%x is not a valid PPI or extended PPI INTID", v)
	}

	if v != armPPIIDPMBIRQ {
		w.Printf("SPE overflow Interrupt: 0x%x does not match the SBSA-recommended PMBIRQ", v)
	}

	return ok
}

// validateGICDSystemVectorBase requires the GICD System Vector Base be 0;
// non-zero values are only meaningful for the long-obsolete GICv1/v2
// software-routed model that this table no longer supports. Grounded on
// ValidateGICDSystemVectorBase.
func validateGICDSystemVectorBase(w field.Writer, raw []byte, _ any) bool {
	v := field.ReadUint32LE(raw, 0)
	if v != 0 {
		w.Printf("System Vector Base: expected 0, found 0x%x", v)

		return false
	}

	return true
}

type gicCCapture struct {
	acpiProcessorUID []byte
}

func gicCDescriptors(c *gicCCapture) []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0},
		{Name: "Length", Length: 1, Offset: 1},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "CPU Interface Number", Length: 4, Offset: 4},
		{Name: "ACPI Processor UID", Length: 4, Offset: 8, Capture: &c.acpiProcessorUID},
		{Name: "Flags", Length: 4, Offset: 12},
		{Name: "Parking Protocol Version", Length: 4, Offset: 16},
		{Name: "Performance Interrupt GSIV", Length: 4, Offset: 20},
		{Name: "Parked Address", Length: 8, Offset: 24},
		{Name: "Physical Base Address", Length: 8, Offset: 32},
		{Name: "GICV", Length: 8, Offset: 40},
		{Name: "GICH", Length: 8, Offset: 48},
		{Name: "VGIC Maintenance interrupt", Length: 4, Offset: 56},
		{Name: "GICR Base Address", Length: 8, Offset: 60},
		{Name: "MPIDR", Length: 8, Offset: 68},
		{Name: "Processor Power Efficiency Class", Length: 1, Offset: 76},
		{Name: "Reserved", Length: 1, Offset: 77},
		{Name: "SPE overflow Interrupt", Length: 2, Offset: 78, Validate: validateSpeOverflowInterrupt},
	}
}

func gicDDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0},
		{Name: "Length", Length: 1, Offset: 1},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "GIC ID", Length: 4, Offset: 4},
		{Name: "Physical Base Address", Length: 8, Offset: 8},
		{Name: "System Vector Base", Length: 4, Offset: 16, Validate: validateGICDSystemVectorBase},
		{Name: "GIC Version", Length: 1, Offset: 20},
		{Name: "Reserved", Length: 3, Offset: 21, Render: field.DumpChars},
	}
}

func gicMSIFrameDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0},
		{Name: "Length", Length: 1, Offset: 1},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "MSI Frame ID", Length: 4, Offset: 4},
		{Name: "Physical Base Address", Length: 8, Offset: 8},
		{Name: "Flags", Length: 4, Offset: 16},
		{Name: "SPI Count", Length: 2, Offset: 20},
		{Name: "SPI Base", Length: 2, Offset: 22},
	}
}

func gicRDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0},
		{Name: "Length", Length: 1, Offset: 1},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "Discovery Range Base Address", Length: 8, Offset: 4},
		{Name: "Discovery Range Length", Length: 4, Offset: 12},
	}
}

func gicITSDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0},
		{Name: "Length", Length: 1, Offset: 1},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "GIC ITS ID", Length: 4, Offset: 4},
		{Name: "Physical Base Address", Length: 8, Offset: 8},
		{Name: "Reserved", Length: 4, Offset: 16},
	}
}

func madtDescriptors(hi *HeaderInfo) []field.Descriptor {
	return append(headerDescriptors(hi),
		field.Descriptor{Name: "Local Interrupt Controller Address", Length: 4, Offset: 36, Format: "0x%08x"},
		field.Descriptor{Name: "Flags", Length: 4, Offset: 40, Format: "0x%08x"},
	)
}

func unimplementedIA32X64(name string, typ uint8) StructInfo {
	return StructInfo{Name: name, Type: typ, CompatArch: acpi.ArchIA32 | acpi.ArchX64, Handler: UnimplementedHandler()}
}

// madtStructs is the MADT structure database, grounded on MadtStructs: the
// legacy IA32/X64 Interrupt Controller Structures have no field-table
// parser (matching the source, which never implemented them either), while
// the ARM GICC/GICD/GIC-MSI-Frame/GICR/GIC-ITS structures are full field
// tables.
var madtStructs = &StructDatabase{
	Name: "Interrupt Controller Structure",
	Entries: []StructInfo{
		unimplementedIA32X64("Processor Local APIC", madtProcessorLocalAPIC),
		unimplementedIA32X64("I/O APIC", madtIOAPIC),
		unimplementedIA32X64("Interrupt Source Override", madtInterruptSourceOverride),
		unimplementedIA32X64("NMI Source", madtNMISource),
		unimplementedIA32X64("Local APIC NMI", madtLocalAPICNMI),
		unimplementedIA32X64("Local APIC Address Override", madtLocalAPICAddressOverride),
		unimplementedIA32X64("I/O SAPIC", madtIOSAPIC),
		unimplementedIA32X64("Local SAPIC", madtLocalSAPIC),
		unimplementedIA32X64("Platform Interrupt Sources", madtPlatformInterruptSources),
		unimplementedIA32X64("Processor Local x2APIC", madtProcessorLocalX2APIC),
		unimplementedIA32X64("Local x2APIC NMI", madtLocalX2APICNMI),
		{Name: "GICC", Type: madtGICC, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicCDescriptors(&gicCCapture{}))},
		{Name: "GICD", Type: madtGICD, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicDDescriptors())},
		{Name: "GIC MSI Frame", Type: madtGICMSIFrame, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicMSIFrameDescriptors())},
		{Name: "GICR", Type: madtGICR, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicRDescriptors())},
		{Name: "GIC ITS", Type: madtGICITS, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: FieldTableHandler(gicITSDescriptors())},
	},
}

func init() {
	madtStructs.Validate()
}

// ParseMadt parses the MADT and its Interrupt Controller Structures,
// reporting two cross-structure errors when consistency checks are
// enabled: at most one GICD may be present (spec §8 scenario 3, grounded
// on ParseAcpiMadt's literal EFI_ACPI_6_3_GICD.Count > 1 check), and every
// GICC's ACPI Processor UID must be unique across the table (spec §8
// scenario 4 -- not present in the literal source, which never tracks
// GICC instances across the table; the check is grounded on the same
// cross-validator idiom GtdtParser.c uses for GT Frame Number uniqueness).
func ParseMadt(s *sink.Sink, trace bool, buf []byte) {
	if !trace {
		return
	}

	hi := &HeaderInfo{}
	Parse(s, trace, buf, madtDescriptors(hi))

	length := len(buf)
	if len(hi.Length) == 4 {
		length = int(field.ReadUint32LE(hi.Length, 0))
	}
	_ = length

	var uids []validate.Entry

	db := &StructDatabase{Name: madtStructs.Name, Entries: append([]StructInfo(nil), madtStructs.Entries...)}
	db.Entries[madtGICC].Handler = CustomHandler(func(s *sink.Sink, ptr []byte, length uint32) {
		// ptr is a subslice of buf, so the capacity difference is its
		// offset within the table.
		offset := cap(buf) - cap(ptr)

		c := &gicCCapture{}
		Parse(s, trace, ptr, gicCDescriptors(c))

		if c.acpiProcessorUID != nil {
			uids = append(uids, validate.Entry{Value: c.acpiProcessorUID, Offset: uint32(offset)})
		}
	})

	WalkSubStructures(s, trace, buf, 44, 1, madtMinHeaderSize, db)

	if !s.Options().Effective() {
		return
	}

	if db.Entries[madtGICD].Count > 1 {
		s.Error(sink.ErrorCross, "Only one %s must be present", db.Entries[madtGICD].Name)
	}

	validate.AllUnique(s, uids, validate.BytesEqual, "GICC", "ACPI Processor UID")
}

// madtMinHeaderSize is 4 for every MADT Interrupt Controller Structure: the
// common Type/Length/Reserved header. Grounded on MadtInterruptControllerHeaderParser.
func madtMinHeaderSize(_ uint8) int {
	return 4
}
