package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// facsDescriptors builds the field table for the Firmware ACPI Control
// Structure, ACPI 6.3 §5.2.6. FACS is the one supported table with no
// standard descriptor header (no checksum, no OEM fields) -- it carries
// only its own Signature and Length -- so it does not reuse
// headerDescriptors. No dedicated FacsParser.c shipped in this retrieval
// pack; layout is taken directly from the ACPI 6.3 structure definition.
func facsDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Signature", Length: 4, Offset: 0, Render: field.DumpChars},
		{Name: "Length", Length: 4, Offset: 4, Format: "0x%08x"},
		{Name: "Hardware Signature", Length: 4, Offset: 8, Format: "0x%08x"},
		{Name: "Firmware Waking Vector", Length: 4, Offset: 12, Format: "0x%08x"},
		{Name: "Global Lock", Length: 4, Offset: 16, Format: "0x%08x"},
		{Name: "Flags", Length: 4, Offset: 20, Format: "0x%08x"},
		{Name: "X Firmware Waking Vector", Length: 8, Offset: 24, Format: "0x%016x"},
		{Name: "Version", Length: 1, Offset: 32, Format: "0x%02x"},
		{Name: "Reserved", Length: 3, Offset: 33},
		{Name: "OSPM Flags", Length: 4, Offset: 36, Format: "0x%08x"},
		{Name: "Reserved", Length: 24, Offset: 40},
	}
}

// ParseFacs parses the Firmware ACPI Control Structure.
func ParseFacs(s *sink.Sink, trace bool, buf []byte) int {
	return Parse(s, trace, buf, facsDescriptors())
}
