package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// rsdpDescriptors builds the field table for the Root System Description
// Pointer, ACPI 6.3 §5.2.5.3. RSDP has no standard 36-byte header -- it is
// the table every other table is found through -- so it gets its own
// descriptor table rather than reusing headerDescriptors. No dedicated
// RsdpParser.c shipped in this retrieval pack; layout is grounded on the
// same ACPI_PARSER field-table idiom every other dispatcher in this
// package uses, with field names and offsets taken from the ACPI 6.3
// structure definition.
func rsdpDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Signature", Length: 8, Offset: 0, Render: field.DumpChars},
		{Name: "Checksum", Length: 1, Offset: 8, Format: "0x%02x"},
		{Name: "OEMID", Length: 6, Offset: 9, Render: field.DumpChars},
		{Name: "Revision", Length: 1, Offset: 15, Format: "0x%02x"},
		{Name: "RSDT Address", Length: 4, Offset: 16, Format: "0x%08x"},
		{Name: "Length", Length: 4, Offset: 20, Format: "0x%08x"},
		{Name: "XSDT Address", Length: 8, Offset: 24, Format: "0x%016x"},
		{Name: "Extended Checksum", Length: 1, Offset: 32, Format: "0x%02x"},
		{Name: "Reserved", Length: 3, Offset: 33, Render: field.DumpChars},
	}
}

// rsdpLegacySize is the RSDP's size before the Length/XSDT Address/
// Extended Checksum/Reserved fields were added in ACPI 2.0.
const rsdpLegacySize = 20

// ParseRsdp parses the RSDP, restricting to the ACPI 1.0 fields when
// revision is 0 (the legacy 20-byte form has no Length field to bound the
// remainder by).
func ParseRsdp(s *sink.Sink, trace bool, buf []byte, revision uint8) int {
	descriptors := rsdpDescriptors()
	if revision == 0 && len(buf) >= rsdpLegacySize {
		descriptors = descriptors[:5]
	}

	return Parse(s, trace, buf, descriptors)
}
