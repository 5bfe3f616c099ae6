package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// bgrtDescriptors builds the field table for the Boot Graphics Resource
// Table. No dedicated BgrtParser.c shipped in this retrieval pack; layout
// is taken from the ACPI 6.3 §5.2.22 structure definition.
func bgrtDescriptors(hi *HeaderInfo) []field.Descriptor {
	return append(headerDescriptors(hi),
		field.Descriptor{Name: "Version", Length: 2, Offset: 36, Format: "0x%04x"},
		field.Descriptor{Name: "Status", Length: 1, Offset: 38, Format: "0x%02x"},
		field.Descriptor{Name: "Image Type", Length: 1, Offset: 39, Format: "0x%02x"},
		field.Descriptor{Name: "Image Address", Length: 8, Offset: 40, Format: "0x%016x"},
		field.Descriptor{Name: "Image Offset X", Length: 4, Offset: 48, Format: "0x%08x"},
		field.Descriptor{Name: "Image Offset Y", Length: 4, Offset: 52, Format: "0x%08x"},
	)
}

// ParseBgrt parses the Boot Graphics Resource Table.
func ParseBgrt(s *sink.Sink, trace bool, buf []byte) int {
	hi := &HeaderInfo{}

	return Parse(s, trace, buf, bgrtDescriptors(hi))
}
